package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the envelope written for failed requests
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the envelope for err
func NewErrorResponse(err error) (int, ErrorResponse) {
	status := apperrors.HTTPStatus(err)
	fallback := http.StatusText(status)
	if status >= http.StatusInternalServerError {
		fallback = "Internal server error"
	}
	return status, ErrorResponse{
		Success: false,
		Message: apperrors.Hint(err, fallback),
		Error:   apperrors.Code(err),
		Details: apperrors.Details(err),
	}
}

// ErrorHandler renders the last error attached to the context, unless a
// handler already wrote a response.
func ErrorHandler(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := NewErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Errorf("%+v", err)
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Recovery turns a panic into a generic 500 envelope
func Recovery(log *logrus.Entry) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
			"panic":      fmt.Sprint(recovered),
		}).Error("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Message: "Internal server error",
			Error:   apperrors.CodeSystem,
		})
	})
}
