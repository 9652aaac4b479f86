package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

// SendMessage handles POST /api/support/tickets/:ticketId/messages - the
// customer replies on their own ticket
func (h *SupportController) SendMessage(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.support.AddMessage(c.Request.Context(), middleware.GetTenantID(c), &userID,
		c.Param("ticketId"), userID, models.SenderCustomer, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Message sent successfully", ticket)
}

// ListMessages handles GET /api/support/tickets/:ticketId/messages - lists
// the conversation on one of the caller's tickets
func (h *SupportController) ListMessages(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	ticket, err := h.support.Get(c.Request.Context(), middleware.GetTenantID(c), &userID, c.Param("ticketId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	messages := ticket.Messages
	if messages == nil {
		messages = []models.TicketMessage{}
	}
	ok(c, "Messages retrieved successfully", messages)
}

// Reply handles POST /api/admin/support/tickets/:ticketId/messages - an admin
// answers any ticket (admin only)
func (h *SupportController) Reply(c *gin.Context) {
	adminID, authed := currentUser(c)
	if !authed {
		return
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.support.AddMessage(c.Request.Context(), middleware.GetTenantID(c), nil,
		c.Param("ticketId"), adminID, models.SenderAdmin, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Reply sent successfully", ticket)
}
