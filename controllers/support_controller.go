package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// CreateTicketRequest represents the request body for opening a support ticket
type CreateTicketRequest struct {
	Subject     string `json:"subject" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Category    string `json:"category" binding:"omitempty,oneof=order payment shipping product account other"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	OrderID     *uint  `json:"orderId"`
}

// TicketStatusRequest represents the request body for moving a ticket
type TicketStatusRequest struct {
	Status models.TicketStatus `json:"status" binding:"required,oneof=open in_progress waiting_for_customer resolved closed"`
}

// AssignTicketRequest represents the request body for assigning a ticket
type AssignTicketRequest struct {
	AdminID uint `json:"adminId" binding:"required"`
}

// SupportController serves /api/support and the back office ticket screens
type SupportController struct {
	support *services.SupportService
}

// NewSupportController creates a support controller
func NewSupportController(support *services.SupportService) *SupportController {
	return &SupportController{support: support}
}

// CreateTicket handles POST /api/support/tickets
func (h *SupportController) CreateTicket(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req CreateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.support.Create(c.Request.Context(), middleware.GetTenantID(c), userID, services.TicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		OrderID:     req.OrderID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Support ticket created successfully", ticket)
}

// ListMyTickets handles GET /api/support/tickets
func (h *SupportController) ListMyTickets(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	filter := services.TicketFilter{Status: models.TicketStatus(c.Query("status")), UserID: &userID}
	page := utils.ParsePage(c)

	tickets, total, err := h.support.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Tickets retrieved successfully", tickets, total, page)
}

// GetMyTicket handles GET /api/support/tickets/:ticketId
func (h *SupportController) GetMyTicket(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	ticket, err := h.support.Get(c.Request.Context(), middleware.GetTenantID(c), &userID, c.Param("ticketId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket retrieved successfully", ticket)
}

// CloseMyTicket handles POST /api/support/tickets/:ticketId/close
func (h *SupportController) CloseMyTicket(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	ticket, err := h.support.Close(c.Request.Context(), middleware.GetTenantID(c), userID, c.Param("ticketId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket closed successfully", ticket)
}

// ReopenMyTicket handles POST /api/support/tickets/:ticketId/reopen
func (h *SupportController) ReopenMyTicket(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	ticket, err := h.support.Reopen(c.Request.Context(), middleware.GetTenantID(c), userID, c.Param("ticketId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket reopened successfully", ticket)
}

// List handles GET /api/admin/support/tickets (admin only)
func (h *SupportController) List(c *gin.Context) {
	userID, err := utils.OptionalUint(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	assignedTo, err := utils.OptionalUint(c, "assignedTo")
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter := services.TicketFilter{
		Status:     models.TicketStatus(c.Query("status")),
		Category:   c.Query("category"),
		Priority:   c.Query("priority"),
		UserID:     userID,
		AssignedTo: assignedTo,
		Search:     c.Query("search"),
	}
	page := utils.ParsePage(c)

	tickets, total, err := h.support.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Tickets retrieved successfully", tickets, total, page)
}

// Get handles GET /api/admin/support/tickets/:ticketId (admin only)
func (h *SupportController) Get(c *gin.Context) {
	ticket, err := h.support.Get(c.Request.Context(), middleware.GetTenantID(c), nil, c.Param("ticketId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket retrieved successfully", ticket)
}

// UpdateStatus handles PATCH /api/admin/support/tickets/:ticketId/status (admin only)
func (h *SupportController) UpdateStatus(c *gin.Context) {
	var req TicketStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.support.ChangeStatus(c.Request.Context(), middleware.GetTenantID(c), nil, c.Param("ticketId"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket status updated successfully", ticket)
}

// Assign handles PATCH /api/admin/support/tickets/:ticketId/assign (admin only)
func (h *SupportController) Assign(c *gin.Context) {
	var req AssignTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.support.Assign(c.Request.Context(), middleware.GetTenantID(c), c.Param("ticketId"), req.AdminID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Ticket assigned successfully", ticket)
}
