package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketInput is what a customer supplies when opening a ticket
type TicketInput struct {
	Subject     string
	Description string
	Category    string
	Priority    string
	OrderID     *uint
}

// TicketFilter narrows ticket listings
type TicketFilter struct {
	Status     models.TicketStatus
	Category   string
	Priority   string
	UserID     *uint
	AssignedTo *uint
	Search     string
}

// SupportService manages support tickets and their conversations
type SupportService struct {
	db     *gorm.DB
	now    func() time.Time
	logger *logrus.Entry
}

// NewSupportService creates a new support service
func NewSupportService(db *gorm.DB, logger *logrus.Entry) *SupportService {
	return &SupportService{db: db, now: time.Now, logger: logger}
}

func newTicketID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create opens a ticket for userID
func (s *SupportService) Create(ctx context.Context, tenantID string, userID uint, in TicketInput) (*models.SupportTicket, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.Validation("Subject and description are required")
	}
	category := lo.Ternary(in.Category == "", "other", in.Category)
	if !lo.Contains(models.TicketCategories, category) {
		return nil, apperrors.Validation("Category must be one of " + strings.Join(models.TicketCategories, ", "))
	}
	priority := lo.Ternary(in.Priority == "", "medium", in.Priority)
	if !lo.Contains(models.TicketPriorities, priority) {
		return nil, apperrors.Validation("Priority must be one of " + strings.Join(models.TicketPriorities, ", "))
	}
	if in.OrderID != nil {
		var count int64
		s.db.WithContext(ctx).Model(&models.Order{}).Scopes(forTenant(tenantID)).
			Where("id = ? AND user_id = ?", *in.OrderID, userID).Count(&count)
		if count == 0 {
			return nil, apperrors.NotFound("Order")
		}
	}

	ticket := &models.SupportTicket{
		TenantID:    tenantID,
		TicketID:    newTicketID(),
		UserID:      userID,
		OrderID:     in.OrderID,
		Subject:     strings.TrimSpace(in.Subject),
		Description: in.Description,
		Category:    category,
		Priority:    priority,
		Status:      models.TicketOpen,
	}
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to create ticket")
	}

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "ticket_id": ticket.TicketID}).Info("Opened support ticket")
	return ticket, nil
}

// List returns a page of tickets, most recently updated first
func (s *SupportService) List(ctx context.Context, tenantID string, f TicketFilter, page query.Page) ([]models.SupportTicket, int64, error) {
	filter := query.Where(query.TextMatch{Fields: []string{"ticket_id", "subject"}, Text: f.Search})
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, 0, apperrors.Validation("Unknown ticket status")
		}
		filter = filter.And(query.Equals{Field: "status", Value: f.Status})
	}
	if f.Category != "" {
		filter = filter.And(query.Equals{Field: "category", Value: f.Category})
	}
	if f.Priority != "" {
		filter = filter.And(query.Equals{Field: "priority", Value: f.Priority})
	}
	if f.UserID != nil {
		filter = filter.And(query.Equals{Field: "user_id", Value: *f.UserID})
	}
	if f.AssignedTo != nil {
		filter = filter.And(query.Equals{Field: "assigned_to", Value: *f.AssignedTo})
	}

	base := s.db.WithContext(ctx).Model(&models.SupportTicket{}).Scopes(forTenant(tenantID), query.Scope(filter))
	return listPage[models.SupportTicket](base, page, "updated_at DESC, id DESC", "Failed to list tickets")
}

// Get loads a ticket with its messages in order. A non-nil userID
// restricts it to that customer's tickets.
func (s *SupportService) Get(ctx context.Context, tenantID string, userID *uint, ticketID string) (*models.SupportTicket, error) {
	q := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Assignee").
		Where("ticket_id = ?", ticketID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var ticket models.SupportTicket
	if err := q.First(&ticket).Error; err != nil {
		return nil, lookupError(err, "Ticket")
	}
	return &ticket, nil
}

// AddMessage appends a message to the conversation. A customer replying to
// a ticket waiting on them puts it back in progress, as does the first
// admin reply to an open ticket.
func (s *SupportService) AddMessage(ctx context.Context, tenantID string, userID *uint, ticketID string, senderID uint, senderType, message string) (*models.SupportTicket, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.Validation("Message is required")
	}
	ticket, err := s.Get(ctx, tenantID, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsFinal() {
		return nil, apperrors.InvalidOperation("Closed tickets must be reopened before replying")
	}

	next := ticket.Status
	switch {
	case senderType == models.SenderCustomer && ticket.Status == models.TicketWaitingForCustomer:
		next = models.TicketInProgress
	case senderType == models.SenderAdmin && ticket.Status == models.TicketOpen:
		next = models.TicketInProgress
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg := models.TicketMessage{
			TicketRef:  ticket.ID,
			SenderID:   senderID,
			SenderType: senderType,
			Message:    message,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return apperrors.Database(err, "Failed to add message")
		}
		return tx.Model(ticket).Omit(clause.Associations).Updates(map[string]any{"status": next, "updated_at": s.now()}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, userID, ticketID)
}

// ChangeStatus applies a status transition from the shared transition table
func (s *SupportService) ChangeStatus(ctx context.Context, tenantID string, userID *uint, ticketID string, next models.TicketStatus) (*models.SupportTicket, error) {
	if !next.Valid() {
		return nil, apperrors.Validation("Unknown ticket status")
	}
	ticket, err := s.Get(ctx, tenantID, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.Status.CanTransition(next) {
		return nil, apperrors.NewErrorf("ticket %s: %s -> %s", ticket.TicketID, ticket.Status, next).
			WithHintf("Cannot change ticket status from %s to %s", ticket.Status, next).
			Mark(apperrors.ErrInvalidOperation)
	}

	now := s.now()
	updates := map[string]any{"status": next}
	switch next {
	case models.TicketResolved:
		updates["resolved_at"] = now
	case models.TicketClosed:
		updates["closed_at"] = now
	case models.TicketOpen:
		updates["resolved_at"] = nil
		updates["closed_at"] = nil
	}
	if err := s.db.WithContext(ctx).Model(ticket).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to update ticket")
	}

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "ticket_id": ticketID, "status": next}).Info("Ticket status changed")
	return s.Get(ctx, tenantID, userID, ticketID)
}

// Close closes a customer's own ticket
func (s *SupportService) Close(ctx context.Context, tenantID string, userID uint, ticketID string) (*models.SupportTicket, error) {
	return s.ChangeStatus(ctx, tenantID, &userID, ticketID, models.TicketClosed)
}

// Reopen reopens a customer's resolved or closed ticket
func (s *SupportService) Reopen(ctx context.Context, tenantID string, userID uint, ticketID string) (*models.SupportTicket, error) {
	return s.ChangeStatus(ctx, tenantID, &userID, ticketID, models.TicketOpen)
}

// Assign hands a ticket to an admin. An open ticket moves to in progress.
func (s *SupportService) Assign(ctx context.Context, tenantID, ticketID string, adminID uint) (*models.SupportTicket, error) {
	var admin models.User
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&admin, adminID).Error; err != nil {
		return nil, lookupError(err, "Admin user")
	}
	if !admin.IsAdmin() {
		return nil, apperrors.Validation("Tickets can only be assigned to admins")
	}

	ticket, err := s.Get(ctx, tenantID, nil, ticketID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"assigned_to": adminID}
	if ticket.Status == models.TicketOpen {
		updates["status"] = models.TicketInProgress
	}
	if err := s.db.WithContext(ctx).Model(ticket).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to assign ticket")
	}
	return s.Get(ctx, tenantID, nil, ticketID)
}
