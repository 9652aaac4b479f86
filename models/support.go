package models

import "time"

// TicketStatus is the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketOpen               TicketStatus = "open"
	TicketInProgress         TicketStatus = "in_progress"
	TicketWaitingForCustomer TicketStatus = "waiting_for_customer"
	TicketResolved           TicketStatus = "resolved"
	TicketClosed             TicketStatus = "closed"
)

// ticketTransitions is the single source of truth for ticket status changes.
// Resolved and closed tickets can only be reopened.
var ticketTransitions = map[TicketStatus]map[TicketStatus]bool{
	TicketOpen:               {TicketInProgress: true, TicketWaitingForCustomer: true, TicketResolved: true, TicketClosed: true},
	TicketInProgress:         {TicketWaitingForCustomer: true, TicketResolved: true, TicketClosed: true},
	TicketWaitingForCustomer: {TicketInProgress: true, TicketResolved: true, TicketClosed: true},
	TicketResolved:           {TicketClosed: true, TicketOpen: true},
	TicketClosed:             {TicketOpen: true},
}

// CanTransition reports whether a ticket may move from s to next.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	return ticketTransitions[s][next]
}

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

// IsFinal reports whether the ticket no longer accepts messages without a reopen.
func (s TicketStatus) IsFinal() bool {
	return s == TicketClosed
}

const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

// TicketCategories and TicketPriorities enumerate the accepted values
var (
	TicketCategories = []string{"order", "payment", "shipping", "product", "account", "other"}
	TicketPriorities = []string{"low", "medium", "high", "urgent"}
)

// SupportTicket is a customer support conversation
type SupportTicket struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    string          `gorm:"not null;index" json:"-"`
	TicketID    string          `gorm:"not null;uniqueIndex" json:"ticketId"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderID     *uint           `json:"orderId"`
	Subject     string          `gorm:"not null" json:"subject"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    string          `gorm:"not null;default:'other'" json:"category"`
	Priority    string          `gorm:"not null;default:'medium'" json:"priority"`
	Status      TicketStatus    `gorm:"not null;default:'open';index" json:"status"`
	AssignedTo  *uint           `gorm:"index" json:"assignedTo"`
	Assignee    *User           `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Messages    []TicketMessage `gorm:"foreignKey:TicketRef;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	ResolvedAt  *time.Time      `json:"resolvedAt"`
	ClosedAt    *time.Time      `json:"closedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the SupportTicket model
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// TicketMessage is one message in a ticket conversation, ordered by CreatedAt
type TicketMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TicketRef  uint      `gorm:"not null;index" json:"-"`
	SenderID   uint      `gorm:"not null" json:"senderId"`
	SenderType string    `gorm:"not null" json:"senderType"` // customer or admin
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for the TicketMessage model
func (TicketMessage) TableName() string {
	return "ticket_messages"
}
