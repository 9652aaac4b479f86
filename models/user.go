package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a customer or back-office administrator
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TenantID     string         `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"not null;default:'customer'" json:"role"` // "customer" or "admin"
	IsVerified   bool           `gorm:"not null;default:false" json:"isVerified"`
	Phone        string         `json:"phone,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may use the back-office API
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
