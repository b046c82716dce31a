package models

import "time"

// Role is the role of a login account
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent, RoleParent:
		return true
	}
	return false
}

// EntityType returns the kind of profile entity an account of this role owns
func (r Role) EntityType() EntityType {
	switch r {
	case RoleStudent:
		return EntityTypeStudent
	case RoleParent:
		return EntityTypeParent
	default:
		return EntityTypeStaff
	}
}

// Account is a login identity, optionally bound to one profile entity
type Account struct {
	ID                 string     `json:"id" db:"id"`
	Email              string     `json:"email" db:"email" example:"ada@unicampus.edu"`
	Password           string     `json:"-" db:"password"`
	Role               Role       `json:"role" db:"role" example:"STUDENT"`
	IsActive           bool       `json:"isActive" db:"is_active"`
	MustChangePassword bool       `json:"mustChangePassword" db:"must_change_password"`
	TempPassword       *string    `json:"-" db:"temp_password"` // shown once in the create response
	LastLogin          *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	EntityID           *string    `json:"entityId,omitempty" db:"entity_id"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}
