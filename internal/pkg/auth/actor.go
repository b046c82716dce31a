package auth

import "github.com/yigit/unicampus/internal/app/models"

// Actor is the authenticated caller of a request
type Actor struct {
	AccountID string
	Email     string
	Role      models.Role
	EntityID  string // empty until the account is bound to a profile entity
}

// IsAdmin reports whether the actor has the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsStaff reports whether the actor can manage entities (ADMIN or STAFF)
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleStaff
}

// Actor returns the caller described by the claims
func (c *Claims) Actor() Actor {
	return Actor{
		AccountID: c.AccountID,
		Email:     c.Email,
		Role:      c.Role,
		EntityID:  c.EntityID,
	}
}
