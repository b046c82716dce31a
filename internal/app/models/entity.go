package models

import "time"

// MaxNameLength bounds entity names and attribute display names
const MaxNameLength = 255

// Entity is a generic domain object; its fields live in Values
type Entity struct {
	ID          string            `json:"id" db:"id" example:"9a4f7c52-1d0e-4bb1-8b0b-6c1f3e2d5a77"`
	Type        EntityType        `json:"type" db:"type" example:"STUDENT"`
	Name        *string           `json:"name,omitempty" db:"name" example:"Ada Lovelace"`
	Description *string           `json:"description,omitempty" db:"description"`
	IsActive    bool              `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
	Values      []*AttributeValue `json:"-"` // eager-loaded by repositories
}

// EntityPatch lists the mutable entity fields; nil means unchanged. Type is never patchable.
type EntityPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// Empty reports whether the patch changes nothing
func (p EntityPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.IsActive == nil
}

// Apply copies the set fields of the patch onto e
func (p EntityPatch) Apply(e *Entity) {
	if p.Name != nil {
		e.Name = p.Name
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
