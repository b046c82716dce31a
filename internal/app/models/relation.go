package models

import "time"

// RelationStatus is the effective state of a relation
type RelationStatus string

const (
	RelationStatusActive   RelationStatus = "ACTIVE"
	RelationStatusInactive RelationStatus = "INACTIVE"
)

// Relation is a directed, typed, time-bounded edge between two entities.
// Lifecycle: created active, deactivated (endDate set), reactivated (endDate cleared);
// removal deletes the row from any state.
type Relation struct {
	ID           string       `json:"id" db:"id"`
	FromEntityID string       `json:"fromEntityId" db:"from_entity_id"`
	ToEntityID   string       `json:"toEntityId" db:"to_entity_id"`
	RelationType RelationType `json:"relationType" db:"relation_type" example:"ENROLLED_IN"`
	IsActive     bool         `json:"isActive" db:"is_active"`
	StartDate    time.Time    `json:"startDate" db:"start_date"`
	EndDate      *time.Time   `json:"endDate,omitempty" db:"end_date"`
	Metadata     string       `json:"-" db:"metadata"` // opaque JSON object, "" when unset
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// Status derives the tagged state from the active flag
func (r *Relation) Status() RelationStatus {
	if r.IsActive {
		return RelationStatusActive
	}
	return RelationStatusInactive
}

// Deactivate soft-deletes the relation. It reports false when the relation was already inactive.
func (r *Relation) Deactivate(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	r.IsActive = false
	r.EndDate = &now
	r.UpdatedAt = now
	return true
}

// Reactivate makes the relation effective again and clears its end date.
// A non-empty metadata replaces the stored payload.
func (r *Relation) Reactivate(now time.Time, metadata string) {
	r.IsActive = true
	r.EndDate = nil
	if metadata != "" {
		r.Metadata = metadata
	}
	r.UpdatedAt = now
}

// RelationCandidate describes a relation to link or associate
type RelationCandidate struct {
	FromEntityID string
	ToEntityID   string
	RelationType RelationType
	Metadata     map[string]interface{}
	StartDate    *time.Time
}

// RelatedEntity is a relation joined with the entity on its far side
type RelatedEntity struct {
	Relation *Relation
	Entity   *Entity
}
