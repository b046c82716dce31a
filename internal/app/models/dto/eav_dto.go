package dto

import (
	"time"

	"github.com/yigit/unicampus/internal/app/models"
)

// RelationInputRequest links the written entity to another entity
type RelationInputRequest struct {
	ToID         string                 `json:"toId" binding:"required"`
	RelationType string                 `json:"relationType" binding:"required,relationtype" example:"ENROLLED_IN"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// CreateEntityRequest creates an entity from a flat attribute bag
type CreateEntityRequest struct {
	Type        string                 `json:"type" binding:"required,entitytype" example:"STUDENT"`
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	IsActive    *bool                  `json:"isActive"`
	Attributes  map[string]interface{} `json:"attributes"`
	Relations   []RelationInputRequest `json:"relations" binding:"dive"`
}

// UpdateEntityRequest changes an entity and writes the given attributes; absent fields are kept
type UpdateEntityRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	IsActive    *bool                  `json:"isActive"`
	Attributes  map[string]interface{} `json:"attributes"`
	Relations   []RelationInputRequest `json:"relations" binding:"dive"`
}

// CreateRelationRequest associates two entities
type CreateRelationRequest struct {
	FromID       string                 `json:"fromId" binding:"required"`
	ToID         string                 `json:"toId" binding:"required"`
	RelationType string                 `json:"relationType" binding:"required,relationtype" example:"TEACHES"`
	Metadata     map[string]interface{} `json:"metadata"`
	StartDate    *time.Time             `json:"startDate"`
}

// UpdateMetadataRequest is shallow-merged into a relation's metadata
type UpdateMetadataRequest struct {
	Metadata map[string]interface{} `json:"metadata" binding:"required"`
}

// SeedCatalogResponse lists the attributes seeded from the catalog
type SeedCatalogResponse struct {
	Seeded []string `json:"seeded"`
	Count  int      `json:"count"`
}

// RelationResponse represents a relation with its decoded metadata
type RelationResponse struct {
	ID           string                 `json:"id"`
	FromEntityID string                 `json:"fromEntityId"`
	ToEntityID   string                 `json:"toEntityId"`
	RelationType string                 `json:"relationType"`
	Status       string                 `json:"status" example:"ACTIVE"`
	IsActive     bool                   `json:"isActive"`
	StartDate    time.Time              `json:"startDate"`
	EndDate      *time.Time             `json:"endDate"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// NewRelationResponse maps a relation
func NewRelationResponse(rel *models.Relation) RelationResponse {
	return RelationResponse{
		ID:           rel.ID,
		FromEntityID: rel.FromEntityID,
		ToEntityID:   rel.ToEntityID,
		RelationType: string(rel.RelationType),
		Status:       string(rel.Status()),
		IsActive:     rel.IsActive,
		StartDate:    rel.StartDate,
		EndDate:      rel.EndDate,
		Metadata:     models.MetadataMap(rel.Metadata),
		CreatedAt:    rel.CreatedAt,
		UpdatedAt:    rel.UpdatedAt,
	}
}

// EntityWriteResponse echoes what a create or update touched
type EntityWriteResponse struct {
	EntityID  string             `json:"entityId"`
	Created   bool               `json:"created"`
	Written   []string           `json:"written"`
	Relations []RelationResponse `json:"relations"`
	Entity    interface{}        `json:"entity"`
}

// NewEntityWriteResponse maps the outcome of a write together with the entity's projection
func NewEntityWriteResponse(entityID string, created bool, written []string, relations []*models.Relation, entity interface{}) EntityWriteResponse {
	resp := EntityWriteResponse{
		EntityID:  entityID,
		Created:   created,
		Written:   written,
		Relations: make([]RelationResponse, 0, len(relations)),
		Entity:    entity,
	}
	for _, rel := range relations {
		resp.Relations = append(resp.Relations, NewRelationResponse(rel))
	}
	return resp
}
