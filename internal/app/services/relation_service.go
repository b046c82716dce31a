package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// RelationService manages the lifecycle of entity relations
type RelationService struct {
	relations repositories.RelationRepository
	log       zerolog.Logger
}

// NewRelationService creates a new relation service
func NewRelationService(relations repositories.RelationRepository) *RelationService {
	return &RelationService{
		relations: relations,
		log:       logger.Component("relation_service"),
	}
}

// newRelation validates a candidate and builds the active row it describes
func newRelation(c models.RelationCandidate) (*models.Relation, error) {
	if strings.TrimSpace(c.FromEntityID) == "" {
		return nil, apperrors.NewFieldValidationError("fromId", "source entity id is required")
	}
	if strings.TrimSpace(c.ToEntityID) == "" {
		return nil, apperrors.NewFieldValidationError("toId", "target entity id is required")
	}
	metadata, err := checkRelationPayload("", c.RelationType, c.Metadata)
	if err != nil {
		return nil, err
	}

	now := helpers.NowUTC()
	start := now
	if c.StartDate != nil {
		start = c.StartDate.UTC()
	}

	return &models.Relation{
		ID:           uuid.NewString(),
		FromEntityID: c.FromEntityID,
		ToEntityID:   c.ToEntityID,
		RelationType: c.RelationType,
		IsActive:     true,
		StartDate:    start,
		Metadata:     metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// checkRelationPayload validates the relation type and serializes the metadata.
// prefix qualifies the reported field names.
func checkRelationPayload(prefix string, relationType models.RelationType, metadata map[string]interface{}) (string, error) {
	if !relationType.Valid() {
		return "", apperrors.NewFieldValidationError(prefix+"relationType", fmt.Sprintf("invalid relation type %q", relationType))
	}
	encoded, err := models.EncodeMetadata(metadata)
	if err != nil {
		return "", apperrors.NewFieldValidationError(prefix+"metadata", "metadata cannot be serialized: "+err.Error())
	}
	return encoded, nil
}

// Link inserts a new active relation. It does not look for an existing one:
// callers wanting at most one effective edge use Associate.
func (s *RelationService) Link(ctx context.Context, c models.RelationCandidate) (*models.Relation, error) {
	rel, err := newRelation(c)
	if err != nil {
		return nil, err
	}
	if err := s.relations.Create(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// FindActive returns the active relation for the triple, if any
func (s *RelationService) FindActive(ctx context.Context, fromID, toID string, relationType models.RelationType) (*models.Relation, bool, error) {
	rel, err := s.relations.FindLatest(ctx, fromID, toID, relationType, true)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rel, true, nil
}

// ReactivateOrUpdate makes an existing relation active again, clears its end
// date and replaces its metadata when one is given
func (s *RelationService) ReactivateOrUpdate(ctx context.Context, existing *models.Relation, metadata map[string]interface{}) (*models.Relation, error) {
	encoded, err := models.EncodeMetadata(metadata)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("metadata", "metadata cannot be serialized: "+err.Error())
	}
	return s.relations.Reactivate(ctx, existing.ID, encoded)
}

// Associate links the triple at most once: the latest existing row, active or
// not, is reactivated; otherwise a row is inserted. Concurrent calls for the
// same triple are serialized by the store. It reports whether a row was inserted.
func (s *RelationService) Associate(ctx context.Context, c models.RelationCandidate) (*models.Relation, bool, error) {
	rel, err := newRelation(c)
	if err != nil {
		return nil, false, err
	}

	result, created, err := s.relations.Associate(ctx, rel)
	if err != nil {
		return nil, false, err
	}

	s.log.Debug().
		Str("relationID", result.ID).
		Str("relationType", string(result.RelationType)).
		Bool("created", created).
		Msg("Relation associated")
	return result, created, nil
}

// Get returns a relation by id
func (s *RelationService) Get(ctx context.Context, id string) (*models.Relation, error) {
	return s.relations.GetByID(ctx, id)
}

// Deactivate soft-deletes a relation, keeping it as history
func (s *RelationService) Deactivate(ctx context.Context, id string) (*models.Relation, error) {
	return s.relations.Deactivate(ctx, id, helpers.NowUTC())
}

// Remove hard-deletes a relation
func (s *RelationService) Remove(ctx context.Context, id string) error {
	return s.relations.Delete(ctx, id)
}

// UpdateMetadata shallow-merges patch into a relation's metadata.
// Stored metadata that cannot be parsed is treated as empty.
func (s *RelationService) UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*models.Relation, error) {
	if patch == nil {
		return nil, apperrors.NewFieldValidationError("metadata", "metadata patch is required")
	}
	return s.relations.UpdateMetadata(ctx, id, patch)
}

// RelationsFrom lists relations where the entity is the source, with the target entities
func (s *RelationService) RelationsFrom(ctx context.Context, entityID string, relationType models.RelationType, activeOnly bool) ([]*models.RelatedEntity, error) {
	return s.traverse(ctx, entityID, models.DirectionOut, relationType, activeOnly)
}

// RelationsTo lists relations where the entity is the target, with the source entities
func (s *RelationService) RelationsTo(ctx context.Context, entityID string, relationType models.RelationType, activeOnly bool) ([]*models.RelatedEntity, error) {
	return s.traverse(ctx, entityID, models.DirectionIn, relationType, activeOnly)
}

func (s *RelationService) traverse(ctx context.Context, entityID string, direction models.Direction, relationType models.RelationType, activeOnly bool) ([]*models.RelatedEntity, error) {
	if relationType != "" && !relationType.Valid() {
		return nil, apperrors.NewFieldValidationError("relationType", fmt.Sprintf("invalid relation type %q", relationType))
	}
	return s.relations.ListJoined(ctx, repositories.RelationFilter{
		EntityID:     entityID,
		Direction:    direction,
		RelationType: relationType,
		ActiveOnly:   activeOnly,
	})
}
