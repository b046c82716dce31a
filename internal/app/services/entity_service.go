package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// EntityService handles generic entity lifecycle operations
type EntityService struct {
	entities repositories.EntityRepository
	log      zerolog.Logger
}

// NewEntityService creates a new entity service
func NewEntityService(entities repositories.EntityRepository) *EntityService {
	return &EntityService{
		entities: entities,
		log:      logger.Component("entity_service"),
	}
}

// validateNew checks a new entity's type and name
func validateNew(entityType models.EntityType, name *string) error {
	if !entityType.Valid() {
		return apperrors.NewFieldValidationError("type", fmt.Sprintf("invalid entity type %q", entityType))
	}
	if entityType.RequiresName() && (name == nil || strings.TrimSpace(*name) == "") {
		return apperrors.NewFieldValidationError("name", fmt.Sprintf("name is required for %s entities", entityType))
	}
	return checkNameLength(name)
}

func checkNameLength(name *string) error {
	if name != nil && utf8.RuneCountInString(*name) > models.MaxNameLength {
		return apperrors.NewFieldValidationError("name", fmt.Sprintf("name must be at most %d characters", models.MaxNameLength))
	}
	return nil
}

// Create creates an active entity of the given type
func (s *EntityService) Create(ctx context.Context, entityType models.EntityType, name, description *string) (*models.Entity, error) {
	if err := validateNew(entityType, name); err != nil {
		return nil, err
	}

	now := helpers.NowUTC()
	entity := &models.Entity{
		ID:          uuid.NewString(),
		Type:        entityType,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.entities.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.log.Debug().Str("entityID", entity.ID).Str("type", string(entityType)).Msg("Entity created")
	return entity, nil
}

// Get returns an entity with its values
func (s *EntityService) Get(ctx context.Context, id string) (*models.Entity, error) {
	return s.entities.GetByID(ctx, id)
}

// Update changes name, description or the active flag. The type never changes.
func (s *EntityService) Update(ctx context.Context, id string, patch models.EntityPatch) (*models.Entity, error) {
	if err := checkNameLength(patch.Name); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		current, err := s.entities.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Type.RequiresName() && strings.TrimSpace(*patch.Name) == "" {
			return nil, apperrors.NewFieldValidationError("name", fmt.Sprintf("name is required for %s entities", current.Type))
		}
	}
	return s.entities.Update(ctx, id, patch)
}

// Delete removes an entity together with its values and relations
func (s *EntityService) Delete(ctx context.Context, id string) error {
	if err := s.entities.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("entityID", id).Msg("Entity deleted")
	return nil
}

// FindByType lists entities of one type with their values eager-loaded
func (s *EntityService) FindByType(ctx context.Context, filter repositories.EntityFilter) ([]*models.Entity, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperrors.NewFieldValidationError("type", fmt.Sprintf("invalid entity type %q", filter.Type))
	}
	return s.entities.List(ctx, filter)
}

// Count returns how many entities match the filter
func (s *EntityService) Count(ctx context.Context, filter repositories.EntityFilter) (int64, error) {
	return s.entities.Count(ctx, filter)
}
