package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// RelationInput links the written entity to another one
type RelationInput struct {
	ToID         string
	RelationType models.RelationType
	Metadata     map[string]interface{}
}

// WriteRequest is a flat attribute bag for a new entity, or for an existing one when ID is set
type WriteRequest struct {
	ID          string
	Type        models.EntityType
	Name        *string
	Description *string
	IsActive    *bool
	Attributes  map[string]interface{}
	Relations   []RelationInput
}

// WriteResult echoes what a write touched
type WriteResult struct {
	EntityID  string             `json:"entityId"`
	Created   bool               `json:"created"`
	Written   []string           `json:"written"`
	Relations []*models.Relation `json:"relations,omitempty"`
}

// EntityQuery lists entities of one type, optionally with relations
type EntityQuery struct {
	Filter    repositories.EntityFilter
	Relations []RelationSpec
}

// EAVService is the write and read surface of the entity-attribute-value core
type EAVService struct {
	registry  *AttributeRegistry
	values    *ValueStore
	entities  *EntityService
	relations *RelationService
	projector *Projector
	accounts  *AccountService
	log       zerolog.Logger
}

// NewEAVService creates a new EAV service
func NewEAVService(
	registry *AttributeRegistry,
	values *ValueStore,
	entities *EntityService,
	relations *RelationService,
	projector *Projector,
	accounts *AccountService,
) *EAVService {
	return &EAVService{
		registry:  registry,
		values:    values,
		entities:  entities,
		relations: relations,
		projector: projector,
		accounts:  accounts,
		log:       logger.Component("eav_service"),
	}
}

type pendingValue struct {
	attr   *models.Attribute
	scalar models.Scalar
}

// Write creates or updates an entity from a flat attribute bag and links its relations.
// Attributes are resolved and every value is coerced before anything is written,
// so a bad value fails the request without a half-created entity.
func (s *EAVService) Write(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	var (
		entity *models.Entity
		err    error
	)

	entityType := req.Type
	if req.ID != "" {
		entity, err = s.entities.Get(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if entityType != "" && entityType != entity.Type {
			return nil, apperrors.NewFieldValidationError("type", "entity type cannot be changed")
		}
		entityType = entity.Type
		if err := checkNameLength(req.Name); err != nil {
			return nil, err
		}
	} else if err := validateNew(entityType, req.Name); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(req.Attributes))
	for name, raw := range req.Attributes {
		if models.IsEmptyRaw(raw) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if entity == nil {
		if err := s.checkRequired(ctx, entityType, names); err != nil {
			return nil, err
		}
	}

	pending := make([]pendingValue, 0, len(names))
	for _, name := range names {
		attr, err := s.registry.ResolveForWrite(ctx, name, req.Attributes[name], entityType)
		if err != nil {
			return nil, err
		}
		scalar, err := coerce(attr, req.Attributes[name])
		if err != nil {
			return nil, err
		}
		pending = append(pending, pendingValue{attr: attr, scalar: scalar})
	}

	for i, rel := range req.Relations {
		if _, err := checkRelationPayload(fmt.Sprintf("relations[%d].", i), rel.RelationType, rel.Metadata); err != nil {
			return nil, err
		}
		if _, err := s.entities.Get(ctx, rel.ToID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewFieldValidationError(fmt.Sprintf("relations[%d].toId", i), "related entity "+rel.ToID+" not found")
			}
			return nil, err
		}
	}

	result := &WriteResult{Written: []string{}}
	if entity == nil {
		entity, err = s.entities.Create(ctx, entityType, req.Name, req.Description)
		if err != nil {
			return nil, err
		}
		result.Created = true
		if req.IsActive != nil && !*req.IsActive {
			if entity, err = s.entities.Update(ctx, entity.ID, models.EntityPatch{IsActive: req.IsActive}); err != nil {
				return nil, err
			}
		}
	} else {
		patch := models.EntityPatch{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
		if !patch.Empty() {
			if entity, err = s.entities.Update(ctx, entity.ID, patch); err != nil {
				return nil, err
			}
		}
	}
	result.EntityID = entity.ID

	for _, p := range pending {
		written, err := s.values.put(ctx, entity.ID, p.attr, p.scalar)
		if err != nil {
			return nil, err
		}
		if written {
			result.Written = append(result.Written, p.attr.Name)
		}
	}

	for _, rel := range req.Relations {
		linked, _, err := s.relations.Associate(ctx, models.RelationCandidate{
			FromEntityID: entity.ID,
			ToEntityID:   rel.ToID,
			RelationType: rel.RelationType,
			Metadata:     rel.Metadata,
		})
		if err != nil {
			return nil, err
		}
		result.Relations = append(result.Relations, linked)
	}

	s.log.Debug().
		Str("entityID", entity.ID).
		Bool("created", result.Created).
		Strs("written", result.Written).
		Msg("Entity written")
	return result, nil
}

// checkRequired rejects a new entity missing an attribute the registry marks required for its type
func (s *EAVService) checkRequired(ctx context.Context, entityType models.EntityType, present []string) error {
	required, err := s.registry.RequiredFor(ctx, entityType)
	if err != nil {
		return err
	}

	have := make(map[string]struct{}, len(present))
	for _, name := range present {
		have[name] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewCustomError(apperrors.ErrValidation,
			fmt.Sprintf("missing required attributes for %s: %s", entityType, strings.Join(missing, ", "))).
			WithDetails(map[string]interface{}{"missing": missing})
	}
	return nil
}

// Read projects one entity and the relations requested by specs
func (s *EAVService) Read(ctx context.Context, id string, specs []RelationSpec) (Projection, error) {
	entity, err := s.entities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.ProjectWithRelations(ctx, entity, specs)
}

// Query projects every entity matching the query and returns the total match count
func (s *EAVService) Query(ctx context.Context, q EntityQuery) ([]Projection, int64, error) {
	entities, err := s.entities.FindByType(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entities.Count(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]Projection, 0, len(entities))
	for _, entity := range entities {
		p, err := s.projector.ProjectWithRelations(ctx, entity, q.Relations)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

// ReadProfileByAccount projects the profile entity bound to an account, creating it on first use
func (s *EAVService) ReadProfileByAccount(ctx context.Context, accountID string, specs []RelationSpec) (Projection, error) {
	entity, _, err := s.accounts.FindOrCreateEntityForAccount(ctx, accountID, "")
	if err != nil {
		return nil, err
	}
	return s.projector.ProjectWithRelations(ctx, entity, specs)
}

// UpdateProfileByAccount writes attributes to the profile entity of an account,
// creating and binding the entity when the account has none yet
func (s *EAVService) UpdateProfileByAccount(ctx context.Context, accountID string, req WriteRequest) (Projection, error) {
	entity, _, err := s.accounts.FindOrCreateEntityForAccount(ctx, accountID, req.Type)
	if err != nil {
		return nil, err
	}

	req.ID = entity.ID
	req.Type = ""
	if _, err := s.Write(ctx, req); err != nil {
		return nil, err
	}
	return s.Read(ctx, entity.ID, nil)
}
