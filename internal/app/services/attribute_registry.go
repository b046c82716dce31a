package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/logger"
	"github.com/yigit/unicampus/internal/pkg/validation"
)

const maxAttributeNameLength = 100

// AttributeRegistry resolves attribute definitions, creating them on first use
type AttributeRegistry struct {
	attributes repositories.AttributeRepository
	catalog    map[string]models.AttributeDefinition
	log        zerolog.Logger
}

// NewAttributeRegistry creates a registry; catalog entries are used for attributes
// first seen on the write path.
func NewAttributeRegistry(attributes repositories.AttributeRepository, catalog []models.AttributeDefinition) *AttributeRegistry {
	byName := make(map[string]models.AttributeDefinition, len(catalog))
	for _, d := range catalog {
		byName[d.Name] = d
	}
	return &AttributeRegistry{
		attributes: attributes,
		catalog:    byName,
		log:        logger.Component("attribute_registry"),
	}
}

// normalizeDefinition fills defaults and rejects unknown enum values
func normalizeDefinition(d models.AttributeDefinition) (models.AttributeDefinition, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return d, apperrors.NewFieldValidationError("name", "attribute name is required")
	}
	if len(d.Name) > maxAttributeNameLength || !validation.IsAttributeName(d.Name) {
		return d, apperrors.NewFieldValidationError("name", fmt.Sprintf("invalid attribute name %q", d.Name))
	}
	if !d.DataType.Valid() {
		return d, apperrors.NewFieldValidationError("dataType", fmt.Sprintf("invalid data type %q", d.DataType))
	}
	if d.Category == "" {
		d.Category = models.CategoryGeneral
	}
	if !d.Category.Valid() {
		return d, apperrors.NewFieldValidationError("category", fmt.Sprintf("invalid category %q", d.Category))
	}
	for _, et := range d.EntityTypes {
		if !et.Valid() {
			return d, apperrors.NewFieldValidationError("entityTypes", fmt.Sprintf("invalid entity type %q", et))
		}
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		d.DisplayName = humanize(d.Name)
	}
	if utf8.RuneCountInString(d.DisplayName) > models.MaxNameLength {
		return d, apperrors.NewFieldValidationError("displayName", fmt.Sprintf("display name must be at most %d characters", models.MaxNameLength))
	}
	d.EntityTypes = models.MergeEntityTypes(nil, d.EntityTypes)
	return d, nil
}

// ResolveOrCreate upserts an attribute by name. A differing definition silently
// replaces the stored one; entity types accumulate.
func (r *AttributeRegistry) ResolveOrCreate(ctx context.Context, d models.AttributeDefinition) (*models.Attribute, error) {
	d, err := normalizeDefinition(d)
	if err != nil {
		return nil, err
	}
	return r.attributes.Upsert(ctx, d)
}

// SeedCatalog upserts every definition and returns the names that were (re)seeded
func (r *AttributeRegistry) SeedCatalog(ctx context.Context, defs []models.AttributeDefinition) ([]string, error) {
	seeded := make([]string, 0, len(defs))
	var errs []error

	for _, d := range defs {
		attr, err := r.ResolveOrCreate(ctx, d)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed attribute %s: %w", d.Name, err))
			continue
		}
		seeded = append(seeded, attr.Name)
	}

	r.log.Info().Int("seeded", len(seeded)).Int("failed", len(errs)).Msg("Attribute catalog seeded")
	return seeded, errors.Join(errs...)
}

// List returns the registered attributes
func (r *AttributeRegistry) List(ctx context.Context, filter repositories.AttributeFilter) ([]*models.Attribute, error) {
	return r.attributes.List(ctx, filter)
}

// Get returns an attribute by name
func (r *AttributeRegistry) Get(ctx context.Context, name string) (*models.Attribute, error) {
	return r.attributes.GetByName(ctx, name)
}

// ResolveForWrite returns the attribute a write of raw under name should use.
// Existing attributes keep their definition and only learn the entity type;
// unknown names come from the catalog or are inferred from the raw value.
func (r *AttributeRegistry) ResolveForWrite(ctx context.Context, name string, raw interface{}, entityType models.EntityType) (*models.Attribute, error) {
	existing, err := r.attributes.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.AllowsEntityType(entityType) {
			return existing, nil
		}
		return r.ResolveOrCreate(ctx, models.AttributeDefinition{
			Name:        existing.Name,
			DisplayName: existing.DisplayName,
			DataType:    existing.DataType,
			Category:    existing.Category,
			EntityTypes: []models.EntityType{entityType},
			IsRequired:  existing.IsRequired,
		})
	case !apperrors.IsNotFound(err):
		return nil, err
	}

	d, ok := r.catalog[name]
	if !ok {
		d = models.AttributeDefinition{
			Name:     name,
			DataType: models.InferDataType(raw),
			Category: models.CategoryGeneral,
		}
		r.log.Debug().Str("attribute", name).Str("dataType", string(d.DataType)).Msg("Creating attribute on first write")
	}
	d.EntityTypes = models.MergeEntityTypes(d.EntityTypes, []models.EntityType{entityType})
	return r.ResolveOrCreate(ctx, d)
}

// RequiredFor returns the names of attributes an entity of type t must be created with
func (r *AttributeRegistry) RequiredFor(ctx context.Context, t models.EntityType) ([]string, error) {
	attrs, err := r.attributes.List(ctx, repositories.AttributeFilter{EntityType: t})
	if err != nil {
		return nil, err
	}
	var names []string
	for _, a := range attrs {
		if a.IsRequired {
			names = append(names, a.Name)
		}
	}
	return names, nil
}

// humanize turns "dateOfBirth" or "date_of_birth" into "Date Of Birth"
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteRune(' ')
			continue
		case i == 0:
			r = unicode.ToUpper(r)
		case unicode.IsUpper(r):
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
