package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

var attributeColumns = []string{
	"id", "name", "display_name", "data_type", "category", "entity_types::text", "is_required", "created_at", "updated_at",
}

// upsertAttributeSuffix overwrites the definition with the latest caller's values and unions the entity types
const upsertAttributeSuffix = `ON CONFLICT (name) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	data_type = EXCLUDED.data_type,
	category = EXCLUDED.category,
	is_required = EXCLUDED.is_required,
	entity_types = (
		SELECT COALESCE(jsonb_agg(DISTINCT t), '[]'::jsonb)
		FROM jsonb_array_elements_text(attributes.entity_types || EXCLUDED.entity_types) AS t
	),
	updated_at = EXCLUDED.updated_at
RETURNING id, name, display_name, data_type, category, entity_types::text, is_required, created_at, updated_at`

// attributeRepository is the PostgreSQL AttributeRepository
type attributeRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAttributeRepository creates a new PostgreSQL attribute repository
func NewAttributeRepository(database *db.PostgresDB) AttributeRepository {
	return &attributeRepository{
		db: database,
		sb: psql,
	}
}

func scanAttribute(row pgx.Row) (*models.Attribute, error) {
	attr := &models.Attribute{}
	var dataType, category, entityTypes string
	if err := row.Scan(
		&attr.ID, &attr.Name, &attr.DisplayName, &dataType, &category, &entityTypes,
		&attr.IsRequired, &attr.CreatedAt, &attr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	attr.DataType = models.DataType(dataType)
	attr.Category = models.Category(category)
	attr.EntityTypes = []models.EntityType{}
	if entityTypes != "" {
		if err := json.Unmarshal([]byte(entityTypes), &attr.EntityTypes); err != nil {
			return nil, fmt.Errorf("failed to decode entity types of attribute %s: %w", attr.Name, err)
		}
	}
	return attr, nil
}

// Upsert creates or updates an attribute keyed by name
func (r *attributeRepository) Upsert(ctx context.Context, def models.AttributeDefinition) (*models.Attribute, error) {
	entityTypes := def.EntityTypes
	if entityTypes == nil {
		entityTypes = []models.EntityType{}
	}
	encoded, err := json.Marshal(entityTypes)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid entity types: %v", err))
	}

	now := helpers.NowUTC()
	sql, args, err := r.sb.Insert(tableAttributes).
		Columns("id", "name", "display_name", "data_type", "category", "entity_types", "is_required", "created_at", "updated_at").
		Values(uuid.NewString(), def.Name, def.DisplayName, string(def.DataType), string(def.Category),
			squirrel.Expr("?::jsonb", string(encoded)), def.IsRequired, now, now).
		Suffix(upsertAttributeSuffix).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build upsert attribute query")
	}

	attr, err := scanAttribute(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Infrastructure(err, "upsert attribute "+def.Name)
	}
	return attr, nil
}

// GetByID retrieves an attribute by ID
func (r *attributeRepository) GetByID(ctx context.Context, id string) (*models.Attribute, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "attribute "+id)
}

// GetByName retrieves an attribute by its unique name
func (r *attributeRepository) GetByName(ctx context.Context, name string) (*models.Attribute, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, "attribute "+name)
}

func (r *attributeRepository) getOne(ctx context.Context, where squirrel.Eq, what string) (*models.Attribute, error) {
	sql, args, err := r.sb.Select(attributeColumns...).
		From(tableAttributes).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build get attribute query")
	}

	attr, err := scanAttribute(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(what + " not found")
		}
		return nil, dberrors.Infrastructure(err, "get "+what)
	}
	return attr, nil
}

// List retrieves attributes ordered by category and name
func (r *attributeRepository) List(ctx context.Context, filter AttributeFilter) ([]*models.Attribute, error) {
	query := r.sb.Select(attributeColumns...).
		From(tableAttributes).
		OrderBy("category ASC", "name ASC")

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": string(filter.Category)})
	}
	if filter.EntityType != "" {
		query = query.Where("entity_types @> ?::jsonb", fmt.Sprintf("[%q]", filter.EntityType))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build list attributes query")
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "list attributes")
	}
	defer rows.Close()

	attributes := []*models.Attribute{}
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, dberrors.Infrastructure(err, "scan attribute")
		}
		attributes = append(attributes, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Infrastructure(err, "iterate attributes")
	}

	return attributes, nil
}
