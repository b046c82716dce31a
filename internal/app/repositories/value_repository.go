package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// Every typed column is rewritten so a column used by a previous data type is nulled
const upsertValueSuffix = `ON CONFLICT (entity_id, attribute_id) DO UPDATE SET
	value_string = EXCLUDED.value_string,
	value_number = EXCLUDED.value_number,
	value_bool = EXCLUDED.value_bool,
	value_date = EXCLUDED.value_date,
	value_datetime = EXCLUDED.value_datetime,
	value_text = EXCLUDED.value_text,
	updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`

type valueRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewValueRepository creates a new PostgreSQL value repository
func NewValueRepository(database *db.PostgresDB) ValueRepository {
	return &valueRepository{
		db: database,
		sb: psql,
	}
}

// Upsert writes the value for an (entity, attribute) pair
func (r *valueRepository) Upsert(ctx context.Context, entityID, attributeID string, cols models.ValueColumns) (*models.Value, error) {
	now := helpers.NowUTC()
	sql, args, err := r.sb.Insert(tableValues).
		Columns("id", "entity_id", "attribute_id",
			"value_string", "value_number", "value_bool", "value_date", "value_datetime", "value_text",
			"created_at", "updated_at").
		Values(uuid.NewString(), entityID, attributeID,
			cols.String, cols.Number, cols.Bool, cols.Date, cols.DateTime, cols.Text,
			now, now).
		Suffix(upsertValueSuffix).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build upsert value query")
	}

	value := &models.Value{EntityID: entityID, AttributeID: attributeID, Columns: cols}
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&value.ID, &value.CreatedAt, &value.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.NewNotFoundError("entity or attribute not found")
		}
		return nil, dberrors.Infrastructure(err, "upsert value")
	}
	return value, nil
}

// ListByEntity loads every value of one entity
func (r *valueRepository) ListByEntity(ctx context.Context, entityID string) ([]*models.AttributeValue, error) {
	byEntity, err := selectValues(ctx, r.db.Pool, []string{entityID})
	if err != nil {
		return nil, dberrors.Infrastructure(err, "list values")
	}
	values := byEntity[entityID]
	if values == nil {
		values = []*models.AttributeValue{}
	}
	return values, nil
}

// ListByEntities loads the values of many entities in one query
func (r *valueRepository) ListByEntities(ctx context.Context, entityIDs []string) (map[string][]*models.AttributeValue, error) {
	byEntity, err := selectValues(ctx, r.db.Pool, entityIDs)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "list values")
	}
	return byEntity, nil
}
