package repositories

import (
	"context"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

var entityColumns = []string{"e.id", "e.type", "e.name", "e.description", "e.is_active", "e.created_at", "e.updated_at"}

// valueTextExpr renders a value row the way models.ScalarString does, for attribute filters
const valueTextExpr = `COALESCE(v.value_string, v.value_number::text, v.value_bool::text,
	to_char(v.value_date, 'YYYY-MM-DD'),
	to_char(v.value_datetime AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
	v.value_text)`

const attributeMatchExpr = `EXISTS (SELECT 1 FROM ` + tableValues + ` v JOIN ` + tableAttributes + ` a ON a.id = v.attribute_id
	WHERE v.entity_id = e.id AND a.name = ? AND ` + valueTextExpr + ` = ?)`

type entityRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEntityRepository creates a new PostgreSQL entity repository
func NewEntityRepository(database *db.PostgresDB) EntityRepository {
	return &entityRepository{
		db: database,
		sb: psql,
	}
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	entity := &models.Entity{}
	var entityType string
	if err := row.Scan(
		&entity.ID, &entityType, &entity.Name, &entity.Description,
		&entity.IsActive, &entity.CreatedAt, &entity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	entity.Type = models.EntityType(entityType)
	return entity, nil
}

// Create inserts a new entity
func (r *entityRepository) Create(ctx context.Context, entity *models.Entity) error {
	sql, args, err := r.sb.Insert(tableEntities).
		Columns("id", "type", "name", "description", "is_active", "created_at", "updated_at").
		Values(entity.ID, string(entity.Type), entity.Name, entity.Description, entity.IsActive, entity.CreatedAt, entity.UpdatedAt).
		ToSql()
	if err != nil {
		return dberrors.Infrastructure(err, "build create entity query")
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		return dberrors.Infrastructure(err, "create entity")
	}
	return nil
}

// GetByID retrieves an entity with its values
func (r *entityRepository) GetByID(ctx context.Context, id string) (*models.Entity, error) {
	sql, args, err := r.sb.Select(entityColumns...).
		From(tableEntities + " e").
		Where(squirrel.Eq{"e.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build get entity query")
	}

	entity, err := scanEntity(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("entity " + id + " not found")
		}
		return nil, dberrors.Infrastructure(err, "get entity")
	}

	values, err := selectValues(ctx, r.db.Pool, []string{id})
	if err != nil {
		return nil, dberrors.Infrastructure(err, "load entity values")
	}
	entity.Values = values[id]

	return entity, nil
}

// Update changes the mutable fields of an entity
func (r *entityRepository) Update(ctx context.Context, id string, patch models.EntityPatch) (*models.Entity, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	set := map[string]interface{}{"updated_at": helpers.NowUTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}

	sql, args, err := r.sb.Update(tableEntities).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build update entity query")
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "update entity")
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, apperrors.NewNotFoundError("entity " + id + " not found")
	}

	return r.GetByID(ctx, id)
}

// Delete removes an entity's values, its relations in both directions, then the entity, in one transaction
func (r *entityRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		steps := []squirrel.Sqlizer{
			r.sb.Delete(tableValues).Where(squirrel.Eq{"entity_id": id}),
			r.sb.Delete(tableRelations).Where(squirrel.Or{
				squirrel.Eq{"from_entity_id": id},
				squirrel.Eq{"to_entity_id": id},
			}),
		}
		for _, step := range steps {
			sql, args, err := step.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}

		sql, args, err := r.sb.Delete(tableEntities).Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("entity " + id + " not found")
		}
		return nil
	})
	if err != nil {
		return storeError(err, "delete entity")
	}

	logger.Debug().Str("entityID", id).Msg("Entity deleted with its values and relations")
	return nil
}

// List retrieves entities matching the filter, ordered by creation time, with their values
func (r *entityRepository) List(ctx context.Context, filter EntityFilter) ([]*models.Entity, error) {
	query := r.applyFilter(r.sb.Select(entityColumns...).From(tableEntities+" e"), filter).
		OrderBy("e.created_at ASC", "e.id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build list entities query")
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "list entities")
	}
	defer rows.Close()

	entities := []*models.Entity{}
	ids := []string{}
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, dberrors.Infrastructure(err, "scan entity")
		}
		entities = append(entities, entity)
		ids = append(ids, entity.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Infrastructure(err, "iterate entities")
	}

	values, err := selectValues(ctx, r.db.Pool, ids)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "load entity values")
	}
	for _, entity := range entities {
		entity.Values = values[entity.ID]
	}

	return entities, nil
}

// Count returns the number of entities matching the filter, ignoring limit and offset
func (r *entityRepository) Count(ctx context.Context, filter EntityFilter) (int64, error) {
	sql, args, err := r.applyFilter(r.sb.Select("COUNT(*)").From(tableEntities+" e"), filter).ToSql()
	if err != nil {
		return 0, dberrors.Infrastructure(err, "build count entities query")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, dberrors.Infrastructure(err, "count entities")
	}
	return total, nil
}

func (r *entityRepository) applyFilter(query squirrel.SelectBuilder, filter EntityFilter) squirrel.SelectBuilder {
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"e.type": string(filter.Type)})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"e.is_active": *filter.IsActive})
	}
	if filter.NameContains != "" {
		query = query.Where(squirrel.ILike{"e.name": "%" + strings.TrimSpace(filter.NameContains) + "%"})
	}

	names := make([]string, 0, len(filter.Attributes))
	for name := range filter.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		query = query.Where(squirrel.Expr(attributeMatchExpr, name, filter.Attributes[name]))
	}

	return query
}
