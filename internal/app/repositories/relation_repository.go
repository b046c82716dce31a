package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

var relationColumns = []string{
	"r.id", "r.from_entity_id", "r.to_entity_id", "r.relation_type", "r.is_active",
	"r.start_date", "r.end_date", "COALESCE(r.metadata, '')", "r.created_at", "r.updated_at",
}

type relationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewRelationRepository creates a new PostgreSQL relation repository
func NewRelationRepository(database *db.PostgresDB) RelationRepository {
	return &relationRepository{
		db: database,
		sb: psql,
	}
}

func scanRelation(row pgx.Row, extra ...interface{}) (*models.Relation, error) {
	rel := &models.Relation{}
	var relationType string
	dest := []interface{}{
		&rel.ID, &rel.FromEntityID, &rel.ToEntityID, &relationType, &rel.IsActive,
		&rel.StartDate, &rel.EndDate, &rel.Metadata, &rel.CreatedAt, &rel.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	rel.RelationType = models.RelationType(relationType)
	return rel, nil
}

func (r *relationRepository) insert(ctx context.Context, q db.Querier, rel *models.Relation) error {
	var metadata interface{}
	if rel.Metadata != "" {
		metadata = rel.Metadata
	}

	sql, args, err := r.sb.Insert(tableRelations).
		Columns("id", "from_entity_id", "to_entity_id", "relation_type", "is_active",
			"start_date", "end_date", "metadata", "created_at", "updated_at").
		Values(rel.ID, rel.FromEntityID, rel.ToEntityID, string(rel.RelationType), rel.IsActive,
			rel.StartDate, rel.EndDate, metadata, rel.CreatedAt, rel.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("related entity not found")
		}
		return err
	}
	return nil
}

// Create inserts a relation row unconditionally
func (r *relationRepository) Create(ctx context.Context, rel *models.Relation) error {
	if err := r.insert(ctx, r.db.Pool, rel); err != nil {
		return storeError(err, "create relation")
	}
	return nil
}

func (r *relationRepository) getByID(ctx context.Context, q db.Querier, id string, forUpdate bool) (*models.Relation, error) {
	query := r.sb.Select(relationColumns...).
		From(tableRelations + " r").
		Where(squirrel.Eq{"r.id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rel, err := scanRelation(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError("relation " + id + " not found")
		}
		return nil, err
	}
	return rel, nil
}

// GetByID retrieves a relation by ID
func (r *relationRepository) GetByID(ctx context.Context, id string) (*models.Relation, error) {
	rel, err := r.getByID(ctx, r.db.Pool, id, false)
	if err != nil {
		return nil, storeError(err, "get relation")
	}
	return rel, nil
}

func (r *relationRepository) findLatest(ctx context.Context, q db.Querier, fromID, toID string, relationType models.RelationType, activeOnly bool) (*models.Relation, error) {
	query := r.sb.Select(relationColumns...).
		From(tableRelations + " r").
		Where(squirrel.Eq{
			"r.from_entity_id": fromID,
			"r.to_entity_id":   toID,
			"r.relation_type":  string(relationType),
		}).
		OrderBy("r.is_active DESC", "r.updated_at DESC", "r.created_at DESC").
		Limit(1)
	if activeOnly {
		query = query.Where(squirrel.Eq{"r.is_active": true})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rel, err := scanRelation(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no %s relation from %s to %s", relationType, fromID, toID))
		}
		return nil, err
	}
	return rel, nil
}

// FindLatest returns the most recent relation for the triple, preferring active rows
func (r *relationRepository) FindLatest(ctx context.Context, fromID, toID string, relationType models.RelationType, activeOnly bool) (*models.Relation, error) {
	rel, err := r.findLatest(ctx, r.db.Pool, fromID, toID, relationType, activeOnly)
	if err != nil {
		return nil, storeError(err, "find relation")
	}
	return rel, nil
}

func (r *relationRepository) save(ctx context.Context, q db.Querier, rel *models.Relation) error {
	var metadata interface{}
	if rel.Metadata != "" {
		metadata = rel.Metadata
	}

	sql, args, err := r.sb.Update(tableRelations).
		SetMap(map[string]interface{}{
			"is_active":  rel.IsActive,
			"end_date":   rel.EndDate,
			"metadata":   metadata,
			"updated_at": rel.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": rel.ID}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, sql, args...)
	return err
}

// Associate reactivates the latest row for the triple or inserts a new one.
// A transaction-scoped advisory lock on the triple serializes concurrent callers.
func (r *relationRepository) Associate(ctx context.Context, candidate *models.Relation) (*models.Relation, bool, error) {
	var (
		result  *models.Relation
		created bool
	)

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockKey := candidate.FromEntityID + "|" + candidate.ToEntityID + "|" + string(candidate.RelationType)
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", lockKey); err != nil {
			return err
		}

		existing, err := r.findLatest(ctx, tx, candidate.FromEntityID, candidate.ToEntityID, candidate.RelationType, false)
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}

		if existing == nil {
			if err := r.insert(ctx, tx, candidate); err != nil {
				return err
			}
			result, created = candidate, true
			return nil
		}

		existing.Reactivate(helpers.NowUTC(), candidate.Metadata)
		if err := r.save(ctx, tx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, false, storeError(err, "associate relation")
	}

	return result, created, nil
}

// Reactivate marks a relation active again
func (r *relationRepository) Reactivate(ctx context.Context, id string, metadata string) (*models.Relation, error) {
	return r.mutate(ctx, id, "reactivate relation", func(rel *models.Relation) (bool, error) {
		rel.Reactivate(helpers.NowUTC(), metadata)
		return true, nil
	})
}

// Deactivate soft-deletes a relation; deactivating an inactive relation changes nothing
func (r *relationRepository) Deactivate(ctx context.Context, id string, at time.Time) (*models.Relation, error) {
	return r.mutate(ctx, id, "deactivate relation", func(rel *models.Relation) (bool, error) {
		return rel.Deactivate(at), nil
	})
}

// UpdateMetadata merges patch into the stored payload under a row lock
func (r *relationRepository) UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*models.Relation, error) {
	return r.mutate(ctx, id, "update relation metadata", func(rel *models.Relation) (bool, error) {
		merged, err := models.MergeMetadata(rel.Metadata, patch)
		if err != nil {
			return false, apperrors.NewValidationError("metadata cannot be serialized: " + err.Error())
		}
		rel.Metadata = merged
		rel.UpdatedAt = helpers.NowUTC()
		return true, nil
	})
}

// mutate loads a relation FOR UPDATE, applies change and saves it when change reports a modification
func (r *relationRepository) mutate(ctx context.Context, id, op string, change func(*models.Relation) (bool, error)) (*models.Relation, error) {
	var result *models.Relation

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rel, err := r.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}

		changed, err := change(rel)
		if err != nil {
			return err
		}
		if changed {
			if err := r.save(ctx, tx, rel); err != nil {
				return err
			}
		}
		result = rel
		return nil
	})
	if err != nil {
		return nil, storeError(err, op)
	}

	return result, nil
}

// Delete hard-deletes a relation
func (r *relationRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete(tableRelations).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return dberrors.Infrastructure(err, "build delete relation query")
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return dberrors.Infrastructure(err, "delete relation")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("relation " + id + " not found")
	}
	return nil
}

// ListJoined loads relations on one side of an entity together with the far-side
// entities in one query, then the far-side values in a second one.
func (r *relationRepository) ListJoined(ctx context.Context, filter RelationFilter) ([]*models.RelatedEntity, error) {
	nearColumn, farColumn := "r.from_entity_id", "r.to_entity_id"
	if filter.Direction == models.DirectionIn {
		nearColumn, farColumn = farColumn, nearColumn
	}

	query := r.sb.Select(append(append([]string{}, relationColumns...), entityColumns...)...).
		From(tableRelations + " r").
		Join(tableEntities + " e ON e.id = " + farColumn).
		Where(squirrel.Eq{nearColumn: filter.EntityID}).
		OrderBy("r.created_at ASC", "r.id ASC")
	if filter.RelationType != "" {
		query = query.Where(squirrel.Eq{"r.relation_type": string(filter.RelationType)})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"r.is_active": true})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build list relations query")
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "list relations")
	}
	defer rows.Close()

	related := []*models.RelatedEntity{}
	var farIDs []string
	seen := map[string]struct{}{}
	for rows.Next() {
		entity := &models.Entity{}
		var entityType string
		rel, err := scanRelation(rows,
			&entity.ID, &entityType, &entity.Name, &entity.Description,
			&entity.IsActive, &entity.CreatedAt, &entity.UpdatedAt,
		)
		if err != nil {
			return nil, dberrors.Infrastructure(err, "scan relation")
		}
		entity.Type = models.EntityType(entityType)
		related = append(related, &models.RelatedEntity{Relation: rel, Entity: entity})
		if _, ok := seen[entity.ID]; !ok {
			seen[entity.ID] = struct{}{}
			farIDs = append(farIDs, entity.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Infrastructure(err, "iterate relations")
	}

	values, err := selectValues(ctx, r.db.Pool, farIDs)
	if err != nil {
		return nil, dberrors.Infrastructure(err, "load related values")
	}
	for _, item := range related {
		item.Entity.Values = values[item.Entity.ID]
	}

	logger.Debug().
		Str("entityID", filter.EntityID).
		Str("direction", string(filter.Direction)).
		Int("count", len(related)).
		Msg("Relations loaded")

	return related, nil
}
