package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

type relationRepository struct {
	db *DB
}

// NewRelationRepository creates an in-memory relation repository
func NewRelationRepository(db *DB) repositories.RelationRepository {
	return &relationRepository{db: db}
}

func (repo *relationRepository) insert(rel *models.Relation) error {
	if _, ok := repo.db.entities[rel.FromEntityID]; !ok {
		return apperrors.NewNotFoundError("related entity not found")
	}
	if _, ok := repo.db.entities[rel.ToEntityID]; !ok {
		return apperrors.NewNotFoundError("related entity not found")
	}
	repo.db.relations[rel.ID] = &relationRow{relation: *rel, seq: repo.db.nextSeq()}
	return nil
}

func (repo *relationRepository) Create(_ context.Context, rel *models.Relation) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	return repo.insert(rel)
}

func (repo *relationRepository) GetByID(_ context.Context, id string) (*models.Relation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	row, ok := repo.db.relations[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("relation " + id + " not found")
	}
	rel := row.relation
	return &rel, nil
}

// latest prefers active rows, then the most recently updated, then the most recently inserted
func (repo *relationRepository) latest(fromID, toID string, relationType models.RelationType, activeOnly bool) *relationRow {
	var best *relationRow
	for _, row := range repo.db.relations {
		rel := row.relation
		if rel.FromEntityID != fromID || rel.ToEntityID != toID || rel.RelationType != relationType {
			continue
		}
		if activeOnly && !rel.IsActive {
			continue
		}
		if best == nil || newer(row, best) {
			best = row
		}
	}
	return best
}

func newer(a, b *relationRow) bool {
	if a.relation.IsActive != b.relation.IsActive {
		return a.relation.IsActive
	}
	if !a.relation.UpdatedAt.Equal(b.relation.UpdatedAt) {
		return a.relation.UpdatedAt.After(b.relation.UpdatedAt)
	}
	return a.seq > b.seq
}

func (repo *relationRepository) FindLatest(_ context.Context, fromID, toID string, relationType models.RelationType, activeOnly bool) (*models.Relation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	row := repo.latest(fromID, toID, relationType, activeOnly)
	if row == nil {
		return nil, apperrors.NewNotFoundError("no " + string(relationType) + " relation from " + fromID + " to " + toID)
	}
	rel := row.relation
	return &rel, nil
}

func (repo *relationRepository) Associate(_ context.Context, candidate *models.Relation) (*models.Relation, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if row := repo.latest(candidate.FromEntityID, candidate.ToEntityID, candidate.RelationType, false); row != nil {
		row.relation.Reactivate(helpers.NowUTC(), candidate.Metadata)
		rel := row.relation
		return &rel, false, nil
	}

	if err := repo.insert(candidate); err != nil {
		return nil, false, err
	}
	rel := *candidate
	return &rel, true, nil
}

func (repo *relationRepository) mutate(id string, change func(*models.Relation) error) (*models.Relation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.relations[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("relation " + id + " not found")
	}
	updated := row.relation
	if err := change(&updated); err != nil {
		return nil, err
	}
	row.relation = updated
	return &updated, nil
}

func (repo *relationRepository) Reactivate(_ context.Context, id string, metadata string) (*models.Relation, error) {
	return repo.mutate(id, func(rel *models.Relation) error {
		rel.Reactivate(helpers.NowUTC(), metadata)
		return nil
	})
}

func (repo *relationRepository) Deactivate(_ context.Context, id string, at time.Time) (*models.Relation, error) {
	return repo.mutate(id, func(rel *models.Relation) error {
		rel.Deactivate(at)
		return nil
	})
}

func (repo *relationRepository) UpdateMetadata(_ context.Context, id string, patch map[string]interface{}) (*models.Relation, error) {
	return repo.mutate(id, func(rel *models.Relation) error {
		merged, err := models.MergeMetadata(rel.Metadata, patch)
		if err != nil {
			return apperrors.NewValidationError("metadata cannot be serialized: " + err.Error())
		}
		rel.Metadata = merged
		rel.UpdatedAt = helpers.NowUTC()
		return nil
	})
}

func (repo *relationRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.relations[id]; !ok {
		return apperrors.NewNotFoundError("relation " + id + " not found")
	}
	delete(repo.db.relations, id)
	return nil
}

func (repo *relationRepository) ListJoined(_ context.Context, filter repositories.RelationFilter) ([]*models.RelatedEntity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rows []*relationRow
	for _, row := range repo.db.relations {
		rel := row.relation
		near := rel.FromEntityID
		if filter.Direction == models.DirectionIn {
			near = rel.ToEntityID
		}
		if near != filter.EntityID {
			continue
		}
		if filter.RelationType != "" && rel.RelationType != filter.RelationType {
			continue
		}
		if filter.ActiveOnly && !rel.IsActive {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].relation.CreatedAt.Equal(rows[j].relation.CreatedAt) {
			return rows[i].relation.CreatedAt.Before(rows[j].relation.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})

	related := make([]*models.RelatedEntity, 0, len(rows))
	for _, row := range rows {
		farID := row.relation.ToEntityID
		if filter.Direction == models.DirectionIn {
			farID = row.relation.FromEntityID
		}
		entityRow, ok := repo.db.entities[farID]
		if !ok {
			continue
		}
		rel := row.relation
		related = append(related, &models.RelatedEntity{
			Relation: &rel,
			Entity:   repo.db.entityWithValues(entityRow),
		})
	}
	return related, nil
}
