package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

type entityRepository struct {
	db *DB
}

// NewEntityRepository creates an in-memory entity repository
func NewEntityRepository(db *DB) repositories.EntityRepository {
	return &entityRepository{db: db}
}

func (repo *entityRepository) Create(_ context.Context, entity *models.Entity) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row := &entityRow{entity: *entity, seq: repo.db.nextSeq()}
	row.entity.Values = nil
	repo.db.entities[entity.ID] = row
	return nil
}

func (repo *entityRepository) GetByID(_ context.Context, id string) (*models.Entity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	row, ok := repo.db.entities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("entity " + id + " not found")
	}
	return repo.db.entityWithValues(row), nil
}

func (repo *entityRepository) Update(_ context.Context, id string, patch models.EntityPatch) (*models.Entity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.entities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("entity " + id + " not found")
	}
	if !patch.Empty() {
		patch.Apply(&row.entity)
		row.entity.UpdatedAt = helpers.NowUTC()
	}
	return repo.db.entityWithValues(row), nil
}

func (repo *entityRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.entities[id]; !ok {
		return apperrors.NewNotFoundError("entity " + id + " not found")
	}

	for key := range repo.db.values {
		if key.entityID == id {
			delete(repo.db.values, key)
		}
	}
	for relID, row := range repo.db.relations {
		if row.relation.FromEntityID == id || row.relation.ToEntityID == id {
			delete(repo.db.relations, relID)
		}
	}
	// accounts.entity_id is ON DELETE SET NULL
	for _, account := range repo.db.accounts {
		if account.EntityID != nil && *account.EntityID == id {
			account.EntityID = nil
		}
	}
	delete(repo.db.entities, id)
	return nil
}

func (repo *entityRepository) matching(filter repositories.EntityFilter) []*entityRow {
	var rows []*entityRow
	for _, row := range repo.db.entities {
		if filter.Type != "" && row.entity.Type != filter.Type {
			continue
		}
		if filter.IsActive != nil && row.entity.IsActive != *filter.IsActive {
			continue
		}
		if filter.NameContains != "" {
			needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
			if row.entity.Name == nil || !strings.Contains(strings.ToLower(*row.entity.Name), needle) {
				continue
			}
		}
		if !repo.matchesAttributes(row.entity.ID, filter.Attributes) {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entity.CreatedAt.Equal(rows[j].entity.CreatedAt) {
			return rows[i].entity.CreatedAt.Before(rows[j].entity.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	return rows
}

func (repo *entityRepository) matchesAttributes(entityID string, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	found := map[string]string{}
	for _, v := range repo.db.attributeValues(entityID) {
		found[v.AttributeName] = models.ScalarString(v.Columns.Coalesce())
	}
	for name, expected := range want {
		if got, ok := found[name]; !ok || got != expected {
			return false
		}
	}
	return true
}

func (repo *entityRepository) List(_ context.Context, filter repositories.EntityFilter) ([]*models.Entity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := repo.matching(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	entities := make([]*models.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, repo.db.entityWithValues(row))
	}
	return entities, nil
}

func (repo *entityRepository) Count(_ context.Context, filter repositories.EntityFilter) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return int64(len(repo.matching(filter))), nil
}
