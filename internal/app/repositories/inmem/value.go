package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

type valueRepository struct {
	db *DB
}

// NewValueRepository creates an in-memory value repository
func NewValueRepository(db *DB) repositories.ValueRepository {
	return &valueRepository{db: db}
}

func sortValues(values []*models.AttributeValue) {
	sort.Slice(values, func(i, j int) bool { return values[i].AttributeName < values[j].AttributeName })
}

func (repo *valueRepository) Upsert(_ context.Context, entityID, attributeID string, cols models.ValueColumns) (*models.Value, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.entities[entityID]; !ok {
		return nil, apperrors.NewNotFoundError("entity " + entityID + " not found")
	}
	if _, ok := repo.db.attributes[attributeID]; !ok {
		return nil, apperrors.NewNotFoundError("attribute " + attributeID + " not found")
	}

	now := helpers.NowUTC()
	key := valueKey{entityID, attributeID}
	if existing, ok := repo.db.values[key]; ok {
		// Replace every column so a previously used one is nulled
		existing.Columns = cols
		existing.UpdatedAt = now
		v := *existing
		return &v, nil
	}

	value := &models.Value{
		ID:          uuid.NewString(),
		EntityID:    entityID,
		AttributeID: attributeID,
		Columns:     cols,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	repo.db.values[key] = value
	v := *value
	return &v, nil
}

func (repo *valueRepository) ListByEntity(_ context.Context, entityID string) ([]*models.AttributeValue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	values := repo.db.attributeValues(entityID)
	if values == nil {
		values = []*models.AttributeValue{}
	}
	return values, nil
}

func (repo *valueRepository) ListByEntities(_ context.Context, entityIDs []string) (map[string][]*models.AttributeValue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	result := make(map[string][]*models.AttributeValue, len(entityIDs))
	for _, id := range entityIDs {
		if values := repo.db.attributeValues(id); values != nil {
			result[id] = values
		}
	}
	return result, nil
}
