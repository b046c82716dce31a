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

type attributeRepository struct {
	db *DB
}

// NewAttributeRepository creates an in-memory attribute repository
func NewAttributeRepository(db *DB) repositories.AttributeRepository {
	return &attributeRepository{db: db}
}

func copyAttribute(attr *models.Attribute) *models.Attribute {
	c := *attr
	c.EntityTypes = append([]models.EntityType{}, attr.EntityTypes...)
	return &c
}

func (repo *attributeRepository) Upsert(_ context.Context, def models.AttributeDefinition) (*models.Attribute, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := helpers.NowUTC()
	if id, ok := repo.db.attributesByName[def.Name]; ok {
		attr := repo.db.attributes[id]
		attr.DisplayName = def.DisplayName
		attr.DataType = def.DataType
		attr.Category = def.Category
		attr.IsRequired = def.IsRequired
		attr.EntityTypes = models.MergeEntityTypes(attr.EntityTypes, def.EntityTypes)
		attr.UpdatedAt = now
		return copyAttribute(attr), nil
	}

	attr := &models.Attribute{
		ID:          uuid.NewString(),
		Name:        def.Name,
		DisplayName: def.DisplayName,
		DataType:    def.DataType,
		Category:    def.Category,
		EntityTypes: models.MergeEntityTypes(nil, def.EntityTypes),
		IsRequired:  def.IsRequired,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	repo.db.attributes[attr.ID] = attr
	repo.db.attributesByName[attr.Name] = attr.ID
	return copyAttribute(attr), nil
}

func (repo *attributeRepository) GetByID(_ context.Context, id string) (*models.Attribute, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if attr, ok := repo.db.attributes[id]; ok {
		return copyAttribute(attr), nil
	}
	return nil, apperrors.NewNotFoundError("attribute " + id + " not found")
}

func (repo *attributeRepository) GetByName(_ context.Context, name string) (*models.Attribute, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.attributesByName[name]; ok {
		return copyAttribute(repo.db.attributes[id]), nil
	}
	return nil, apperrors.NewNotFoundError("attribute " + name + " not found")
}

func (repo *attributeRepository) List(_ context.Context, filter repositories.AttributeFilter) ([]*models.Attribute, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	attributes := []*models.Attribute{}
	for _, attr := range repo.db.attributes {
		if filter.Category != "" && attr.Category != filter.Category {
			continue
		}
		if filter.EntityType != "" && !attr.AllowsEntityType(filter.EntityType) {
			continue
		}
		attributes = append(attributes, copyAttribute(attr))
	}

	sort.Slice(attributes, func(i, j int) bool {
		if attributes[i].Category != attributes[j].Category {
			return attributes[i].Category < attributes[j].Category
		}
		return attributes[i].Name < attributes[j].Name
	})
	return attributes, nil
}
