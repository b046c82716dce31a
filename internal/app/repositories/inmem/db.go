// Package inmem implements the repository ports in process memory. It backs the
// memory storage driver and the service and controller tests.
package inmem

import (
	"sync"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
)

type entityRow struct {
	entity models.Entity
	seq    int64
}

type relationRow struct {
	relation models.Relation
	seq      int64
}

type valueKey struct {
	entityID    string
	attributeID string
}

// DB is one in-memory store guarded by a single lock, so multi-table
// operations (cascade delete, associate) are atomic.
type DB struct {
	mutex sync.RWMutex
	seq   int64

	attributes       map[string]*models.Attribute // by id
	attributesByName map[string]string             // name -> id
	entities         map[string]*entityRow
	values           map[valueKey]*models.Value
	relations        map[string]*relationRow
	accounts         map[string]*models.Account
}

// NewDB creates an empty store
func NewDB() *DB {
	return &DB{
		attributes:       map[string]*models.Attribute{},
		attributesByName: map[string]string{},
		entities:         map[string]*entityRow{},
		values:           map[valueKey]*models.Value{},
		relations:        map[string]*relationRow{},
		accounts:         map[string]*models.Account{},
	}
}

func (db *DB) nextSeq() int64 {
	db.seq++
	return db.seq
}

// NewRepositories wires every repository to one shared store
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		Attributes: NewAttributeRepository(db),
		Values:     NewValueRepository(db),
		Entities:   NewEntityRepository(db),
		Relations:  NewRelationRepository(db),
		Accounts:   NewAccountRepository(db),
	}
}

// ValueCount returns the number of stored value rows for an entity
func (db *DB) ValueCount(entityID string) int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	count := 0
	for key := range db.values {
		if key.entityID == entityID {
			count++
		}
	}
	return count
}

// RelationCount returns the number of relation rows touching an entity
func (db *DB) RelationCount(entityID string) int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	count := 0
	for _, row := range db.relations {
		if row.relation.FromEntityID == entityID || row.relation.ToEntityID == entityID {
			count++
		}
	}
	return count
}

// RawValue returns a copy of the stored row for an (entity, attribute) pair
func (db *DB) RawValue(entityID, attributeID string) (models.Value, bool) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	v, ok := db.values[valueKey{entityID, attributeID}]
	if !ok {
		return models.Value{}, false
	}
	return *v, true
}

// attributeValues joins an entity's values with their attributes, ordered by attribute name.
// Callers hold the lock.
func (db *DB) attributeValues(entityID string) []*models.AttributeValue {
	var values []*models.AttributeValue
	for key, v := range db.values {
		if key.entityID != entityID {
			continue
		}
		attr, ok := db.attributes[key.attributeID]
		if !ok {
			continue
		}
		values = append(values, &models.AttributeValue{
			Value:         *v,
			AttributeName: attr.Name,
			DataType:      attr.DataType,
		})
	}
	sortValues(values)
	return values
}

// entityWithValues returns a detached copy of an entity with its values. Callers hold the lock.
func (db *DB) entityWithValues(row *entityRow) *models.Entity {
	entity := row.entity
	entity.Values = db.attributeValues(entity.ID)
	return &entity
}
