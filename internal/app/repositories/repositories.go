package repositories

import (
	"context"
	"time"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
)

// AttributeFilter narrows attribute listings
type AttributeFilter struct {
	EntityType models.EntityType
	Category   models.Category
}

// EntityFilter narrows entity listings. Attributes is an exact match on the
// string form of each named attribute's value.
type EntityFilter struct {
	Type         models.EntityType
	IsActive     *bool
	NameContains string
	Attributes   map[string]string
	Limit        int
	Offset       int
}

// RelationFilter selects the relations on one side of an entity
type RelationFilter struct {
	EntityID     string
	Direction    models.Direction
	RelationType models.RelationType // empty means every type
	ActiveOnly   bool
}

// AttributeRepository persists the attribute registry
type AttributeRepository interface {
	// Upsert creates the attribute or overwrites its definition, keyed by name.
	// The entity type list is merged with the stored one.
	Upsert(ctx context.Context, def models.AttributeDefinition) (*models.Attribute, error)
	GetByID(ctx context.Context, id string) (*models.Attribute, error)
	GetByName(ctx context.Context, name string) (*models.Attribute, error)
	List(ctx context.Context, filter AttributeFilter) ([]*models.Attribute, error)
}

// ValueRepository persists typed values, one row per (entity, attribute)
type ValueRepository interface {
	// Upsert writes all six columns, so columns unused by the new value are nulled
	Upsert(ctx context.Context, entityID, attributeID string, cols models.ValueColumns) (*models.Value, error)
	ListByEntity(ctx context.Context, entityID string) ([]*models.AttributeValue, error)
	ListByEntities(ctx context.Context, entityIDs []string) (map[string][]*models.AttributeValue, error)
}

// EntityRepository persists entities. Reads eager-load values.
type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, id string) (*models.Entity, error)
	Update(ctx context.Context, id string, patch models.EntityPatch) (*models.Entity, error)
	// Delete removes the entity's values, then every relation touching it, then the entity
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EntityFilter) ([]*models.Entity, error)
	Count(ctx context.Context, filter EntityFilter) (int64, error)
}

// RelationRepository persists entity relations
type RelationRepository interface {
	// Create inserts a new row unconditionally
	Create(ctx context.Context, relation *models.Relation) error
	GetByID(ctx context.Context, id string) (*models.Relation, error)
	// FindLatest returns the most recent relation for the triple
	FindLatest(ctx context.Context, fromID, toID string, relationType models.RelationType, activeOnly bool) (*models.Relation, error)
	// Associate reactivates the latest row for the candidate's triple or inserts one,
	// serialized per triple. It reports whether a row was inserted.
	Associate(ctx context.Context, candidate *models.Relation) (*models.Relation, bool, error)
	// Reactivate marks an existing row active, clears its end date and replaces non-empty metadata
	Reactivate(ctx context.Context, id string, metadata string) (*models.Relation, error)
	Deactivate(ctx context.Context, id string, at time.Time) (*models.Relation, error)
	Delete(ctx context.Context, id string) error
	// UpdateMetadata shallow-merges patch into the stored payload atomically
	UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*models.Relation, error)
	// ListJoined returns relations with their far-side entity and its values
	ListJoined(ctx context.Context, filter RelationFilter) ([]*models.RelatedEntity, error)
}

// AccountRepository persists login accounts
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetEntity(ctx context.Context, accountID, entityID string) error
	// BindEntityIfUnset binds only when the account has no entity yet and reports whether it did
	BindEntityIfUnset(ctx context.Context, accountID, entityID string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Attributes AttributeRepository
	Values     ValueRepository
	Entities   EntityRepository
	Relations  RelationRepository
	Accounts   AccountRepository
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Attributes: NewAttributeRepository(database),
		Values:     NewValueRepository(database),
		Entities:   NewEntityRepository(database),
		Relations:  NewRelationRepository(database),
		Accounts:   NewAccountRepository(database),
	}
}
