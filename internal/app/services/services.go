package services

import (
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

// Services holds every service, wired over one set of repositories
type Services struct {
	Registry  *AttributeRegistry
	Values    *ValueStore
	Entities  *EntityService
	Relations *RelationService
	Projector *Projector
	Accounts  *AccountService
	EAV       *EAVService
}

// NewServices wires the services; the attribute catalog backs lazily created attributes
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService) *Services {
	registry := NewAttributeRegistry(repos.Attributes, AttributeCatalog())
	values := NewValueStore(repos.Values, repos.Attributes)
	entities := NewEntityService(repos.Entities)
	relations := NewRelationService(repos.Relations)
	projector := NewProjector(relations)
	accounts := NewAccountService(repos.Accounts, entities, jwtService)

	return &Services{
		Registry:  registry,
		Values:    values,
		Entities:  entities,
		Relations: relations,
		Projector: projector,
		Accounts:  accounts,
		EAV:       NewEAVService(registry, values, entities, relations, projector, accounts),
	}
}
