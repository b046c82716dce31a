package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories/inmem"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

const testSecret = "test-secret"

func setup(t *testing.T) (*Services, *inmem.DB) {
	t.Helper()
	db := inmem.NewDB()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      testSecret,
		AccessTokenExp: time.Hour,
		TokenIssuer:    "unicampus.test",
	})
	return NewServices(inmem.NewRepositories(db), jwtService), db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func createEntity(t *testing.T, svc *Services, entityType models.EntityType, name string) *models.Entity {
	t.Helper()
	var n *string
	if name != "" {
		n = &name
	}
	entity, err := svc.Entities.Create(context.Background(), entityType, n, nil)
	require.NoError(t, err)
	return entity
}

func createAttribute(t *testing.T, svc *Services, name string, dataType models.DataType) *models.Attribute {
	t.Helper()
	attr, err := svc.Registry.ResolveOrCreate(context.Background(), models.AttributeDefinition{
		Name:     name,
		DataType: dataType,
		Category: models.CategoryGeneral,
	})
	require.NoError(t, err)
	return attr
}
