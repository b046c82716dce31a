package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

func TestAttributeRegistry_ResolveOrCreateIsUniqueByName(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	first, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name:        "email",
		DataType:    models.DataTypeEmail,
		Category:    models.CategoryContact,
		EntityTypes: []models.EntityType{models.EntityTypeStudent},
	})
	require.NoError(t, err)

	second, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name:        "email",
		DisplayName: "E-mail",
		DataType:    models.DataTypeString,
		Category:    models.CategoryContact,
		EntityTypes: []models.EntityType{models.EntityTypeStaff},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.DataTypeString, second.DataType)
	assert.Equal(t, "E-mail", second.DisplayName)
	assert.ElementsMatch(t, []models.EntityType{models.EntityTypeStudent, models.EntityTypeStaff}, second.EntityTypes)

	all, err := svc.Registry.List(ctx, repositories.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAttributeRegistry_NormalizesDefinitions(t *testing.T) {
	svc, _ := setup(t)

	attr, err := svc.Registry.ResolveOrCreate(context.Background(), models.AttributeDefinition{
		Name:     "dateOfBirth",
		DataType: models.DataTypeDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Date Of Birth", attr.DisplayName)
	assert.Equal(t, models.CategoryGeneral, attr.Category)
}

func TestAttributeRegistry_RejectsInvalidDefinitions(t *testing.T) {
	svc, _ := setup(t)

	tests := []struct {
		name  string
		def   models.AttributeDefinition
		field string
	}{
		{name: "empty name", def: models.AttributeDefinition{DataType: models.DataTypeString}, field: "name"},
		{name: "name with spaces", def: models.AttributeDefinition{Name: "first name", DataType: models.DataTypeString}, field: "name"},
		{name: "name too long", def: models.AttributeDefinition{Name: "a" + strings.Repeat("b", maxAttributeNameLength), DataType: models.DataTypeString}, field: "name"},
		{name: "unknown data type", def: models.AttributeDefinition{Name: "x", DataType: "BLOB"}, field: "dataType"},
		{name: "unknown category", def: models.AttributeDefinition{Name: "x", DataType: models.DataTypeString, Category: "MISC"}, field: "category"},
		{name: "bad entity type", def: models.AttributeDefinition{Name: "x", DataType: models.DataTypeString, EntityTypes: []models.EntityType{"student"}}, field: "entityTypes"},
		{name: "display name too long", def: models.AttributeDefinition{Name: "x", DataType: models.DataTypeString, DisplayName: strings.Repeat("d", models.MaxNameLength+1)}, field: "displayName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Registry.ResolveOrCreate(context.Background(), tt.def)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.DetailsOf(err)["field"])
		})
	}
}

func TestAttributeRegistry_SeedCatalogIsIdempotent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	catalog := AttributeCatalog()

	seeded, err := svc.Registry.SeedCatalog(ctx, catalog)
	require.NoError(t, err)
	assert.Len(t, seeded, len(catalog))

	_, err = svc.Registry.SeedCatalog(ctx, catalog)
	require.NoError(t, err)

	all, err := svc.Registry.List(ctx, repositories.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(catalog))
}

func TestAttributeRegistry_ResolveForWrite(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	t.Run("infers unknown attributes", func(t *testing.T) {
		attr, err := svc.Registry.ResolveForWrite(ctx, "lockerNumber", 42, models.EntityTypeStudent)
		require.NoError(t, err)
		assert.Equal(t, models.DataTypeNumber, attr.DataType)
		assert.Equal(t, models.CategoryGeneral, attr.Category)
		assert.Equal(t, []models.EntityType{models.EntityTypeStudent}, attr.EntityTypes)
	})

	t.Run("uses the catalog definition", func(t *testing.T) {
		attr, err := svc.Registry.ResolveForWrite(ctx, "dateOfBirth", "2001-02-03", models.EntityTypeStudent)
		require.NoError(t, err)
		assert.Equal(t, models.DataTypeDate, attr.DataType)
		assert.Contains(t, attr.EntityTypes, models.EntityTypeStudent)
	})

	t.Run("keeps an existing definition and learns the entity type", func(t *testing.T) {
		attr, err := svc.Registry.ResolveForWrite(ctx, "lockerNumber", "B-12", models.EntityTypeStaff)
		require.NoError(t, err)
		assert.Equal(t, models.DataTypeNumber, attr.DataType)
		assert.ElementsMatch(t, []models.EntityType{models.EntityTypeStudent, models.EntityTypeStaff}, attr.EntityTypes)
	})
}

func TestAttributeRegistry_RequiredFor(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name:        "studentNumber",
		DataType:    models.DataTypeString,
		EntityTypes: []models.EntityType{models.EntityTypeStudent},
		IsRequired:  true,
	})
	require.NoError(t, err)
	_, err = svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name:        "nickname",
		DataType:    models.DataTypeString,
		EntityTypes: []models.EntityType{models.EntityTypeStudent},
	})
	require.NoError(t, err)

	required, err := svc.Registry.RequiredFor(ctx, models.EntityTypeStudent)
	require.NoError(t, err)
	assert.Equal(t, []string{"studentNumber"}, required)

	required, err = svc.Registry.RequiredFor(ctx, models.EntityTypeCourse)
	require.NoError(t, err)
	assert.Empty(t, required)
}
