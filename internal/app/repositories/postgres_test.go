package repositories_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/migrations"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

// testDatabaseURLEnv names a disposable database; the tests truncate every table
const testDatabaseURLEnv = "UNICAMPUS_TEST_DATABASE_URL"

func setupPostgres(t *testing.T) (*services.Services, *repositories.Repositories) {
	t.Helper()
	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	database, err := db.NewPostgresDBFromURL(url)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	ctx := context.Background()
	_, err = migrations.NewMigrator(database.Pool).Migrate(ctx, migrations.Embedded())
	require.NoError(t, err)
	_, err = database.Pool.Exec(ctx, `TRUNCATE accounts, entity_relations, attribute_values, entities, attributes`)
	require.NoError(t, err)

	repos := repositories.NewRepositories(database)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "pg", AccessTokenExp: time.Hour})
	return services.NewServices(repos, jwtService), repos
}

func TestPostgres_AttributeUpsertMergesEntityTypes(t *testing.T) {
	svc, _ := setupPostgres(t)
	ctx := context.Background()

	_, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name: "nickname", DataType: models.DataTypeString, EntityTypes: []models.EntityType{models.EntityTypeStudent},
	})
	require.NoError(t, err)
	attr, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{
		Name: "nickname", DataType: models.DataTypeText, EntityTypes: []models.EntityType{models.EntityTypeStaff},
	})
	require.NoError(t, err)

	assert.Equal(t, models.DataTypeText, attr.DataType)
	assert.ElementsMatch(t, []models.EntityType{models.EntityTypeStudent, models.EntityTypeStaff}, attr.EntityTypes)

	staffAttrs, err := svc.Registry.List(ctx, repositories.AttributeFilter{EntityType: models.EntityTypeStaff})
	require.NoError(t, err)
	require.Len(t, staffAttrs, 1)
}

func TestPostgres_WriteReadFilterAndDelete(t *testing.T) {
	svc, _ := setupPostgres(t)
	ctx := context.Background()

	course, err := svc.EAV.Write(ctx, services.WriteRequest{
		Type:       models.EntityTypeCourse,
		Attributes: map[string]interface{}{"title": "Algebra", "credits": 6},
	})
	require.NoError(t, err)

	student, err := svc.EAV.Write(ctx, services.WriteRequest{
		Type: models.EntityTypeStudent,
		Attributes: map[string]interface{}{
			"firstName": "Ada", "enrolledOn": "2025-09-01", "scholarship": true, "gpa": 3.5,
		},
		Relations: []services.RelationInput{{ToID: course.EntityID, RelationType: models.RelationEnrolledIn, Metadata: map[string]interface{}{"grade": "B"}}},
	})
	require.NoError(t, err)

	projection, err := svc.EAV.Read(ctx, student.EntityID, []services.RelationSpec{
		{RelationType: models.RelationEnrolledIn, Direction: models.DirectionOut, As: "courses"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", projection["firstName"])
	assert.Equal(t, true, projection["scholarship"])
	assert.Equal(t, 3.5, projection["gpa"])
	courses := projection["courses"].([]services.Projection)
	require.Len(t, courses, 1)
	assert.Equal(t, "B", courses[0]["grade"])
	assert.Equal(t, "Algebra", courses[0]["name"])

	items, total, err := svc.EAV.Query(ctx, services.EntityQuery{Filter: repositories.EntityFilter{
		Type:       models.EntityTypeStudent,
		Attributes: map[string]string{"scholarship": "true", "gpa": "3.5"},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Entities.Delete(ctx, student.EntityID))
	_, err = svc.Entities.Get(ctx, student.EntityID)
	assert.True(t, apperrors.IsNotFound(err))

	incoming, err := svc.Relations.RelationsTo(ctx, course.EntityID, "", false)
	require.NoError(t, err)
	assert.Empty(t, incoming, "relations go with the entity")
}

func TestPostgres_ValueColumnExclusivity(t *testing.T) {
	svc, repos := setupPostgres(t)
	ctx := context.Background()

	entity, err := svc.Entities.Create(ctx, models.EntityTypeStaff, nil, nil)
	require.NoError(t, err)
	attr, err := svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{Name: "office", DataType: models.DataTypeNumber})
	require.NoError(t, err)

	_, err = svc.Values.SetValue(ctx, entity.ID, attr.ID, 12)
	require.NoError(t, err)

	_, err = svc.Registry.ResolveOrCreate(ctx, models.AttributeDefinition{Name: "office", DataType: models.DataTypeString})
	require.NoError(t, err)
	_, err = svc.Values.SetValue(ctx, entity.ID, attr.ID, "B-204")
	require.NoError(t, err)

	values, err := repos.Values.ListByEntity(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Nil(t, values[0].Columns.Number, "previous column is cleared")
	require.NotNil(t, values[0].Columns.String)
	assert.Equal(t, "B-204", *values[0].Columns.String)
}

func TestPostgres_ConcurrentAssociateKeepsOneRow(t *testing.T) {
	svc, _ := setupPostgres(t)
	ctx := context.Background()

	staff, err := svc.Entities.Create(ctx, models.EntityTypeStaff, nil, nil)
	require.NoError(t, err)
	course, err := svc.Entities.Create(ctx, models.EntityTypeCourse, nil, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Relations.Associate(ctx, models.RelationCandidate{
				FromEntityID: staff.ID, ToEntityID: course.ID, RelationType: models.RelationTeaches,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rels, err := svc.Relations.RelationsFrom(ctx, staff.ID, models.RelationTeaches, false)
	require.NoError(t, err)
	assert.Len(t, rels, 1)

	_, _, err = svc.Relations.Associate(ctx, models.RelationCandidate{
		FromEntityID: staff.ID, ToEntityID: "missing", RelationType: models.RelationTeaches,
	})
	assert.True(t, apperrors.IsNotFound(err))
}
