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

func TestEntityService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		entityType models.EntityType
		entityName *string
		wantErr    bool
	}{
		{name: "student without name", entityType: models.EntityTypeStudent},
		{name: "department with name", entityType: models.EntityTypeDepartment, entityName: strPtr("Physics")},
		{name: "department without name", entityType: models.EntityTypeDepartment, wantErr: true},
		{name: "room with blank name", entityType: models.EntityTypeRoom, entityName: strPtr("  "), wantErr: true},
		{name: "lower case type", entityType: "student", wantErr: true},
		{name: "custom type", entityType: "CLUB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := svc.Entities.Create(ctx, tt.entityType, tt.entityName, nil)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, entity.ID)
			assert.Equal(t, tt.entityType, entity.Type)
			assert.True(t, entity.IsActive)
		})
	}
}

func TestEntityService_DeleteCascades(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	student := createEntity(t, svc, models.EntityTypeStudent, "")
	course := createEntity(t, svc, models.EntityTypeCourse, "")
	parent := createEntity(t, svc, models.EntityTypeParent, "")
	gpa := createAttribute(t, svc, "gpa", models.DataTypeNumber)

	_, err := svc.Values.SetValue(ctx, student.ID, gpa.ID, 3.2)
	require.NoError(t, err)
	_, err = svc.Relations.Link(ctx, models.RelationCandidate{FromEntityID: student.ID, ToEntityID: course.ID, RelationType: models.RelationEnrolledIn})
	require.NoError(t, err)
	_, err = svc.Relations.Link(ctx, models.RelationCandidate{FromEntityID: parent.ID, ToEntityID: student.ID, RelationType: models.RelationParentOf})
	require.NoError(t, err)
	require.Equal(t, 1, db.ValueCount(student.ID))
	require.Equal(t, 2, db.RelationCount(student.ID))

	require.NoError(t, svc.Entities.Delete(ctx, student.ID))

	assert.Equal(t, 0, db.ValueCount(student.ID))
	assert.Equal(t, 0, db.RelationCount(student.ID))
	_, err = svc.Entities.Get(ctx, student.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// The other ends survive
	_, err = svc.Entities.Get(ctx, course.ID)
	assert.NoError(t, err)
	_, err = svc.Entities.Get(ctx, parent.ID)
	assert.NoError(t, err)

	assert.True(t, apperrors.IsNotFound(svc.Entities.Delete(ctx, student.ID)))
}

func TestEntityService_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	dept := createEntity(t, svc, models.EntityTypeDepartment, "Physics")

	updated, err := svc.Entities.Update(ctx, dept.ID, models.EntityPatch{
		Name:     strPtr("Applied Physics"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Applied Physics", *updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, models.EntityTypeDepartment, updated.Type)

	_, err = svc.Entities.Update(ctx, dept.ID, models.EntityPatch{Name: strPtr("")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Entities.Update(ctx, dept.ID, models.EntityPatch{Name: strPtr(strings.Repeat("n", models.MaxNameLength+1))})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Entities.Update(ctx, "missing", models.EntityPatch{Description: strPtr("x")})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEntityService_FindByType(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	major := createAttribute(t, svc, "major", models.DataTypeString)

	var students []*models.Entity
	for _, m := range []string{"Physics", "History", "Physics"} {
		s := createEntity(t, svc, models.EntityTypeStudent, "")
		_, err := svc.Values.SetValue(ctx, s.ID, major.ID, m)
		require.NoError(t, err)
		students = append(students, s)
	}
	createEntity(t, svc, models.EntityTypeCourse, "")
	_, err := svc.Entities.Update(ctx, students[2].ID, models.EntityPatch{IsActive: boolPtr(false)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter repositories.EntityFilter
		want   []string
	}{
		{
			name:   "by type",
			filter: repositories.EntityFilter{Type: models.EntityTypeStudent},
			want:   []string{students[0].ID, students[1].ID, students[2].ID},
		},
		{
			name:   "by attribute",
			filter: repositories.EntityFilter{Type: models.EntityTypeStudent, Attributes: map[string]string{"major": "Physics"}},
			want:   []string{students[0].ID, students[2].ID},
		},
		{
			name:   "active only",
			filter: repositories.EntityFilter{Type: models.EntityTypeStudent, IsActive: boolPtr(true)},
			want:   []string{students[0].ID, students[1].ID},
		},
		{
			name:   "paged",
			filter: repositories.EntityFilter{Type: models.EntityTypeStudent, Limit: 1, Offset: 1},
			want:   []string{students[1].ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := svc.Entities.FindByType(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(entities))
			for _, e := range entities {
				ids = append(ids, e.ID)
				assert.Len(t, e.Values, 1)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	total, err := svc.Entities.Count(ctx, repositories.EntityFilter{Type: models.EntityTypeStudent, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, err = svc.Entities.FindByType(ctx, repositories.EntityFilter{Type: "bad type"})
	assert.True(t, apperrors.IsValidation(err))
}
