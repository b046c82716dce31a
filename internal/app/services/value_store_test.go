package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

func TestValueStore_SetValueIsIdempotent(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	student := createEntity(t, svc, models.EntityTypeStudent, "")
	gpa := createAttribute(t, svc, "gpa", models.DataTypeNumber)

	for i := 0; i < 2; i++ {
		written, err := svc.Values.SetValue(ctx, student.ID, gpa.ID, 3.9)
		require.NoError(t, err)
		assert.True(t, written)
	}

	assert.Equal(t, 1, db.ValueCount(student.ID))
	values, err := svc.Values.ReadValues(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NumberScalar(3.9), values["gpa"])
}

func TestValueStore_ColumnExclusivityAcrossDataTypeChange(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	entity := createEntity(t, svc, models.EntityTypeStudent, "")
	attr := createAttribute(t, svc, "yearLevel", models.DataTypeString)

	_, err := svc.Values.SetValue(ctx, entity.ID, attr.ID, "second")
	require.NoError(t, err)
	raw, ok := db.RawValue(entity.ID, attr.ID)
	require.True(t, ok)
	assert.Equal(t, 1, raw.Columns.Populated())
	require.NotNil(t, raw.Columns.String)

	// The attribute is redefined as a number and written again
	createAttribute(t, svc, "yearLevel", models.DataTypeNumber)
	_, err = svc.Values.SetValue(ctx, entity.ID, attr.ID, 2)
	require.NoError(t, err)

	raw, ok = db.RawValue(entity.ID, attr.ID)
	require.True(t, ok)
	assert.Equal(t, 1, raw.Columns.Populated())
	assert.Nil(t, raw.Columns.String)
	require.NotNil(t, raw.Columns.Number)
	assert.Equal(t, 2.0, *raw.Columns.Number)
}

func TestValueStore_EmptyValuesAreNotWritten(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	entity := createEntity(t, svc, models.EntityTypeStaff, "")
	attr := createAttribute(t, svc, "position", models.DataTypeString)

	for _, raw := range []interface{}{nil, "", "   "} {
		written, err := svc.Values.SetValue(ctx, entity.ID, attr.ID, raw)
		require.NoError(t, err)
		assert.False(t, written)
	}
	assert.Equal(t, 0, db.ValueCount(entity.ID))
}

func TestValueStore_RejectsUncoercibleValues(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	entity := createEntity(t, svc, models.EntityTypeStudent, "")

	tests := []struct {
		name     string
		dataType models.DataType
		raw      interface{}
	}{
		{name: "number from text", dataType: models.DataTypeNumber, raw: "three"},
		{name: "bool from text", dataType: models.DataTypeBoolean, raw: "maybe"},
		{name: "date from text", dataType: models.DataTypeDate, raw: "next tuesday"},
		{name: "number from bool", dataType: models.DataTypeNumber, raw: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := createAttribute(t, svc, "field"+string(tt.dataType), tt.dataType)
			_, err := svc.Values.SetValue(ctx, entity.ID, attr.ID, tt.raw)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestValueStore_ReadsByDeclaredType(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	entity := createEntity(t, svc, models.EntityTypeEvent, "")

	start := createAttribute(t, svc, "startDateTime", models.DataTypeDateTime)
	day := createAttribute(t, svc, "day", models.DataTypeDate)
	open := createAttribute(t, svc, "open", models.DataTypeBoolean)

	_, err := svc.Values.SetValue(ctx, entity.ID, start.ID, "2026-03-01T09:30:00Z")
	require.NoError(t, err)
	_, err = svc.Values.SetValue(ctx, entity.ID, day.ID, "2026-03-01")
	require.NoError(t, err)
	_, err = svc.Values.SetValue(ctx, entity.ID, open.ID, "true")
	require.NoError(t, err)

	values, err := svc.Values.ReadValues(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DateTimeScalar(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)), values["startDateTime"])
	assert.Equal(t, "2026-03-01", values["day"].Native())
	assert.Equal(t, models.BoolScalar(true), values["open"])

	// Redefining the type without rewriting leaves the old column unread
	createAttribute(t, svc, "open", models.DataTypeString)
	values, err = svc.Values.ReadValues(ctx, entity.ID)
	require.NoError(t, err)
	_, present := values["open"]
	assert.False(t, present)
}

func TestValueStore_UnknownAttribute(t *testing.T) {
	svc, _ := setup(t)
	entity := createEntity(t, svc, models.EntityTypeStudent, "")

	_, err := svc.Values.SetValue(context.Background(), entity.ID, "missing", "x")
	assert.True(t, apperrors.IsNotFound(err))
}
