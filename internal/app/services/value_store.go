package services

import (
	"context"
	"fmt"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// ValueStore writes and reads typed values
type ValueStore struct {
	values     repositories.ValueRepository
	attributes repositories.AttributeRepository
}

// NewValueStore creates a new value store
func NewValueStore(values repositories.ValueRepository, attributes repositories.AttributeRepository) *ValueStore {
	return &ValueStore{
		values:     values,
		attributes: attributes,
	}
}

// coerce converts raw into the attribute's declared type
func coerce(attr *models.Attribute, raw interface{}) (models.Scalar, error) {
	scalar, err := models.CoerceScalar(raw, attr.DataType)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(attr.Name,
			fmt.Sprintf("attribute %s expects a %s value: %v", attr.Name, attr.DataType, err))
	}
	return scalar, nil
}

// SetValue stores raw for an (entity, attribute) pair in the column of the
// attribute's data type, nulling the others. Empty raw values are not written
// and report false.
func (s *ValueStore) SetValue(ctx context.Context, entityID, attributeID string, raw interface{}) (bool, error) {
	if models.IsEmptyRaw(raw) {
		return false, nil
	}

	attr, err := s.attributes.GetByID(ctx, attributeID)
	if err != nil {
		return false, err
	}

	scalar, err := coerce(attr, raw)
	if err != nil {
		return false, err
	}

	return s.put(ctx, entityID, attr, scalar)
}

func (s *ValueStore) put(ctx context.Context, entityID string, attr *models.Attribute, scalar models.Scalar) (bool, error) {
	if _, err := s.values.Upsert(ctx, entityID, attr.ID, models.ColumnsFor(scalar)); err != nil {
		return false, err
	}
	return true, nil
}

// ReadValues returns attribute name to scalar for an entity. Values stored under
// a column other than the attribute's current data type are omitted.
func (s *ValueStore) ReadValues(ctx context.Context, entityID string) (map[string]models.Scalar, error) {
	values, err := s.values.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return scalarMap(values), nil
}

func scalarMap(values []*models.AttributeValue) map[string]models.Scalar {
	result := make(map[string]models.Scalar, len(values))
	for _, v := range values {
		if scalar := v.Scalar(); scalar != nil {
			result[v.AttributeName] = scalar
		}
	}
	return result
}
