package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
)

// Table names
const (
	tableAttributes = "attributes"
	tableEntities   = "entities"
	tableValues     = "attribute_values"
	tableRelations  = "entity_relations"
	tableAccounts   = "accounts"
)

// psql is the shared statement builder with PostgreSQL placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// storeError passes application errors through and wraps everything else as an infrastructure failure
func storeError(err error, op string) error {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return err
	}
	return dberrors.Infrastructure(err, op)
}

var valueColumns = []string{
	"v.id", "v.entity_id", "v.attribute_id",
	"v.value_string", "v.value_number", "v.value_bool", "v.value_date", "v.value_datetime", "v.value_text",
	"v.created_at", "v.updated_at", "a.name", "a.data_type",
}

// selectValues loads the values of the given entities joined with their attribute, grouped by entity id
func selectValues(ctx context.Context, q db.Querier, entityIDs []string) (map[string][]*models.AttributeValue, error) {
	result := make(map[string][]*models.AttributeValue, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}

	sql, args, err := psql.Select(valueColumns...).
		From(tableValues + " v").
		Join(tableAttributes + " a ON a.id = v.attribute_id").
		Where("v.entity_id = ANY(?)", entityIDs).
		OrderBy("v.entity_id", "a.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select values query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v := &models.AttributeValue{}
		var dataType string
		if err := rows.Scan(
			&v.ID, &v.EntityID, &v.AttributeID,
			&v.Columns.String, &v.Columns.Number, &v.Columns.Bool, &v.Columns.Date, &v.Columns.DateTime, &v.Columns.Text,
			&v.CreatedAt, &v.UpdatedAt, &v.AttributeName, &dataType,
		); err != nil {
			return nil, err
		}
		v.DataType = models.DataType(dataType)
		result[v.EntityID] = append(result[v.EntityID], v)
	}

	return result, rows.Err()
}
