package models

import "time"

// ValueColumns mirrors the six nullable typed columns of a Value row
type ValueColumns struct {
	String   *string
	Number   *float64
	Bool     *bool
	Date     *time.Time
	DateTime *time.Time
	Text     *string
}

// ColumnsFor places a scalar into exactly one column, leaving the rest null
func ColumnsFor(s Scalar) ValueColumns {
	var cols ValueColumns
	switch v := s.(type) {
	case StringScalar:
		str := string(v)
		cols.String = &str
	case TextScalar:
		str := string(v)
		cols.Text = &str
	case NumberScalar:
		n := float64(v)
		cols.Number = &n
	case BoolScalar:
		b := bool(v)
		cols.Bool = &b
	case DateScalar:
		t := time.Time(v)
		cols.Date = &t
	case DateTimeScalar:
		t := time.Time(v)
		cols.DateTime = &t
	}
	return cols
}

// Column reads a single typed column; nil when that column is null
func (c ValueColumns) Column(col ValueColumn) Scalar {
	switch col {
	case ColumnString:
		if c.String != nil {
			return StringScalar(*c.String)
		}
	case ColumnNumber:
		if c.Number != nil {
			return NumberScalar(*c.Number)
		}
	case ColumnBool:
		if c.Bool != nil {
			return BoolScalar(*c.Bool)
		}
	case ColumnDate:
		if c.Date != nil {
			return DateScalar(*c.Date)
		}
	case ColumnDateTime:
		if c.DateTime != nil {
			return DateTimeScalar(*c.DateTime)
		}
	case ColumnText:
		if c.Text != nil {
			return TextScalar(*c.Text)
		}
	}
	return nil
}

// coalesceOrder is the fixed precedence used when reading a row without a declared type
var coalesceOrder = []ValueColumn{ColumnString, ColumnNumber, ColumnBool, ColumnDate, ColumnDateTime, ColumnText}

// Coalesce returns the first populated column in coalesce order. More than one
// populated column is tolerated; nil means none is populated.
func (c ValueColumns) Coalesce() Scalar {
	for _, col := range coalesceOrder {
		if s := c.Column(col); s != nil {
			return s
		}
	}
	return nil
}

// Populated counts the non-null columns
func (c ValueColumns) Populated() int {
	count := 0
	for _, col := range coalesceOrder {
		if c.Column(col) != nil {
			count++
		}
	}
	return count
}

// Value is one typed fact binding an entity to an attribute
type Value struct {
	ID          string       `json:"id" db:"id"`
	EntityID    string       `json:"entityId" db:"entity_id"`
	AttributeID string       `json:"attributeId" db:"attribute_id"`
	Columns     ValueColumns `json:"-"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// AttributeValue is a Value joined with the attribute it belongs to
type AttributeValue struct {
	Value
	AttributeName string   `json:"attributeName" db:"attribute_name"`
	DataType      DataType `json:"dataType" db:"data_type"`
}

// Scalar reads the value through the attribute's currently declared column.
// A value stored under a different column (the attribute's data type changed
// since it was written) reads as nil.
func (v *AttributeValue) Scalar() Scalar {
	if !v.DataType.Valid() {
		return v.Columns.Coalesce()
	}
	return v.Columns.Column(v.DataType.Column())
}
