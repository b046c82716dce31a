package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValueColumn names one of the six typed columns of a Value row
type ValueColumn string

const (
	ColumnString   ValueColumn = "value_string"
	ColumnNumber   ValueColumn = "value_number"
	ColumnBool     ValueColumn = "value_bool"
	ColumnDate     ValueColumn = "value_date"
	ColumnDateTime ValueColumn = "value_datetime"
	ColumnText     ValueColumn = "value_text"
)

// DateLayout is the wire layout of DATE values
const DateLayout = "2006-01-02"

// longStringThreshold is the length above which an inferred string is stored as TEXT
const longStringThreshold = 255

// MaxStringLength is the width of the short string column; longer values need a TEXT attribute
const MaxStringLength = 1000

// Scalar is a single typed value. The set of implementations is closed.
type Scalar interface {
	// Column is the typed column the scalar is stored in
	Column() ValueColumn
	// Native returns the JSON-friendly form used by projections
	Native() interface{}
	isScalar()
}

type (
	StringScalar   string
	TextScalar     string
	NumberScalar   float64
	BoolScalar     bool
	DateScalar     time.Time
	DateTimeScalar time.Time
)

func (StringScalar) Column() ValueColumn   { return ColumnString }
func (TextScalar) Column() ValueColumn     { return ColumnText }
func (NumberScalar) Column() ValueColumn   { return ColumnNumber }
func (BoolScalar) Column() ValueColumn     { return ColumnBool }
func (DateScalar) Column() ValueColumn     { return ColumnDate }
func (DateTimeScalar) Column() ValueColumn { return ColumnDateTime }

func (s StringScalar) Native() interface{}   { return string(s) }
func (s TextScalar) Native() interface{}     { return string(s) }
func (s NumberScalar) Native() interface{}   { return float64(s) }
func (s BoolScalar) Native() interface{}     { return bool(s) }
func (s DateScalar) Native() interface{}     { return time.Time(s).Format(DateLayout) }
func (s DateTimeScalar) Native() interface{} { return time.Time(s).UTC() }

func (StringScalar) isScalar()   {}
func (TextScalar) isScalar()     {}
func (NumberScalar) isScalar()   {}
func (BoolScalar) isScalar()     {}
func (DateScalar) isScalar()     {}
func (DateTimeScalar) isScalar() {}

// ScalarString renders a scalar the way attribute filters compare it
func ScalarString(s Scalar) string {
	switch v := s.(type) {
	case nil:
		return ""
	case StringScalar:
		return string(v)
	case TextScalar:
		return string(v)
	case NumberScalar:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case BoolScalar:
		return strconv.FormatBool(bool(v))
	case DateScalar:
		return time.Time(v).Format(DateLayout)
	case DateTimeScalar:
		return time.Time(v).UTC().Format(time.RFC3339)
	}
	return fmt.Sprint(s.Native())
}

// IsEmptyRaw reports whether a raw value means "field not set" and must not be written
func IsEmptyRaw(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case json.Number:
		return v == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	}
	return false
}

// InferDataType guesses a data type from the runtime type of a raw value
func InferDataType(raw interface{}) DataType {
	switch v := raw.(type) {
	case bool:
		return DataTypeBoolean
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return DataTypeNumber
	case time.Time:
		return DataTypeDateTime
	case string:
		if len(v) > longStringThreshold {
			return DataTypeText
		}
	}
	return DataTypeString
}

// CoerceScalar converts a raw bag value into the scalar for the declared data type
func CoerceScalar(raw interface{}, dt DataType) (Scalar, error) {
	if p, ok := raw.(*string); ok && p != nil {
		raw = *p
	}

	switch dt {
	case DataTypeString, DataTypeEmail, DataTypePhone, DataTypeURL:
		s, err := coerceString(raw)
		if err != nil {
			return nil, err
		}
		if n := utf8.RuneCountInString(s); n > MaxStringLength {
			return nil, fmt.Errorf("value is %d characters long, at most %d fit a %s attribute", n, MaxStringLength, dt)
		}
		return StringScalar(s), nil

	case DataTypeText:
		s, err := coerceString(raw)
		if err != nil {
			return nil, err
		}
		return TextScalar(s), nil

	case DataTypeNumber:
		n, err := coerceNumber(raw)
		if err != nil {
			return nil, err
		}
		return NumberScalar(n), nil

	case DataTypeBoolean:
		b, err := coerceBool(raw)
		if err != nil {
			return nil, err
		}
		return BoolScalar(b), nil

	case DataTypeDate:
		t, err := coerceTime(raw)
		if err != nil {
			return nil, err
		}
		y, m, d := t.Date()
		return DateScalar(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)), nil

	case DataTypeDateTime:
		t, err := coerceTime(raw)
		if err != nil {
			return nil, err
		}
		return DateTimeScalar(t.UTC().Truncate(time.Microsecond)), nil
	}

	return nil, fmt.Errorf("unknown data type %q", dt)
}

func coerceString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	case json.Number:
		return v.String(), nil
	}
	if n, err := coerceNumber(raw); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("cannot store %T as text", raw)
}

func coerceNumber(raw interface{}) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v.String())
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		n = f
	default:
		return 0, fmt.Errorf("cannot store %T as a number", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%v is not a finite number", n)
	}
	return n, nil
}

func coerceBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean", v)
		}
		return b, nil
	}
	if n, err := coerceNumber(raw); err == nil && (n == 0 || n == 1) {
		return n == 1, nil
	}
	return false, fmt.Errorf("cannot store %T as a boolean", raw)
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", DateLayout}

func coerceTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not a date", v)
	}
	return time.Time{}, fmt.Errorf("cannot store %T as a date", raw)
}
