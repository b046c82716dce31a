package models

import (
	"time"
)

// DataType declares how an attribute's raw values are interpreted and stored
type DataType string

const (
	DataTypeString   DataType = "STRING"
	DataTypeNumber   DataType = "NUMBER"
	DataTypeBoolean  DataType = "BOOLEAN"
	DataTypeDate     DataType = "DATE"
	DataTypeDateTime DataType = "DATETIME"
	DataTypeText     DataType = "TEXT"
	DataTypeEmail    DataType = "EMAIL"
	DataTypePhone    DataType = "PHONE"
	DataTypeURL      DataType = "URL"
)

// Valid reports whether dt is one of the declared data types
func (dt DataType) Valid() bool {
	switch dt {
	case DataTypeString, DataTypeNumber, DataTypeBoolean, DataTypeDate, DataTypeDateTime,
		DataTypeText, DataTypeEmail, DataTypePhone, DataTypeURL:
		return true
	}
	return false
}

// Column returns the typed value column a data type stores into
func (dt DataType) Column() ValueColumn {
	switch dt {
	case DataTypeNumber:
		return ColumnNumber
	case DataTypeBoolean:
		return ColumnBool
	case DataTypeDate:
		return ColumnDate
	case DataTypeDateTime:
		return ColumnDateTime
	case DataTypeText:
		return ColumnText
	default:
		// STRING, EMAIL, PHONE and URL share the short string column
		return ColumnString
	}
}

// Category groups attributes for display and reporting
type Category string

const (
	CategoryPersonal   Category = "PERSONAL"
	CategoryAcademic   Category = "ACADEMIC"
	CategoryFacility   Category = "FACILITY"
	CategorySchedule   Category = "SCHEDULE"
	CategorySystem     Category = "SYSTEM"
	CategoryContact    Category = "CONTACT"
	CategoryEmployment Category = "EMPLOYMENT"
	CategoryGeneral    Category = "GENERAL" // lazily created attributes with no catalog entry
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryAcademic, CategoryFacility, CategorySchedule,
		CategorySystem, CategoryContact, CategoryEmployment, CategoryGeneral:
		return true
	}
	return false
}

// Attribute is a named, typed schema field shared by every entity kind listed in EntityTypes
type Attribute struct {
	ID          string       `json:"id" db:"id" example:"4b0d1f7e-3c55-4a0e-9c1f-2f0c1c9b8a11"`
	Name        string       `json:"name" db:"name" example:"gpa"`
	DisplayName string       `json:"displayName" db:"display_name" example:"GPA"`
	DataType    DataType     `json:"dataType" db:"data_type" example:"NUMBER"`
	Category    Category     `json:"category" db:"category" example:"ACADEMIC"`
	EntityTypes []EntityType `json:"entityTypes" db:"entity_types"` // serialized as a JSON list
	IsRequired  bool         `json:"isRequired" db:"is_required"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// AllowsEntityType reports whether entities of type t are listed for this attribute
func (a *Attribute) AllowsEntityType(t EntityType) bool {
	for _, et := range a.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// AttributeDefinition is the input of an attribute upsert
type AttributeDefinition struct {
	Name        string       `json:"name" binding:"required,attrname"`
	DisplayName string       `json:"displayName"`
	DataType    DataType     `json:"dataType" binding:"required"`
	Category    Category     `json:"category"`
	EntityTypes []EntityType `json:"entityTypes" binding:"dive,entitytype"`
	IsRequired  bool         `json:"isRequired"`
}

// MergeEntityTypes returns the union of two entity type lists, keeping first-seen order
func MergeEntityTypes(current, incoming []EntityType) []EntityType {
	seen := make(map[EntityType]struct{}, len(current)+len(incoming))
	merged := make([]EntityType, 0, len(current)+len(incoming))
	for _, list := range [][]EntityType{current, incoming} {
		for _, et := range list {
			if _, ok := seen[et]; ok {
				continue
			}
			seen[et] = struct{}{}
			merged = append(merged, et)
		}
	}
	return merged
}
