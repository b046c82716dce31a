package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// Course field fallbacks, tried in order
var (
	courseNameKeys = []string{"name", "courseName", "title", "displayName"}
	courseCodeKeys = []string{"code", "courseCode", "shortCode"}
)

const (
	DefaultCourseName = "Unnamed Course"
	DefaultCourseCode = "N/A"
)

// Projection is the flat, JSON-ready view of an entity
type Projection map[string]interface{}

// RelationSpec asks a projection to include the entities related in one direction under key As
type RelationSpec struct {
	RelationType    models.RelationType
	Direction       models.Direction
	As              string
	IncludeInactive bool
}

// ParseRelationSpecs parses "TYPE:out|in:key" items separated by commas.
// The key defaults to the lower-cased relation type.
func ParseRelationSpecs(include string) ([]RelationSpec, error) {
	var specs []RelationSpec
	for _, item := range strings.Split(include, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, apperrors.NewFieldValidationError("include", fmt.Sprintf("invalid relation spec %q, expected TYPE:out|in[:key]", item))
		}

		spec := RelationSpec{
			RelationType: models.RelationType(strings.ToUpper(strings.TrimSpace(parts[0]))),
			Direction:    models.Direction(strings.ToLower(strings.TrimSpace(parts[1]))),
		}
		if len(parts) == 3 {
			spec.As = strings.TrimSpace(parts[2])
		}
		if spec.As == "" {
			spec.As = strings.ToLower(string(spec.RelationType))
		}

		if !spec.RelationType.Valid() {
			return nil, apperrors.NewFieldValidationError("include", fmt.Sprintf("invalid relation type %q", parts[0]))
		}
		if !spec.Direction.Valid() {
			return nil, apperrors.NewFieldValidationError("include", fmt.Sprintf("invalid direction %q", parts[1]))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Projector flattens entities and walks their relations
type Projector struct {
	relations *RelationService
}

// NewProjector creates a new projector
func NewProjector(relations *RelationService) *Projector {
	return &Projector{relations: relations}
}

// Project merges the core fields with the entity's attribute values.
// Attributes are applied last and win over core fields of the same name.
func (p *Projector) Project(entity *models.Entity) Projection {
	return project(entity)
}

func project(entity *models.Entity) Projection {
	out := Projection{
		"id":          entity.ID,
		"type":        string(entity.Type),
		"name":        derefOrNil(entity.Name),
		"description": derefOrNil(entity.Description),
		"isActive":    entity.IsActive,
		"createdAt":   entity.CreatedAt,
	}

	for name, scalar := range scalarMap(entity.Values) {
		out[name] = scalar.Native()
	}

	if entity.Type == models.EntityTypeCourse {
		out["name"] = ExtractCourseName(out)
		out["code"] = ExtractCourseCode(out)
	}

	return out
}

// ProjectWithRelations projects the entity and, for each spec, the entities
// related to it, decorated with relation-level fields
func (p *Projector) ProjectWithRelations(ctx context.Context, entity *models.Entity, specs []RelationSpec) (Projection, error) {
	out := project(entity)

	for _, spec := range specs {
		related, err := p.relations.traverse(ctx, entity.ID, spec.Direction, spec.RelationType, !spec.IncludeInactive)
		if err != nil {
			return nil, err
		}

		items := make([]Projection, 0, len(related))
		for _, item := range related {
			items = append(items, projectRelated(item))
		}
		out[spec.As] = items
	}

	return out, nil
}

// projectRelated projects the far-side entity and lays the relation's fields over it
func projectRelated(item *models.RelatedEntity) Projection {
	out := project(item.Entity)
	rel := item.Relation

	out["relationId"] = rel.ID
	out["relationType"] = string(rel.RelationType)
	out["relationStatus"] = string(rel.Status())
	out["startDate"] = rel.StartDate
	if rel.EndDate != nil {
		out["endDate"] = *rel.EndDate
	} else {
		out["endDate"] = nil
	}

	meta := models.DecodeMetadata(rel.RelationType, rel.Metadata)
	switch m := meta.(type) {
	case models.GenericMeta:
		if len(m) > 0 {
			out["metadata"] = m.Fields()
		}
	default:
		for k, v := range m.Fields() {
			out[k] = v
		}
	}

	if rel.RelationType == models.RelationEnrolledIn {
		out["enrollmentId"] = rel.ID
		out["status"] = string(rel.Status())
		if _, ok := out["grade"]; !ok {
			out["grade"] = nil
		}
		if _, ok := out["attendance"]; !ok {
			out["attendance"] = nil
		}
	}

	return out
}

// ExtractCourseName returns the first set course name field, or the default
func ExtractCourseName(fields map[string]interface{}) string {
	return firstString(fields, courseNameKeys, DefaultCourseName)
}

// ExtractCourseCode returns the first set course code field, or the default
func ExtractCourseCode(fields map[string]interface{}) string {
	return firstString(fields, courseCodeKeys, DefaultCourseCode)
}

func firstString(fields map[string]interface{}, keys []string, fallback string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case *string:
			if v != nil && strings.TrimSpace(*v) != "" {
				return *v
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return fallback
}

func derefOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
