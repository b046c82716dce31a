package models

import "regexp"

// tokenPattern is the shape shared by entity types and relation types (upper snake case)
var tokenPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// MaxTokenLength bounds entity and relation type tokens
const MaxTokenLength = 50

func validToken(s string) bool {
	return len(s) <= MaxTokenLength && tokenPattern.MatchString(s)
}

// EntityType is the discriminant of an Entity
type EntityType string

// Known entity types; any upper-snake token is accepted
const (
	EntityTypeStudent      EntityType = "STUDENT"
	EntityTypeStaff        EntityType = "STAFF"
	EntityTypeCourse       EntityType = "COURSE"
	EntityTypeDepartment   EntityType = "DEPARTMENT"
	EntityTypeParent       EntityType = "PARENT"
	EntityTypeAssessment   EntityType = "ASSESSMENT"
	EntityTypeAssignment   EntityType = "ASSIGNMENT"
	EntityTypeEvent        EntityType = "EVENT"
	EntityTypeAnnouncement EntityType = "ANNOUNCEMENT"
	EntityTypeRoom         EntityType = "ROOM"
	EntityTypeBuilding     EntityType = "BUILDING"
)

// Valid reports whether t is a well formed entity type token
func (t EntityType) Valid() bool {
	return validToken(string(t))
}

// RequiresName reports whether entities of this type must be created with a name
func (t EntityType) RequiresName() bool {
	switch t {
	case EntityTypeDepartment, EntityTypeRoom, EntityTypeBuilding:
		return true
	}
	return false
}

// RelationType tags an EntityRelation
type RelationType string

// Known relation types; any upper-snake token is accepted
const (
	RelationEnrolledIn    RelationType = "ENROLLED_IN"
	RelationTeaches       RelationType = "TEACHES"
	RelationParentOf      RelationType = "PARENT_OF"
	RelationBelongsTo     RelationType = "BELONGS_TO"
	RelationWorksIn       RelationType = "WORKS_IN"
	RelationAssessmentFor RelationType = "ASSESSMENT_FOR"
	RelationAssignmentFor RelationType = "ASSIGNMENT_FOR"
	RelationSubmittedFor  RelationType = "SUBMITTED_FOR"
	RelationGradedIn      RelationType = "GRADED_IN"
	RelationHeads         RelationType = "HEADS"
	RelationLocatedIn     RelationType = "LOCATED_IN"
)

// Valid reports whether t is a well formed relation type token
func (t RelationType) Valid() bool {
	return validToken(string(t))
}

// Direction selects which end of a relation the traversal starts from
type Direction string

const (
	DirectionOut Direction = "out" // entity is fromEntityId
	DirectionIn  Direction = "in"  // entity is toEntityId
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == DirectionOut || d == DirectionIn
}
