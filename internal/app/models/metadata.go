package models

import (
	"encoding/json"
	"strconv"
)

// MetadataMap parses a relation's metadata payload. Null or unparseable payloads read as an empty object.
func MetadataMap(raw string) map[string]interface{} {
	m := map[string]interface{}{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}

// EncodeMetadata serializes a metadata object; nil or empty maps encode as ""
func EncodeMetadata(m map[string]interface{}) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MergeMetadata shallow-merges patch over the stored payload and re-serializes it
func MergeMetadata(raw string, patch map[string]interface{}) (string, error) {
	current := MetadataMap(raw)
	for k, v := range patch {
		current[k] = v
	}
	return EncodeMetadata(current)
}

// RelationMetadata is the typed reading of a relation's payload
type RelationMetadata interface {
	// Fields returns the set fields, keyed by their wire names
	Fields() map[string]interface{}
	relationMetadata()
}

// EnrollmentMeta is carried by ENROLLED_IN relations
type EnrollmentMeta struct {
	Grade      *string
	Attendance *float64
}

// SubmissionMeta is carried by SUBMITTED_FOR relations
type SubmissionMeta struct {
	Content  *string
	FileURL  *string
	Score    *float64
	Feedback *string
	IsLate   *bool
	Status   *string
}

// GradeMeta is carried by GRADED_IN relations
type GradeMeta struct {
	Score    *float64
	Feedback *string
	Status   *string
}

// GenericMeta holds the payload of relation types without a typed reading
type GenericMeta map[string]interface{}

func (EnrollmentMeta) relationMetadata() {}
func (SubmissionMeta) relationMetadata() {}
func (GradeMeta) relationMetadata()      {}
func (GenericMeta) relationMetadata()    {}

func (m EnrollmentMeta) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	putString(f, "grade", m.Grade)
	putNumber(f, "attendance", m.Attendance)
	return f
}

func (m SubmissionMeta) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	putString(f, "content", m.Content)
	putString(f, "fileUrl", m.FileURL)
	putNumber(f, "score", m.Score)
	putString(f, "feedback", m.Feedback)
	if m.IsLate != nil {
		f["isLate"] = *m.IsLate
	}
	putString(f, "status", m.Status)
	return f
}

func (m GradeMeta) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	putNumber(f, "score", m.Score)
	putString(f, "feedback", m.Feedback)
	putString(f, "status", m.Status)
	return f
}

func (m GenericMeta) Fields() map[string]interface{} {
	f := make(map[string]interface{}, len(m))
	for k, v := range m {
		f[k] = v
	}
	return f
}

// DecodeMetadata reads a payload as the variant belonging to the relation type.
// Fields of the wrong JSON type are left unset.
func DecodeMetadata(relationType RelationType, raw string) RelationMetadata {
	m := MetadataMap(raw)
	switch relationType {
	case RelationEnrolledIn:
		return EnrollmentMeta{
			Grade:      stringField(m, "grade"),
			Attendance: numberField(m, "attendance"),
		}
	case RelationSubmittedFor:
		return SubmissionMeta{
			Content:  stringField(m, "content"),
			FileURL:  stringField(m, "fileUrl"),
			Score:    numberField(m, "score"),
			Feedback: stringField(m, "feedback"),
			IsLate:   boolField(m, "isLate"),
			Status:   stringField(m, "status"),
		}
	case RelationGradedIn:
		return GradeMeta{
			Score:    numberField(m, "score"),
			Feedback: stringField(m, "feedback"),
			Status:   stringField(m, "status"),
		}
	}
	return GenericMeta(m)
}

func stringField(m map[string]interface{}, key string) *string {
	switch v := m[key].(type) {
	case string:
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	}
	return nil
}

func numberField(m map[string]interface{}, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func boolField(m map[string]interface{}, key string) *bool {
	if v, ok := m[key].(bool); ok {
		return &v
	}
	return nil
}

func putString(f map[string]interface{}, key string, v *string) {
	if v != nil {
		f[key] = *v
	}
}

func putNumber(f map[string]interface{}, key string, v *float64) {
	if v != nil {
		f[key] = *v
	}
}
