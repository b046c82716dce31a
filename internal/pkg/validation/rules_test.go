package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Type     string   `validate:"required,entitytype"`
	Relation string   `validate:"relationtype"`
	Name     string   `validate:"attrname"`
	Types    []string `validate:"dive,entitytype"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"all valid", sample{Type: "STUDENT", Relation: "ENROLLED_IN", Name: "firstName", Types: []string{"STAFF"}}, true},
		{"optional tags empty", sample{Type: "COURSE"}, true},
		{"lower entity type", sample{Type: "student"}, false},
		{"relation with dash", sample{Type: "STUDENT", Relation: "ENROLLED-IN"}, false},
		{"attribute starts with digit", sample{Type: "STUDENT", Name: "1st"}, false},
		{"bad list element", sample{Type: "STUDENT", Types: []string{"STAFF", "x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsAttributeName(t *testing.T) {
	assert.True(t, IsAttributeName("gpa"))
	assert.True(t, IsAttributeName("enrolled_on2"))
	assert.False(t, IsAttributeName("_hidden"))
	assert.False(t, IsAttributeName("has space"))
}
