package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/unicampus/internal/app/models"
)

// Custom binding tags
const (
	TagEntityType    = "entitytype"
	TagRelationType  = "relationtype"
	TagAttributeName = "attrname"
)

// AttributeNamePattern is the accepted shape of an attribute name
const AttributeNamePattern = `^[A-Za-z][A-Za-z0-9_]*$`

var attributeNameRegex = regexp.MustCompile(AttributeNamePattern)

// IsAttributeName reports whether name can be registered as an attribute
func IsAttributeName(name string) bool {
	return attributeNameRegex.MatchString(name)
}

// Register installs the custom tags on v. Empty values pass; pair with required when needed.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagEntityType: func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || models.EntityType(s).Valid()
		},
		TagRelationType: func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || models.RelationType(s).Valid()
		},
		TagAttributeName: func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || IsAttributeName(s)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
