package validation

import (
	"errors"
	"reflect"
	"strings"

	"alumnet/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match the request payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// A zero Date counts as missing for required.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(models.Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.String()
	}, models.Date{})
}

// ValidateStruct runs the struct's validate tags and returns a ValidationError describing every failure.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return models.NewValidationError(FormatValidationErrors(verrs))
	}
	return models.NewValidationError(err.Error())
}

// FormatValidationErrors renders validator errors as one human readable line.
func FormatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Field()+" is required")
		case "email":
			msgs = append(msgs, e.Field()+" must be a valid email")
		case "url":
			msgs = append(msgs, e.Field()+" must be a valid URL")
		case "min":
			msgs = append(msgs, e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			msgs = append(msgs, e.Field()+" must be at most "+e.Param()+" characters")
		case "oneof":
			msgs = append(msgs, e.Field()+" must be one of: "+e.Param())
		case "gtefield":
			msgs = append(msgs, e.Field()+" must not be before "+e.Param())
		default:
			msgs = append(msgs, e.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
