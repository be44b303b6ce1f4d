package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// fieldMessages holds the caller-facing text per field and failed tag.
var fieldMessages = map[string]map[string]string{
	"title": {
		"required": "Title is required",
		"min":      "Title must be between 3 and 80 characters",
		"max":      "Title must be between 3 and 80 characters",
	},
	"description": {
		"max": "Description must not exceed 250 characters",
	},
	"priority": {
		"required": "Priority is required",
		"oneof":    "Priority must be one of LOW, MEDIUM, HIGH",
	},
	"status": {
		"required": "Status is required",
		"oneof":    "Status must be one of TODO, IN_PROGRESS, DONE",
	},
}

// validateStruct runs the validate tags of s and converts failures into a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		msg := fieldMessages[field][fe.Tag()]
		if msg == "" {
			msg = "invalid value"
		}
		out.Fields[field] = msg
	}
	return out
}
