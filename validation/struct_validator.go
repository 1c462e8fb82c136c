package validation

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/record"
)

var (
	structValidator *validator.Validate
	initOnce        sync.Once
)

func instance() *validator.Validate {
	initOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("datatype", isDataType)
		_ = v.RegisterValidation("duration", isDuration)
		structValidator = v
	})
	return structValidator
}

// fieldName reports a field the way a task file spells it: the mapstructure
// key, then the json key, then the snake-cased Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnakeCase(fld.Name)
}

func isDataType(fl validator.FieldLevel) bool {
	_, err := record.ParseDataType(fl.Field().String())
	return err == nil
}

func isDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// Validate checks s against its `validate` struct tags. Besides the
// built-in tags, "datatype" accepts a record data type name and "duration"
// a time.ParseDuration string. All failures are reported together as one
// INVALID_CONFIG AppError.
func Validate(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation(err.Error())
	}

	v := New()
	for _, e := range verrs {
		v.AddError(e.Field(), describe(e))
	}
	return v.Err()
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "eq":
		return "must be " + e.Param()
	case "min":
		return "must be at least " + e.Param() + unit(e.Kind())
	case "max":
		return "must be at most " + e.Param() + unit(e.Kind())
	case "ltefield":
		return "must not exceed " + toSnakeCase(e.Param())
	case "hostname_port":
		return "must be a host:port address"
	case "url":
		return "must be a URL"
	case "datatype":
		return "is not a known data type"
	case "duration":
		return "is not a valid duration"
	case "dive":
		return "has an invalid element"
	}
	return "is invalid"
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map:
		return " items"
	}
	return ""
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
