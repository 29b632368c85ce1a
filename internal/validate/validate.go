// Package validate wires the shared request validator and the custom
// rules the domain needs on top of the built-in tags.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ozgekaya/student-info-api/internal/model"
)

var (
	courseCodeRe   = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3}$`)
	academicYearRe = regexp.MustCompile(`^\d{4}-\d{4}$`)
	hhmmRe         = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// Pattern rules recovered from the stored data formats: course codes
	// like CS101 or MATH201, academic years like 2024-2025, HH:MM times.
	_ = val.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
		return courseCodeRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("academicyear", func(fl validator.FieldLevel) bool {
		return academicYearRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.ValidRole(fl.Field().String())
	})
	_ = val.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
		return model.ValidSemester(fl.Field().String())
	})
	_ = val.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return model.ValidScheduleDay(fl.Field().String())
	})
	_ = val.RegisterValidation("teachertitle", func(fl validator.FieldLevel) bool {
		return model.ValidTeacherTitle(fl.Field().String())
	})
	return val
}

// Struct validates a request body and flattens the failures into one
// readable message, one clause per failed field.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	clauses := make([]string, 0, len(errs))
	for _, fe := range errs {
		clauses = append(clauses, fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(clauses, "; "))
}

// Var validates a single value against a tag expression.
func Var(value interface{}, tag string) error {
	return v.Var(value, tag)
}
