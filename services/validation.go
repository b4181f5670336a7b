package services

import (
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns the first validator failure into a ValidationError
// naming the offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "oneof":
		return models.NewValidationError(field, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(indirect(fe.Value()))))
	case "datetime":
		return models.NewValidationError(field, fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field))
	case "required":
		return models.NewValidationError(field, fmt.Sprintf("%s is required", field))
	default:
		return models.NewValidationError(field, fmt.Sprintf("%s failed the %q rule", field, fe.Tag()))
	}
}

// ValidateQuery checks the date bounds and status filter of a board read.
func ValidateQuery(q models.DispatchQuery) error {
	if q.StartDate != "" && !utils.IsValidDate(q.StartDate) {
		return models.NewValidationError("startDate", "startDate must be a date formatted as YYYY-MM-DD")
	}
	if q.EndDate != "" && !utils.IsValidDate(q.EndDate) {
		return models.NewValidationError("endDate", "endDate must be a date formatted as YYYY-MM-DD")
	}
	if q.StartDate != "" && q.EndDate != "" && q.EndDate < q.StartDate {
		return models.NewValidationError("endDate", "endDate must not be before startDate")
	}
	for _, s := range q.Statuses {
		if !s.IsValid() {
			return models.NewValidationError("statuses", fmt.Sprintf("unknown status %q", s))
		}
	}
	return nil
}

func indirect(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
