package usecase

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Rejection is a staging row the transformer refused.
type Rejection struct {
	TableID int64
	Errors  []ValidationError
}

func (r Rejection) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("lead %d rejected: %s", r.TableID, strings.Join(msgs, "; "))
}

// leadRules are the fields every row needs before anything else is looked at.
type leadRules struct {
	GroupCode string `validate:"required"`
	Name      string `validate:"required"`
	Company   string `validate:"required"`
}

type countryRule struct {
	Country string `validate:"len=2"`
}

var fieldNames = map[string]string{
	"GroupCode": "group_code",
	"Name":      "name",
	"Company":   "company",
	"Country":   "country",
}

func validationErrors(err error) []ValidationError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "row", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldNames[fe.StructField()]
		switch fe.Tag() {
		case "required":
			out = append(out, ValidationError{field, "is required"})
		case "len":
			out = append(out, ValidationError{field, fmt.Sprintf("must have exactly %s characters", fe.Param())})
		default:
			out = append(out, ValidationError{field, "is invalid"})
		}
	}
	return out
}
