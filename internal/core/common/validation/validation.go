// Package validation is a small fluent builder. Rules run in the order they
// were declared and Validate reports the first one that fails.
package validation

import (
	"regexp"
	"strings"

	errors "github.com/frahmantamala/store-management/internal"
)

type rule struct {
	ok      func() bool
	message string
	code    errors.ErrorCode
}

type FieldValidator struct {
	FieldName string
	builder   *ValidationBuilder
}

type ValidationBuilder struct {
	rules  []rule
	fields []string
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string) *FieldValidator {
	return &FieldValidator{FieldName: name, builder: v}
}

func (fv *FieldValidator) add(ok func() bool, message string, code errors.ErrorCode) *FieldValidator {
	fv.builder.rules = append(fv.builder.rules, rule{ok: ok, message: message, code: code})
	fv.builder.fields = append(fv.builder.fields, fv.FieldName)
	return fv
}

// Required fails on an empty or whitespace-only value.
func (fv *FieldValidator) Required(value, message string, code errors.ErrorCode) *FieldValidator {
	return fv.add(func() bool { return strings.TrimSpace(value) != "" }, message, code)
}

func (fv *FieldValidator) MinLength(value string, min int, message string, code errors.ErrorCode) *FieldValidator {
	return fv.add(func() bool { return len(value) >= min }, message, code)
}

// MaxLength counts bytes, not runes.
func (fv *FieldValidator) MaxLength(value string, max int, message string, code errors.ErrorCode) *FieldValidator {
	return fv.add(func() bool { return len(value) <= max }, message, code)
}

func (fv *FieldValidator) Matches(value string, pattern *regexp.Regexp, message string, code errors.ErrorCode) *FieldValidator {
	return fv.add(func() bool { return pattern.MatchString(value) }, message, code)
}

func (fv *FieldValidator) NonNegative(value int64, message string, code errors.ErrorCode) *FieldValidator {
	return fv.add(func() bool { return value >= 0 }, message, code)
}

// Validate returns the first failing rule as a field error, or nil.
func (v *ValidationBuilder) Validate() *errors.AppError {
	for i, r := range v.rules {
		if !r.ok() {
			return errors.NewValidationFieldError(v.fields[i], r.message, r.code)
		}
	}
	return nil
}
