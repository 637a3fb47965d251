package listing

import (
	"fmt"
	"strings"
)

// FieldError mirrors the handlers' validation error shape.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid listing: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

func (e *ValidationError) has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field validation error.
func Invalid(field, rule, param, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Param: param, Message: msg}}}
}

// parseError is what field parsers return; the field name is attached by the caller.
type parseError struct {
	rule  string
	param string
	msg   string
}

func (e *parseError) Error() string { return e.msg }

func errRule(rule, param, format string, args ...any) error {
	return &parseError{rule: rule, param: param, msg: fmt.Sprintf(format, args...)}
}
