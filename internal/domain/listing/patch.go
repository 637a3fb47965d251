package listing

import (
	"errors"
	"maps"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Patch is the set of form keys a request supplied. A key mapped to "" is
// still supplied; only absent keys are left untouched.
type Patch struct {
	values map[string]string
}

func NewPatch(values map[string]string) Patch {
	return Patch{values: maps.Clone(values)}
}

// PatchFromForm keeps the first value of every key.
func PatchFromForm(form map[string][]string) Patch {
	values := make(map[string]string, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			values[k] = vs[0]
		} else {
			values[k] = ""
		}
	}
	return Patch{values: values}
}

func (p Patch) Value(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p Patch) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p Patch) apply(l *Listing, onCreate bool) *ValidationError {
	verr := &ValidationError{}
	for _, f := range fieldSpecs {
		if onCreate && f.updateOnly {
			continue
		}
		raw, ok := p.values[f.name]
		if !ok {
			continue
		}
		if onCreate && strings.TrimSpace(raw) == "" && (f.name == "category" || f.name == "condition") {
			// blank picks the column default on create
			continue
		}
		if err := f.apply(l, raw); err != nil {
			verr.add(toFieldError(f.name, err))
		}
	}
	return verr
}

// ApplyTo merges the supplied columns into l. On error l may be partially
// written; callers patch a Clone.
func (p Patch) ApplyTo(l *Listing) error {
	verr := p.apply(l, false)
	l.Normalize()
	return verr.orNil()
}

// Draft builds a new listing owned by ownerID from the supplied columns.
// Any userId or sold key in the form is ignored.
func (p Patch) Draft(ownerID int64) (Listing, error) {
	l := NewDraft(ownerID)
	verr := p.apply(&l, true)

	rules := createRules{Title: l.Title}
	if raw, ok := p.values["price"]; ok && strings.TrimSpace(raw) != "" {
		rules.Price = &l.Price
	}
	if err := validate.Struct(rules); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			for _, fe := range ves {
				if verr.has(fe.Field()) {
					continue
				}
				verr.add(FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param(), Message: ruleMessage(fe.Tag(), fe.Param())})
			}
		}
	}

	l.UserID = ownerID
	l.Sold = false
	l.Normalize()
	return l, verr.orNil()
}

type createRules struct {
	Title string   `json:"title" validate:"required,max=200"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toFieldError(field string, err error) FieldError {
	var pe *parseError
	if errors.As(err, &pe) {
		return FieldError{Field: field, Rule: pe.rule, Param: pe.param, Message: pe.msg}
	}
	return FieldError{Field: field, Rule: "invalid", Message: err.Error()}
}

func ruleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be at least " + param
	default:
		return "is invalid"
	}
}
