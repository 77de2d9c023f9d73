// internal/app/system/inputval/validators.go
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/saasgate/internal/app/system/timezones"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string // json name when present, else the Go field name
	Rule    string
	Message string
}

// Result collects the field errors of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the string fields of struct v against their `validate`
// tags, in field order. Messages use the `label` tag. Pointer fields are
// skipped when nil, so optional PATCH fields validate only when present.
//
// Rules: required, min=N, max=N (rune counts), email, domain, role, tier,
// timezone, oneof=a b c.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.String {
			continue
		}

		label := sf.Tag.Get("label")
		if label == "" {
			label = sf.Name
		}
		if fe, failed := checkField(strings.TrimSpace(fv.String()), strings.Split(tag, ","), label); failed {
			fe.Field = fieldName(sf)
			res.Errors = append(res.Errors, fe)
		}
	}
	return res
}

// checkField returns the first failing rule for s.
func checkField(s string, rules []string, label string) (FieldError, bool) {
	for _, rule := range rules {
		name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")
		if s == "" && name != "required" {
			continue
		}

		var msg string
		switch name {
		case "required":
			if s == "" {
				msg = label + " is required."
			}
		case "min":
			if n, _ := strconv.Atoi(arg); utf8.RuneCountInString(s) < n {
				msg = fmt.Sprintf("%s must be at least %d characters.", label, n)
			}
		case "max":
			if n, _ := strconv.Atoi(arg); utf8.RuneCountInString(s) > n {
				msg = fmt.Sprintf("%s must be at most %d characters.", label, n)
			}
		case "email":
			if !IsValidEmail(s) {
				msg = "A valid email address is required."
			}
		case "domain":
			if !IsValidDomain(s) {
				msg = label + " must be a valid domain name."
			}
		case "role":
			if !IsValidRole(s) {
				msg = label + " must be a known role."
			}
		case "tier":
			if !IsValidTier(s) {
				msg = label + " must be a known subscription tier."
			}
		case "timezone":
			if !timezones.Valid(s) {
				msg = label + " must be a supported time zone."
			}
		case "oneof":
			if !oneOf(s, strings.Fields(arg)) {
				msg = fmt.Sprintf("%s must be one of: %s.", label, strings.Join(strings.Fields(arg), ", "))
			}
		}
		if msg != "" {
			return FieldError{Rule: name, Message: msg}, true
		}
	}
	return FieldError{}, false
}

func oneOf(s string, options []string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

func fieldName(sf reflect.StructField) string {
	if j := sf.Tag.Get("json"); j != "" {
		if name, _, _ := strings.Cut(j, ","); name != "" && name != "-" {
			return name
		}
	}
	return sf.Name
}
