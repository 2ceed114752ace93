// Package validatex validates exported struct fields against `validatex`
// tags such as `validatex:"required,numeric,max=20"`.
package validatex

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/maachbazar/whatsapp-agent/errx"
)

var (
	errs = errx.NewRegistry("VALIDATION")

	ErrInvalid     = errs.Register("FAILED", errx.TypeValidation, http.StatusBadRequest, "Validation failed")
	ErrNotStruct   = errs.Register("NOT_STRUCT", errx.TypeInternal, http.StatusInternalServerError, "Value must be a struct")
	ErrUnknownRule = errs.Register("UNKNOWN_RULE", errx.TypeInternal, http.StatusInternalServerError, "Unknown validation rule")
)

// FieldError describes one failed rule
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s=%s", f.Rule, f.Param)
	}
	return f.Rule
}

// Validate checks every tagged field of obj. Empty optional fields skip
// their other rules. The returned error is an *errx.Error with code
// ErrInvalid whose details map each failed field to its first failed rule.
func Validate(obj any) error {
	fields, err := structFields(obj)
	if err != nil {
		return errs.NewWithCause(ErrNotStruct, err).WithDetail("type", fmt.Sprintf("%T", obj))
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []FieldError
	for _, name := range names {
		f := fields[name]
		fe, err := checkField(f)
		if err != nil {
			return err
		}
		if fe != nil {
			failures = append(failures, *fe)
		}
	}

	if len(failures) == 0 {
		return nil
	}

	xerr := errs.New(ErrInvalid)
	msgs := make([]string, 0, len(failures))
	for _, fe := range failures {
		xerr.WithDetail(fe.Field, fe.String())
		msgs = append(msgs, fe.Field+" "+fe.String())
	}
	xerr.Message = "Validation failed: " + strings.Join(msgs, "; ")
	return xerr
}

func checkField(f fieldInfo) (*FieldError, error) {
	value, isNil := dereferenceValue(f.Value)
	empty := isNil || isZero(value)

	for _, rule := range f.Rules {
		fn, ok := getValidationFunc(rule.Name)
		if !ok {
			return nil, errs.New(ErrUnknownRule).WithDetail("rule", rule.Name).WithDetail("field", f.Name)
		}
		if rule.Name != "required" && empty {
			continue
		}
		if !fn(value, rule.Param) {
			return &FieldError{Field: f.Name, Rule: rule.Name, Param: rule.Param}, nil
		}
	}
	return nil, nil
}
