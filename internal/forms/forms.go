// Package forms turns raw form fields into typed request bodies.
//
// Numeric coercion follows the browser client the service was built for:
// optional floats that are blank, invalid or zero become null, optional
// integer counts fall back to 0, and a leading numeric prefix is accepted
// ("12m" reads as 12).
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Messages reported for missing input.
const (
	MsgFillAll     = "Please fill all fields"
	MsgCredentials = "Please enter email and password"
	MsgRequired    = "Please fill all required fields"
)

// Values holds raw form input keyed by field name.
type Values map[string]string

// Get returns the trimmed value for key.
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// ValidationError reports rejected form input. Fields maps the JSON field
// name to the failed rule ("required", "gte", ...).
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// FieldNames returns the offending fields in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func newValidationError(missing string, fields map[string]string) *ValidationError {
	var invalid []string
	for name, rule := range fields {
		if rule != "required" {
			invalid = append(invalid, name)
		}
	}
	msg := missing
	if len(invalid) == len(fields) && len(invalid) > 0 {
		sort.Strings(invalid)
		msg = "Invalid value for " + strings.Join(invalid, ", ")
	}
	return &ValidationError{Message: msg, Fields: fields}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks v against its validate tags. Missing required fields are
// reported with the missing message; other rule failures name the fields.
func Validate(v any, missing string) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return newValidationError(missing, fields)
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseFloat reads the leading decimal number of s.
func parseFloat(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInt reads the leading integer of s, truncating any fraction.
func parseInt(s string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// optionalFloat is nil when s is blank, invalid or zero.
func optionalFloat(s string) *float64 {
	f, ok := parseFloat(s)
	if !ok || f == 0 {
		return nil
	}
	return &f
}

// optionalInt is nil when s is blank, invalid or zero.
func optionalInt(s string) *int {
	n, ok := parseInt(s)
	if !ok || n == 0 {
		return nil
	}
	return &n
}

// countOrZero is 0 when s is blank or invalid.
func countOrZero(s string) int {
	n, _ := parseInt(s)
	return n
}

// numbers collects required numeric fields, remembering the ones that failed.
type numbers struct {
	v       Values
	missing map[string]string
}

func (n *numbers) float(key string) float64 {
	f, ok := parseFloat(n.v[key])
	if !ok {
		n.fail(key)
	}
	return f
}

func (n *numbers) int(key string) int {
	i, ok := parseInt(n.v[key])
	if !ok {
		n.fail(key)
	}
	return i
}

func (n *numbers) fail(key string) {
	if n.missing == nil {
		n.missing = map[string]string{}
	}
	n.missing[key] = "required"
}

func (n *numbers) err() error {
	if len(n.missing) == 0 {
		return nil
	}
	return newValidationError(MsgRequired, n.missing)
}
