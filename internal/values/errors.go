package values

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution errors. They are always delivered wrapped in a *FieldError that
// names the offending path.
var (
	// ErrMissingRequiredField indicates a required field is absent, null or
	// empty after merging.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrTypeMismatch indicates a field holds a value of the wrong kind, such
	// as a mapping where a scalar is required.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTemplate indicates a templated string failed to parse or execute.
	ErrTemplate = errors.New("template error")
)

// FieldError reports a failure at a configuration path.
type FieldError struct {
	Generator string // e.g., "workload"; empty outside generators
	Path      string // e.g., "ingress.rateLimit.rpm"
	Message   string
	Err       error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	if e.Generator != "" {
		b.WriteString(e.Generator)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	if e.Message != "" {
		if e.Err != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a FieldError for path wrapping err.
func NewFieldError(path string, err error, format string, args ...any) *FieldError {
	return &FieldError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Missing returns an ErrMissingRequiredField error for path.
func Missing(path string) error {
	return &FieldError{Path: path, Err: ErrMissingRequiredField}
}

// Mismatch returns an ErrTypeMismatch error for path describing the
// expected kind and the value actually found.
func Mismatch(path, want string, got any) error {
	return NewFieldError(path, ErrTypeMismatch, "expected %s, got %s", want, kindOf(got))
}

// WithGenerator stamps the generator name on the FieldError inside err, if
// any, and returns err.
func WithGenerator(err error, generator string) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Generator == "" {
		fe.Generator = generator
	}
	return err
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case Values, map[string]any:
		return "mapping"
	case []any, []string, []map[string]any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
