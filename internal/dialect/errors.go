package dialect

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks a feature the active variant cannot express.
var ErrUnsupported = errors.New("not supported by grammar variant")

// Configuration error codes.
const (
	CodeMissingTable    = "E201"
	CodeMissingSequence = "E202"
	CodeUnmappedType    = "E203"
	CodeBadVersion      = "E204"
	CodeUnsupported     = "E205"
	CodeBadValues       = "E206"
	CodeUnknownVariant  = "E207"
)

// ConfigError is raised when the compiler is missing an input it cannot
// default: a table name, a sequence name, a type mapping or a usable
// engine version.
type ConfigError struct {
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Unsupported builds the E205 error for feature on v.
func Unsupported(v Variant, feature string) error {
	return &ConfigError{
		Code:    CodeUnsupported,
		Field:   feature,
		Message: fmt.Sprintf("%s is not available on %s", feature, v),
		Err:     ErrUnsupported,
	}
}

// MissingTable builds the E201 error for op.
func MissingTable(op string) error {
	return &ConfigError{
		Code:    CodeMissingTable,
		Field:   "table",
		Message: op + " requires a table name",
	}
}
