package report

import (
	"errors"
	"fmt"
)

// Input error codes. These are the only failures caused by the prompt itself.
const (
	CodeEmptyPrompt     = "EMPTY_PROMPT"
	CodeInvalidDate     = "INVALID_DATE"
	CodeInvalidSpec     = "INVALID_SPEC"
	CodeProductNotFound = "PRODUCT_NOT_FOUND"
	CodeInvalidLabel    = "INVALID_LABEL"
)

// ErrUsageEntryNotFound is returned when a usage entry id does not exist.
var ErrUsageEntryNotFound = errors.New("usage entry not found")

// InputError is a hard failure caused by user input rather than infrastructure.
type InputError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func NewInputError(code, message string) *InputError {
	return &InputError{Code: code, Message: message}
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *InputError) WithCause(cause error) *InputError {
	e.Cause = cause
	return e
}

// AsInputError extracts an InputError from err's chain.
func AsInputError(err error) (*InputError, bool) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr, true
	}
	return nil, false
}

// IsInputError reports whether err carries the given code. An empty code
// matches any InputError.
func IsInputError(err error, code string) bool {
	inputErr, ok := AsInputError(err)
	if !ok {
		return false
	}
	return code == "" || inputErr.Code == code
}
