package session

import (
	"errors"
	"fmt"
)

// ErrNotLaunched is returned by browser-requiring operations before a
// successful launch.
var ErrNotLaunched = errors.New("Browser not launched")

// NotFoundError reports an unknown page identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Page %s not found", e.ID)
}

// ElementNotFoundError reports a selector that matched nothing where an
// element was required.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("Element %s not found", e.Selector)
}

// UnknownToolError reports a call to a tool with no handler.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// ValidationError reports missing or malformed arguments.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "Invalid arguments: " + e.Msg
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	KindNotLaunched      ErrorKind = "not_launched"
	KindNotFound         ErrorKind = "not_found"
	KindElementNotFound  ErrorKind = "element_not_found"
	KindProvider         ErrorKind = "provider"
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindInvalidArguments ErrorKind = "invalid_arguments"
)

// Kind classifies err. Anything not raised by this package came from the
// browser provider.
func Kind(err error) ErrorKind {
	var (
		notFound   *NotFoundError
		element    *ElementNotFoundError
		unknown    *UnknownToolError
		validation *ValidationError
	)
	switch {
	case errors.Is(err, ErrNotLaunched):
		return KindNotLaunched
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &element):
		return KindElementNotFound
	case errors.As(err, &unknown):
		return KindUnknownTool
	case errors.As(err, &validation):
		return KindInvalidArguments
	default:
		return KindProvider
	}
}
