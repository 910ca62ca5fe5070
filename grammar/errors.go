package grammar

import (
	"fmt"

	"github.com/gvmlang/gvm/location"
)

// Error reports a malformed grammar registration: a duplicate or
// kind-mismatched symbol name, an invalid add_parser dispatch shape, or an
// action whose result type doesn't fit its parselet's declared type.
type Error struct {
	Location location.Location
	Message  string
}

func (e *Error) Error() string {
	if e.Location.Filename == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", e.Location, e.Message)
}

func errorf(loc location.Location, format string, args ...any) *Error {
	return &Error{Location: loc, Message: fmt.Sprintf(format, args...)}
}
