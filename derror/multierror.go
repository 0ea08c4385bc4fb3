// Package derror provides error types and helpers shared by the dworld packages.
package derror

import (
	"fmt"
	"strings"
)

// MultiError is an error that wraps several errors; for reporting every problem found at once
// (for example, every invalid field of a config file) rather than just the first.
type MultiError []error

func (e MultiError) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d errors:", len(e))
	for i, err := range e {
		prefix := fmt.Sprintf(" %d. ", i+1)
		indent := "\n" + strings.Repeat(" ", len(prefix))
		buf.WriteString("\n" + prefix + strings.ReplaceAll(err.Error(), "\n", indent))
	}
	return buf.String()
}

// Unwrap lets errors.Is and errors.As look at each of the wrapped errors.
func (e MultiError) Unwrap() []error {
	return e
}

// ErrorOrNil returns nil if e is empty, and e otherwise; so that a function can collect errors in
// a MultiError and `return errs.ErrorOrNil()` without returning a non-nil empty error.
func (e MultiError) ErrorOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
