package derror

import (
	"fmt"

	"github.com/pkg/errors"
)

type panicError struct {
	err error
}

func (pe panicError) Error() string { return "PANIC: " + pe.err.Error() }
func (pe panicError) Cause() error  { return pe.err }
func (pe panicError) Unwrap() error { return pe.err }

// PanicToError takes an arbitrary object returned from recover(), and returns an appropriate
// error.
//
// If the input is nil, then nil is returned.
//
// If the input is already an error returned from PanicToError (because something recovered a
// panic, converted it, and re-panicked with it), it is returned as-is.
//
// Otherwise the result has a "PANIC: " prefix and carries a stack trace, which "%+v" prints.
func PanicToError(rec interface{}) error {
	if rec == nil {
		return nil
	}
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	var already panicError
	if errors.As(err, &already) {
		return err
	}
	return errors.WithStack(panicError{err})
}
