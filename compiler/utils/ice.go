//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"github.com/cockroachdb/errors"
)

// InternalError is the panic value of an internal compiler error. It
// reports a violated invariant in internally generated IR and is
// never caused by user input.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Err.Error()
}

// Unwrap returns the underlying assertion failure.
func (e *InternalError) Unwrap() error {
	return e.Err
}

// ICE aborts the current compilation with an internal compiler error.
func ICE(format string, a ...interface{}) {
	panic(&InternalError{
		Err: errors.AssertionFailedf(format, a...),
	})
}

// Recover converts an internal compiler error panic into an error
// stored in err. Other panics are propagated. Recover must be called
// directly by a deferred function.
//
//	defer utils.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	*err = ie
}
