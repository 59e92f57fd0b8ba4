// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrRead is the sentinel error wrapped by ReadError.
	ErrRead = errors.New("file read failed")
	// ErrCycle is the sentinel error wrapped by CycleError.
	ErrCycle = errors.New("inclusion cycle")
)

type (
	// ReadError reports a failed content read. The affected node degrades
	// to a placeholder; the tree keeps running.
	ReadError struct {
		Path string
		Err  error
	}

	// CycleError reports a directive whose target is already on the
	// scanning node's ancestor chain. The directive is treated as inert
	// text; reconciliation of the surrounding node continues.
	CycleError struct {
		// Path is the offending target.
		Path string
		// In is the file containing the directive.
		In string
		// Line is the 1-based call-site line within In's wrapped content.
		Line int
	}
)

func (e *ReadError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrRead, e.Path, e.Err)
}

func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s included from %s:%d is an ancestor of the call site", ErrCycle, e.Path, e.In, e.Line)
}

func (e *CycleError) Unwrap() error { return ErrCycle }
