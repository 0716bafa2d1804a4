// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ArgumentError reports invalid command-line input or configuration. It is
// fatal and raised before any filesystem work.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

// Argumentf builds an ArgumentError from a format string.
func Argumentf(format string, args ...any) *ArgumentError {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// PreconditionError reports a batch-level precondition failure (bad import
// root, export root that cannot be created, unavailable decoder). It aborts
// the run.
type PreconditionError struct {
	Msg string
	Err error
}

func (e *PreconditionError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// DecodeError reports a source file that could not be decoded.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decoding " + e.Path + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports an I/O failure while writing a destination file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return "writing " + e.Path + ": " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// PathError reports a destination directory that could not be created.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return "creating " + e.Path + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }
