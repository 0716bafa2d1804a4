// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode turns a WDF source file into types.Spectra. The binary
// container itself is read by an external reader; this package defines the
// Decoder contract, runs the reader, and validates its document output.
package decode

import "github.com/pdiddy/wdfconv/pkg/types"

// Decoder yields the shared axis and the intensity records of one source
// file. Failures are reported as *types.DecodeError.
type Decoder interface {
	// Decode reads the file at path and returns its spectra.
	Decode(path string) (types.Spectra, error)
}

// Func adapts an ordinary function to the Decoder interface.
type Func func(path string) (types.Spectra, error)

// Decode calls f(path).
func (f Func) Decode(path string) (types.Spectra, error) {
	return f(path)
}

// Reasons attached to DecodeErrors. They are shared across files so the
// run summary can group failures.
const (
	ReasonOpen         = "cannot open source file"
	ReasonReader       = "reader failed"
	ReasonEmptyOutput  = "reader produced no output"
	ReasonInvalidDoc   = "invalid reader output"
	ReasonInconsistent = "inconsistent spectra"
)
