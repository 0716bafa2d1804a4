// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/wdfconv/internal/container"
	"github.com/pdiddy/wdfconv/pkg/types"
)

// Stream decodes WDF files by piping them through an external reader run
// by a container.Runtime (docker, podman, or the host). The reader writes
// a document (see ParseDocument) to stdout.
type Stream struct {
	runtime container.Runtime
	reader  string
}

var _ Decoder = (*Stream)(nil)

// NewStream creates a decoder that uses rt to run reader. It verifies that
// the reader exists before returning.
func NewStream(rt container.Runtime, reader string) (*Stream, error) {
	if err := rt.ImageExists(reader); err != nil {
		return nil, fmt.Errorf("wdf reader not available in %s: %w", rt.Name(), err)
	}
	return &Stream{runtime: rt, reader: reader}, nil
}

// Decode pipes the file at path through the reader and parses its output.
func (s *Stream) Decode(path string) (types.Spectra, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Spectra{}, &types.DecodeError{Path: path, Reason: ReasonOpen, Err: err}
	}
	defer f.Close()

	var out bytes.Buffer
	if err := s.runtime.Run(s.reader, f, &out); err != nil {
		return types.Spectra{}, &types.DecodeError{Path: path, Reason: ReasonReader, Err: err}
	}
	if out.Len() == 0 {
		return types.Spectra{}, &types.DecodeError{Path: path, Reason: ReasonEmptyOutput}
	}

	spectra, err := ParseDocument(out.Bytes())
	if err != nil {
		reason := ReasonInvalidDoc
		var shape *ShapeError
		if errors.As(err, &shape) {
			reason = ReasonInconsistent
		}
		return types.Spectra{}, &types.DecodeError{Path: path, Reason: reason, Err: err}
	}
	return spectra, nil
}
