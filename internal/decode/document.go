// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"bytes"
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wdfconv/pkg/types"
)

// document is the reader's output. JSON output parses too, since JSON is
// a subset of YAML.
//
//	axis: [100, 200, 300]
//	spectra: [[1, 2, 3], [4, 5, 6]]   # or flat: [1, 2, 3, 4, 5, 6]
//	count: 2                          # optional
//	points_per_spectrum: 3            # optional
type document struct {
	Axis    []float64 `yaml:"axis"`
	Spectra yaml.Node `yaml:"spectra"`
	Count   *int      `yaml:"count"`
	Points  *int      `yaml:"points_per_spectrum"`
}

// ShapeError reports reader output that parses but whose spectra do not
// line up with the axis.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string { return e.Msg }

func shapef(format string, args ...any) error {
	return &ShapeError{Msg: fmt.Sprintf(format, args...)}
}

// ParseDocument parses reader output into Spectra. A flat spectra list is
// reshaped into count x points_per_spectrum records. Records whose length
// differs from the axis length produce a *ShapeError.
func ParseDocument(data []byte) (types.Spectra, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.Spectra{}, errors.New("empty document")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Spectra{}, fmt.Errorf("parsing reader document: %w", err)
	}

	points := len(doc.Axis)
	if doc.Points != nil {
		if *doc.Points != points {
			return types.Spectra{}, shapef("points_per_spectrum %d does not match axis length %d", *doc.Points, points)
		}
	}

	records, err := spectraRecords(&doc.Spectra, points, doc.Count)
	if err != nil {
		return types.Spectra{}, err
	}

	s := types.Spectra{Axis: doc.Axis, Intensities: records}
	if doc.Count != nil && *doc.Count != s.Count() {
		return types.Spectra{}, shapef("count %d does not match %d spectra", *doc.Count, s.Count())
	}
	if err := s.Validate(); err != nil {
		return types.Spectra{}, &ShapeError{Msg: err.Error()}
	}
	return s, nil
}

// spectraRecords decodes the spectra node, which is either a list of
// records or one flat buffer.
func spectraRecords(node *yaml.Node, points int, count *int) ([][]float64, error) {
	switch {
	case node.Kind == 0, node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil, nil
	case node.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("spectra must be a list, line %d", node.Line)
	case len(node.Content) == 0:
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var nested [][]float64
		if err := node.Decode(&nested); err != nil {
			return nil, fmt.Errorf("decoding spectra: %w", err)
		}
		return nested, nil
	}

	var flat []float64
	if err := node.Decode(&flat); err != nil {
		return nil, fmt.Errorf("decoding spectra: %w", err)
	}
	return reshape(flat, points, count)
}

// reshape splits a flat buffer into records of points values.
func reshape(flat []float64, points int, count *int) ([][]float64, error) {
	if points == 0 {
		return nil, shapef("%d intensity values but the axis is empty", len(flat))
	}
	n := len(flat) / points
	if len(flat)%points != 0 {
		return nil, shapef("%d intensity values cannot form %d spectra of %d points", len(flat), n, points)
	}
	if count != nil && *count != n {
		return nil, shapef("%d intensity values cannot form %d spectra of %d points", len(flat), *count, points)
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = flat[i*points : (i+1)*points : (i+1)*points]
	}
	return out, nil
}
