// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Spectra holds the decoded contents of one source file: a shared
// measurement axis and one intensity record per spectrum, each aligned to
// the axis.
type Spectra struct {
	// Axis is the shared measurement grid (e.g. Raman shift), length N.
	Axis []float64 `json:"axis" yaml:"axis"`

	// Intensities holds one record of N values per spectrum, in source order.
	Intensities [][]float64 `json:"intensities" yaml:"intensities"`
}

// Count returns the number of spectra.
func (s Spectra) Count() int {
	return len(s.Intensities)
}

// Points returns the axis length.
func (s Spectra) Points() int {
	return len(s.Axis)
}

// Validate checks that every intensity record has exactly one value per
// axis point.
func (s Spectra) Validate() error {
	if len(s.Axis) == 0 && len(s.Intensities) > 0 {
		return fmt.Errorf("empty axis with %d spectra", len(s.Intensities))
	}
	for i, rec := range s.Intensities {
		if len(rec) != len(s.Axis) {
			return fmt.Errorf("spectrum %d has %d values, axis has %d", i, len(rec), len(s.Axis))
		}
	}
	return nil
}
