// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wdfconv pipeline:
// source files, decoded spectra, export targets, per-file outcomes, the run
// report, configuration, and the error taxonomy.
package types

// SourceFile identifies one discovered source container.
type SourceFile struct {
	// Path is the absolute path of the file.
	Path string `json:"path" yaml:"path"`

	// Basename is the file name without its extension (e.g. "sample").
	Basename string `json:"basename" yaml:"basename"`

	// RelDir is the file's directory relative to the import root, or ""
	// when the file sits directly in the import root.
	RelDir string `json:"rel_dir,omitempty" yaml:"rel_dir,omitempty"`
}

// TargetKind distinguishes the two export layouts.
type TargetKind string

const (
	// TargetPerSpectrumDir is a folder holding one text file per spectrum.
	TargetPerSpectrumDir TargetKind = "per-spectrum-dir"
	// TargetConsolidatedFile is a single table file per source file.
	TargetConsolidatedFile TargetKind = "consolidated-file"
)

// ExportTarget is the resolved destination for one source file. It is
// derived from the SourceFile and the run configuration and never mutated.
type ExportTarget struct {
	Kind TargetKind `json:"kind" yaml:"kind"`

	// Dir is the containing directory: the export root, or its mirrored
	// subdirectory.
	Dir string `json:"dir" yaml:"dir"`

	// Path is the per-spectrum folder for TargetPerSpectrumDir or the
	// table file for TargetConsolidatedFile.
	Path string `json:"path" yaml:"path"`

	// Basename names the per-spectrum files.
	Basename string `json:"basename" yaml:"basename"`
}
