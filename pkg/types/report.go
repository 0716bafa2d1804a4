// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"sort"
	"time"
)

// OutcomeStatus is the result of converting one source file.
type OutcomeStatus string

const (
	// OutcomeSuccess means every output for the file was written.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeSkipped means the file decoded but there was nothing to write.
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeFailed means the file could not be decoded or written.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome records what happened to one source file during a run.
type Outcome struct {
	// Source is the source file path.
	Source string `json:"source" yaml:"source"`

	// Target is the resolved destination (folder or table file). Empty when
	// planning failed.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	Status OutcomeStatus `json:"status" yaml:"status"`

	// Spectra is the number of spectra written (success only).
	Spectra int `json:"spectra" yaml:"spectra"`

	// Reason is a short, file-independent description used to group
	// skipped and failed files (e.g. "invalid reader output").
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Detail is the full error message for failed files.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Err is the underlying error. It is not serialized.
	Err error `json:"-" yaml:"-"`
}

// BatchReport is the run-level result returned by the orchestrator. It
// exists for the duration of a run and is only persisted on request.
type BatchReport struct {
	ImportRoot string       `json:"import_root" yaml:"import_root"`
	ExportRoot string       `json:"export_root" yaml:"export_root"`
	Format     ExportFormat `json:"format" yaml:"format"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`

	// Total is the number of discovered source files.
	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`

	// Cancelled is set when the run stopped before processing every file.
	Cancelled bool `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`

	// Outcomes lists per-file results in processing order.
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Record appends an outcome and updates the matching counter.
func (r *BatchReport) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Processed returns the number of files with a recorded outcome.
func (r BatchReport) Processed() int {
	return len(r.Outcomes)
}

// HasFailures reports whether any file failed conversion.
func (r BatchReport) HasFailures() bool {
	return r.Failed > 0
}

// ReasonGroup lists the files that failed for the same reason.
type ReasonGroup struct {
	Reason string
	Files  []string
}

// FailuresByReason groups failed source file names by outcome reason.
// Groups are ordered by descending size, then by reason.
func (r BatchReport) FailuresByReason() []ReasonGroup {
	idx := make(map[string]int)
	var groups []ReasonGroup
	for _, o := range r.Outcomes {
		if o.Status != OutcomeFailed {
			continue
		}
		i, ok := idx[o.Reason]
		if !ok {
			i = len(groups)
			idx[o.Reason] = i
			groups = append(groups, ReasonGroup{Reason: o.Reason})
		}
		groups[i].Files = append(groups[i].Files, filepath.Base(o.Source))
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Files) != len(groups[j].Files) {
			return len(groups[i].Files) > len(groups[j].Files)
		}
		return groups[i].Reason < groups[j].Reason
	})
	return groups
}

// Progress is passed to the progress callback after each file completes.
type Progress struct {
	// Processed counts completed files, including this one.
	Processed int
	// Total is the number of discovered files.
	Total   int
	Outcome Outcome
}
