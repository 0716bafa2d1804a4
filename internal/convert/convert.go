// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs batch conversions: it discovers source files,
// resolves their destinations, decodes them, writes the exports, and
// collects per-file outcomes into a BatchReport. A failure in one file is
// recorded and never stops the batch.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/wdfconv/internal/decode"
	"github.com/pdiddy/wdfconv/internal/export"
	"github.com/pdiddy/wdfconv/internal/plan"
	"github.com/pdiddy/wdfconv/pkg/types"
)

// Reasons attached to outcomes that do not come from a DecodeError.
const (
	ReasonNoSpectra = "no spectra"
	ReasonPath      = "cannot create output directory"
	ReasonWrite     = "cannot write output"
	ReasonDecode    = "decode failed"
)

// Options configures a batch run.
type Options struct {
	ImportRoot string
	ExportRoot string
	Config     types.ConversionConfig

	// Progress, if set, is called after each file completes, whatever its
	// outcome.
	Progress func(types.Progress)
}

// ValidateRoots checks the batch preconditions: the import root must be an
// existing directory and the export root must exist or be creatable. It
// returns a *types.PreconditionError on failure.
func ValidateRoots(importRoot, exportRoot string) error {
	if importRoot == "" {
		return &types.PreconditionError{Msg: "import directory not set"}
	}
	info, err := os.Stat(importRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &types.PreconditionError{Msg: "import directory does not exist: " + importRoot}
		}
		return &types.PreconditionError{Msg: "cannot access import directory " + importRoot, Err: err}
	}
	if !info.IsDir() {
		return &types.PreconditionError{Msg: "import path is not a directory: " + importRoot}
	}

	if exportRoot == "" {
		return &types.PreconditionError{Msg: "export directory not set"}
	}
	if err := os.MkdirAll(exportRoot, 0o755); err != nil {
		return &types.PreconditionError{Msg: "cannot create export directory " + exportRoot, Err: err}
	}
	return nil
}

// Run converts every source file under opts.ImportRoot. Per-file failures
// are recorded in the report; Run returns an error only for invalid
// configuration (*types.ArgumentError), failed preconditions
// (*types.PreconditionError), or cancellation (ctx.Err(), with the partial
// report). ctx is checked once before each file. Status lines go to w:
// warnings always, per-file lines when verbose.
func Run(ctx context.Context, dec decode.Decoder, opts Options, w io.Writer) (types.BatchReport, error) {
	cfg := opts.Config
	if err := cfg.Normalize(); err != nil {
		return types.BatchReport{}, err
	}
	if err := ValidateRoots(opts.ImportRoot, opts.ExportRoot); err != nil {
		return types.BatchReport{}, err
	}

	report := types.BatchReport{
		ImportRoot: absPath(opts.ImportRoot),
		ExportRoot: absPath(opts.ExportRoot),
		Format:     cfg.Format,
		StartedAt:  time.Now().UTC(),
	}

	if cfg.Mirror {
		if err := plan.MirrorTree(report.ImportRoot, report.ExportRoot); err != nil {
			fmt.Fprintf(w, "warning: could not fully mirror directory tree: %v\n", err)
		}
	}

	files, err := Discover(report.ImportRoot, DiscoverOptions{
		Extension: cfg.Extension,
		Recursive: cfg.Recursive,
		Exclude:   report.ExportRoot,
		OnSkip: func(path string, err error) {
			fmt.Fprintf(w, "warning: skipping %s: %v\n", path, err)
		},
	})
	if err != nil {
		return types.BatchReport{}, &types.PreconditionError{Msg: "discovering source files", Err: err}
	}
	report.Total = len(files)

	b := &batch{
		dec:     dec,
		writer:  export.NewWriter(cfg),
		cfg:     cfg,
		w:       w,
		claimed: make(map[string]string, len(files)),
	}

	for i, src := range files {
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		if cfg.Verbose {
			fmt.Fprintf(w, "converting [%d/%d]: %s as %s\n", i+1, len(files), filepath.Base(src.Path), cfg.Format)
		}
		outcome := b.convert(report.ImportRoot, report.ExportRoot, src)
		report.Record(outcome)
		if cfg.Verbose {
			logOutcome(w, outcome)
		}
		if opts.Progress != nil {
			opts.Progress(types.Progress{Processed: i + 1, Total: len(files), Outcome: outcome})
		}
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

// batch carries per-run state shared by the files of one run.
type batch struct {
	dec    decode.Decoder
	writer *export.Writer
	cfg    types.ConversionConfig
	w      io.Writer

	// claimed maps each target written in this run to its source, to warn
	// when two sources land on the same destination.
	claimed map[string]string
}

// convert runs resolve → decode → write for one file and turns any error
// into a failed outcome.
func (b *batch) convert(importRoot, exportRoot string, src types.SourceFile) types.Outcome {
	out := types.Outcome{Source: src.Path}

	target, err := plan.Resolve(importRoot, exportRoot, src, b.cfg.Mirror, b.cfg.Format)
	if err != nil {
		return failed(out, err)
	}
	out.Target = target.Path

	if prev, ok := b.claimed[target.Path]; ok {
		fmt.Fprintf(b.w, "warning: %s overwrites output of %s at %s\n", src.Path, prev, target.Path)
	}
	b.claimed[target.Path] = src.Path

	spectra, err := b.dec.Decode(src.Path)
	if err == nil {
		if verr := spectra.Validate(); verr != nil {
			err = &types.DecodeError{Path: src.Path, Reason: decode.ReasonInconsistent, Err: verr}
		}
	}
	if err != nil {
		return failed(out, err)
	}

	// A table with only the axis row is still a valid csv export; txt has
	// nothing to write.
	if spectra.Count() == 0 && b.cfg.Format == types.FormatTXT {
		out.Status = types.OutcomeSkipped
		out.Reason = ReasonNoSpectra
		return out
	}

	if _, err := b.writer.Write(spectra, target); err != nil {
		return failed(out, err)
	}

	out.Status = types.OutcomeSuccess
	out.Spectra = spectra.Count()
	return out
}

// failed records err on out with a reason shared by similar failures.
func failed(out types.Outcome, err error) types.Outcome {
	out.Status = types.OutcomeFailed
	out.Err = err
	out.Detail = err.Error()

	var (
		de *types.DecodeError
		pe *types.PathError
		we *types.WriteError
	)
	switch {
	case errors.As(err, &de):
		out.Reason = de.Reason
	case errors.As(err, &pe):
		out.Reason = ReasonPath
	case errors.As(err, &we):
		out.Reason = ReasonWrite
	default:
		out.Reason = ReasonDecode
	}
	return out
}

func logOutcome(w io.Writer, o types.Outcome) {
	switch o.Status {
	case types.OutcomeSuccess:
		fmt.Fprintf(w, "converted: %s -> %s (%d spectra)\n", filepath.Base(o.Source), o.Target, o.Spectra)
	case types.OutcomeSkipped:
		fmt.Fprintf(w, "skipped:   %s%s (%s)\n", filepath.Base(o.Source), arrow(o.Target), o.Reason)
	case types.OutcomeFailed:
		fmt.Fprintf(w, "failed:    %s%s (%s)\n", filepath.Base(o.Source), arrow(o.Target), o.Detail)
	}
}

// arrow renders " -> target", or nothing when no target was resolved.
func arrow(target string) string {
	if target == "" {
		return ""
	}
	return " -> " + target
}

// PrintSummary writes the end-of-run counts. When verbose, failed files
// are listed grouped by reason.
func PrintSummary(w io.Writer, r types.BatchReport, verbose bool) {
	if r.Cancelled {
		fmt.Fprintf(w, "\nInterrupted after %d of %d files\n", r.Processed(), r.Total)
	}
	fmt.Fprintf(w, "\nCompleted: %d succeeded, %d skipped, %d failed (out of %d)\n",
		r.Succeeded, r.Skipped, r.Failed, r.Total)

	if !verbose || !r.HasFailures() {
		return
	}
	fmt.Fprintln(w, "Failures grouped by error:")
	for _, g := range r.FailuresByReason() {
		fmt.Fprintf(w, "- %s (%d):\n", g.Reason, len(g.Files))
		for _, f := range g.Files {
			fmt.Fprintf(w, "    - %s\n", f)
		}
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
