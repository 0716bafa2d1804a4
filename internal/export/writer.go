// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes decoded spectra as plain text: one two-column file
// per spectrum, or one consolidated table per source file.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/wdfconv/pkg/types"
)

const (
	filePerm = 0o644
	bufSize  = 64 * 1024

	// minIndexWidth is the minimum zero-padded width of spectrum indices in
	// per-spectrum file names.
	minIndexWidth = 4
)

// Writer persists Spectra to an ExportTarget. Existing files at the
// destination are replaced.
type Writer struct {
	txtDelim string
	csvComma rune
}

// NewWriter creates a Writer using the delimiters from cfg, which must
// already be normalized.
func NewWriter(cfg types.ConversionConfig) *Writer {
	w := &Writer{txtDelim: cfg.TxtDelimiter, csvComma: cfg.CSVComma()}
	if w.txtDelim == "" {
		w.txtDelim = types.DefaultTxtDelimiter
	}
	if w.csvComma == 0 {
		w.csvComma = ','
	}
	return w
}

// Write stores s at target and returns the paths written. I/O failures are
// returned as *types.WriteError.
func (w *Writer) Write(s types.Spectra, target types.ExportTarget) ([]string, error) {
	switch target.Kind {
	case types.TargetConsolidatedFile:
		if err := w.writeTable(s, target.Path); err != nil {
			return nil, err
		}
		return []string{target.Path}, nil
	case types.TargetPerSpectrumDir:
		return w.writeRecords(s, target)
	default:
		return nil, &types.WriteError{Path: target.Path, Err: fmt.Errorf("unknown target kind %q", target.Kind)}
	}
}

// writeTable writes the axis as the first row and one row per spectrum.
func (w *Writer) writeTable(s types.Spectra, path string) error {
	return writeAtomic(path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		cw.Comma = w.csvComma

		row := make([]string, s.Points())
		if err := cw.Write(formatRow(row, s.Axis)); err != nil {
			return err
		}
		for _, rec := range s.Intensities {
			if err := cw.Write(formatRow(row, rec)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// writeRecords writes one axis/intensity file per spectrum inside the
// target folder.
func (w *Writer) writeRecords(s types.Spectra, target types.ExportTarget) ([]string, error) {
	paths := make([]string, 0, s.Count())
	for i, rec := range s.Intensities {
		path := filepath.Join(target.Path, SpectrumFileName(target.Basename, i, s.Count()))
		err := writeAtomic(path, func(out io.Writer) error {
			for j, x := range s.Axis {
				if _, err := io.WriteString(out, FormatValue(x)+w.txtDelim+FormatValue(rec[j])+"\n"); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SpectrumFileName returns the name of spectrum i of count for basename,
// e.g. "sample_0007.txt". The index is zero-padded to the width of the
// largest index (at least four digits) so names sort in spectrum order.
func SpectrumFileName(basename string, i, count int) string {
	width := len(strconv.Itoa(count - 1))
	if width < minIndexWidth {
		width = minIndexWidth
	}
	return fmt.Sprintf("%s_%0*d.txt", basename, width, i)
}

// FormatValue renders v with the fewest digits that parse back to exactly
// v, so no precision is lost (100 renders as "100", 0.1 as "0.1").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatRow(row []string, vals []float64) []string {
	row = row[:len(vals)]
	for i, v := range vals {
		row[i] = FormatValue(v)
	}
	return row
}

// writeAtomic writes through a temp file in the destination directory and
// renames it over path, so readers never see a partial file.
func writeAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}

	bw := bufio.NewWriterSize(tmp, bufSize)
	if err := fill(bw); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	return nil
}
