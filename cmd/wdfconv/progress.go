// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/wdfconv/pkg/types"
)

// newProgressPrinter returns a progress callback writing to w. On a terminal
// it redraws one status line in place; otherwise it prints nothing, so
// redirected output holds only the summary.
func newProgressPrinter(w io.Writer, tty bool) func(types.Progress) {
	if !tty {
		return nil
	}
	width := 0
	return func(p types.Progress) {
		line := fmt.Sprintf("[%d/%d] %s", p.Processed, p.Total, filepath.Base(p.Outcome.Source))
		pad := width - len(line)
		if pad < 0 {
			pad = 0
		}
		width = len(line)
		fmt.Fprintf(w, "\r%s%*s", line, pad, "")
		if p.Processed == p.Total {
			fmt.Fprintln(w)
		}
	}
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
