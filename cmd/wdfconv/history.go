// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wdfconv/internal/ledger"
	"github.com/pdiddy/wdfconv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History reads the run ledger written by convert --ledger. Without --run it
lists the most recent runs; with --run it lists every file of that run and its
outcome.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("ledger")
	if path == "" {
		return types.Argumentf("no ledger configured: pass --ledger or set ledger in wdfconv.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		return &types.PreconditionError{Msg: "cannot open ledger " + path, Err: err}
	}

	store, err := ledger.NewStore(path)
	if err != nil {
		return &types.PreconditionError{Msg: "cannot open ledger " + path, Err: err}
	}
	defer store.Close()

	ctx := context.Background()
	runID, _ := cmd.Flags().GetInt64("run")
	if runID > 0 {
		outcomes, err := store.Outcomes(ctx, runID)
		if err != nil {
			return err
		}
		printOutcomes(os.Stdout, outcomes)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	printRuns(os.Stdout, runs)
	return nil
}

func printRuns(w io.Writer, runs []ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-6s  %5s  %5s  %5s  %5s  %s\n",
		"Run", "Started", "Format", "Total", "OK", "Skip", "Fail", "Import")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range runs {
		started := "-"
		if !r.StartedAt.IsZero() {
			started = r.StartedAt.Local().Format(time.DateTime)
		}
		importRoot := r.ImportRoot
		if r.Cancelled {
			importRoot += " (interrupted)"
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-6s  %5d  %5d  %5d  %5d  %s\n",
			r.ID, started, r.Format, r.Total, r.Succeeded, r.Skipped, r.Failed, importRoot)
	}
}

func printOutcomes(w io.Writer, outcomes []types.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No files in this run.")
		return
	}

	for _, o := range outcomes {
		name := filepath.Base(o.Source)
		switch o.Status {
		case types.OutcomeSuccess:
			fmt.Fprintf(w, "%-8s  %s -> %s (%d spectra)\n", o.Status, name, o.Target, o.Spectra)
		default:
			fmt.Fprintf(w, "%-8s  %s (%s)\n", o.Status, name, o.Reason)
		}
	}
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "show the per-file outcomes of this run")

	rootCmd.AddCommand(historyCmd)
}
