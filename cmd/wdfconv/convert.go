// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wdfconv/internal/container"
	"github.com/pdiddy/wdfconv/internal/convert"
	"github.com/pdiddy/wdfconv/internal/decode"
	"github.com/pdiddy/wdfconv/internal/ledger"
	"github.com/pdiddy/wdfconv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <importPath> <exportPath>",
	Short: "Convert every WDF file under a directory to TXT or CSV",
	Long: `Convert finds WDF files under importPath and writes them to exportPath.

With --format txt (the default) each source file becomes a folder holding one
two-column file per spectrum. With --format csv each source file becomes one
table: the spectral axis on the first row and one row per spectrum.

--recursive searches subdirectories at any depth; --mirror reproduces the
import directory layout under exportPath instead of writing everything flat.
Existing outputs are overwritten.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return types.Argumentf("convert requires <importPath> and <exportPath>, got %d argument(s)", len(args))
		}
		return nil
	},
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := configFrom(viper.GetViper())
	importRoot, exportRoot := args[0], args[1]

	if err := cfg.Conversion.Normalize(); err != nil {
		return err
	}
	if err := cfg.Decoder.Normalize(); err != nil {
		return err
	}
	if err := convert.ValidateRoots(importRoot, exportRoot); err != nil {
		return err
	}

	rt, err := container.Detect(cfg.Decoder.Backend)
	if err != nil {
		return &types.PreconditionError{Msg: "wdf decoder unavailable", Err: err}
	}
	dec, err := decode.NewStream(rt, cfg.Decoder.Reader)
	if err != nil {
		return &types.PreconditionError{Msg: "wdf decoder unavailable", Err: err}
	}

	var store *ledger.Store
	if cfg.LedgerPath != "" {
		store, err = ledger.NewStore(cfg.LedgerPath)
		if err != nil {
			return &types.PreconditionError{Msg: "cannot open ledger " + cfg.LedgerPath, Err: err}
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := convert.Options{
		ImportRoot: importRoot,
		ExportRoot: exportRoot,
		Config:     cfg.Conversion,
	}
	if !cfg.Conversion.Verbose {
		opts.Progress = newProgressPrinter(os.Stderr, isTerminal(os.Stderr))
	}

	report, runErr := convert.Run(ctx, dec, opts, os.Stdout)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if report.Total == 0 {
		fmt.Fprintf(os.Stdout, "No %s files found in %s\n", cfg.Conversion.Extension, importRoot)
	}
	convert.PrintSummary(os.Stdout, report, cfg.Conversion.Verbose)

	if cfg.ReportPath != "" {
		if err := convert.WriteReport(cfg.ReportPath, report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: report write failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "Report written to %s\n", cfg.ReportPath)
		}
	}
	if store != nil {
		// The signal context may already be cancelled; the run is still recorded.
		if id, err := store.Record(context.Background(), report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ledger write failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "Recorded as run %d in %s\n", id, cfg.LedgerPath)
		}
	}

	if runErr != nil {
		return fmt.Errorf("conversion interrupted: %w", runErr)
	}
	return nil
}

func init() {
	convertCmd.Flags().StringP("format", "f", string(types.FormatTXT), "export format: txt or csv")
	convertCmd.Flags().BoolP("mirror", "m", false, "reproduce the import directory layout under the export path")
	convertCmd.Flags().BoolP("recursive", "r", false, "search subdirectories at any depth")
	convertCmd.Flags().BoolP("verbose", "v", false, "print per-file destinations and outcomes")
	convertCmd.Flags().String("extension", types.DefaultExtension, "source file extension (case-insensitive)")
	convertCmd.Flags().String("txt-delimiter", types.DefaultTxtDelimiter, "column separator in per-spectrum TXT files")
	convertCmd.Flags().String("csv-delimiter", types.DefaultCSVDelimiter, "column separator in CSV tables")
	convertCmd.Flags().String("decoder", string(types.BackendAuto), "reader runtime: auto, docker, podman, or host")
	convertCmd.Flags().String("reader", "", "reader image, or executable for --decoder host (default wdfreader:latest / wdfreader)")
	convertCmd.Flags().String("report", "", "write a YAML run report to this file")

	bindFlags(convertCmd.Flags(), map[string]string{
		"format":        "format",
		"mirror":        "mirror",
		"recursive":     "recursive",
		"verbose":       "verbose",
		"extension":     "extension",
		"txt-delimiter": "txt_delimiter",
		"csv-delimiter": "csv_delimiter",
		"decoder":       "decoder.backend",
		"reader":        "decoder.reader",
		"report":        "report",
	})

	rootCmd.AddCommand(convertCmd)
}
