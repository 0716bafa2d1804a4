// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wdfconv CLI, which converts
// directories of WDF spectroscopy files to TXT or CSV.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/wdfconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitArgument     = 2
	exitPrecondition = 3
)

// rootCmd is the base command for the wdfconv CLI.
var rootCmd = &cobra.Command{
	Use:   "wdfconv",
	Short: "Batch-convert WDF spectroscopy files to TXT or CSV",
	Long: `wdfconv walks a directory of WDF spectroscopy files and writes each one
out as plain text: one two-column TXT file per spectrum, or one CSV table per
source file. A file that cannot be decoded or written is reported and the
batch moves on.

Settings come from flags, a wdfconv.yaml config file, or WDFCONV_* environment
variables, in that order of precedence.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wdfconv.yaml or ~/.config/wdfconv/wdfconv.yaml)")
	rootCmd.PersistentFlags().String("ledger", "", "SQLite database recording runs and outcomes")
	_ = viper.BindPFlag("ledger", rootCmd.PersistentFlags().Lookup("ledger"))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &types.ArgumentError{Msg: err.Error()}
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wdfconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wdfconv"))
		}
	}

	viper.SetEnvPrefix("WDFCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
	}
}

// configFrom assembles the typed configuration from v. Values are not
// normalized here; callers run Normalize so invalid settings surface as
// argument errors.
func configFrom(v *viper.Viper) types.Config {
	return types.Config{
		Conversion: types.ConversionConfig{
			Format:       types.ExportFormat(v.GetString("format")),
			Mirror:       v.GetBool("mirror"),
			Recursive:    v.GetBool("recursive"),
			Verbose:      v.GetBool("verbose"),
			Extension:    v.GetString("extension"),
			TxtDelimiter: v.GetString("txt_delimiter"),
			CSVDelimiter: v.GetString("csv_delimiter"),
		},
		Decoder: types.DecoderConfig{
			Backend: types.DecoderBackend(v.GetString("decoder.backend")),
			Reader:  v.GetString("decoder.reader"),
		},
		ReportPath: v.GetString("report"),
		LedgerPath: v.GetString("ledger"),
	}
}

// bindFlags binds each named flag to the viper key of the same name, with
// flag names using dashes where keys use dots or underscores.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		ae *types.ArgumentError
		pe *types.PreconditionError
	)
	switch {
	case errors.As(err, &ae):
		return exitArgument
	case errors.As(err, &pe):
		return exitPrecondition
	default:
		return exitFailure
	}
}

func main() {
	err := rootCmd.Execute()
	os.Exit(exitCode(err))
}
