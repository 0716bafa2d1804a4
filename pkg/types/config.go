package types

import (
	"strings"
	"unicode/utf8"
)

// ExportFormat selects the output encoding.
type ExportFormat string

const (
	// FormatTXT writes one two-column text file per spectrum.
	FormatTXT ExportFormat = "txt"
	// FormatCSV writes one consolidated table per source file.
	FormatCSV ExportFormat = "csv"
)

// ParseExportFormat normalizes s (case-insensitive) to an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTXT, FormatCSV:
		return f, nil
	case "":
		return FormatTXT, nil
	default:
		return "", Argumentf("unsupported format %q: use txt or csv", s)
	}
}

// DecoderBackend selects how the external WDF reader is run.
type DecoderBackend string

const (
	// BackendAuto uses docker when operational, otherwise podman.
	BackendAuto DecoderBackend = "auto"
	// BackendDocker runs the reader image with docker.
	BackendDocker DecoderBackend = "docker"
	// BackendPodman runs the reader image with podman.
	BackendPodman DecoderBackend = "podman"
	// BackendHost runs the reader as an executable found on PATH.
	BackendHost DecoderBackend = "host"
)

// Defaults applied by ConversionConfig.Normalize and DecoderConfig.Normalize.
const (
	DefaultExtension    = ".wdf"
	DefaultTxtDelimiter = "\t"
	DefaultCSVDelimiter = ","
	DefaultReaderImage  = "wdfreader:latest"
	DefaultReaderBinary = "wdfreader"
)

// numberChars are the characters a formatted value may contain, including
// "NaN" and "+Inf". Delimiters must avoid them.
const numberChars = "0123456789.+-eEInfNa"

// ConversionConfig holds settings for a batch conversion run.
type ConversionConfig struct {
	// Format selects txt (per-spectrum files, default) or csv (one table).
	Format ExportFormat `json:"format" yaml:"format"`

	// Mirror reproduces the import directory layout under the export root.
	Mirror bool `json:"mirror" yaml:"mirror"`

	// Recursive searches the import tree at any depth instead of only its
	// direct children.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Verbose prints per-file destinations and outcomes.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Extension is the recognized source extension including the dot
	// (default ".wdf"). Matching is case-insensitive.
	Extension string `json:"extension" yaml:"extension"`

	// TxtDelimiter separates the axis and intensity columns in
	// per-spectrum files (default tab).
	TxtDelimiter string `json:"txt_delimiter" yaml:"txt_delimiter"`

	// CSVDelimiter separates columns in consolidated tables (default ",").
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter"`
}

// Normalize fills defaults and validates the configuration.
func (c *ConversionConfig) Normalize() error {
	f, err := ParseExportFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = f

	ext := strings.TrimSpace(c.Extension)
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return Argumentf("invalid extension %q", c.Extension)
	}
	c.Extension = ext

	if c.TxtDelimiter == "" {
		c.TxtDelimiter = DefaultTxtDelimiter
	}
	if strings.ContainsAny(c.TxtDelimiter, "\r\n"+numberChars) {
		return Argumentf("txt delimiter must not contain line breaks or characters that appear in numbers, got %q", c.TxtDelimiter)
	}

	if c.CSVDelimiter == "" {
		c.CSVDelimiter = DefaultCSVDelimiter
	}
	r, size := utf8.DecodeRuneInString(c.CSVDelimiter)
	if size != len(c.CSVDelimiter) || r == utf8.RuneError || strings.ContainsRune("\"\r\n"+numberChars, r) {
		return Argumentf("csv delimiter must be one character that cannot appear in a number, got %q", c.CSVDelimiter)
	}
	return nil
}

// CSVComma returns the consolidated-table delimiter as a rune.
func (c ConversionConfig) CSVComma() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// DecoderConfig holds settings for the external WDF reader.
type DecoderConfig struct {
	// Backend selects the runtime: auto (docker, then podman), docker,
	// podman, or host (a local executable).
	Backend DecoderBackend `json:"backend" yaml:"backend"`

	// Reader is the container image, or the executable name for the host
	// backend.
	Reader string `json:"reader" yaml:"reader"`
}

// Normalize fills defaults and validates the configuration.
func (c *DecoderConfig) Normalize() error {
	b := DecoderBackend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	switch b {
	case "":
		b = BackendAuto
	case BackendAuto, BackendDocker, BackendPodman, BackendHost:
	default:
		return Argumentf("unsupported decoder backend %q: use auto, docker, podman, or host", c.Backend)
	}
	c.Backend = b

	if strings.TrimSpace(c.Reader) == "" {
		if b == BackendHost {
			c.Reader = DefaultReaderBinary
		} else {
			c.Reader = DefaultReaderImage
		}
	}
	return nil
}

// Config groups all settings read from flags, the config file, and the
// environment.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Decoder    DecoderConfig    `json:"decoder" yaml:"decoder"`

	// ReportPath, when set, receives the YAML run report.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty"`

	// LedgerPath, when set, is the SQLite database that records runs.
	LedgerPath string `json:"ledger,omitempty" yaml:"ledger,omitempty"`
}
