// Package config defines core configuration types for htmlbundle.
// These types are pure data structures with no dependency on the loaders that fill them.
package config

import "runtime"

// NewLine names accepted for the bundle separator.
const (
	NewLineLF   = "lf"
	NewLineCRLF = "crlf"
	NewLineCR   = "cr"
	NewLineOS   = "os"

	// NewLineNone joins sources with no separator.
	NewLineNone = "none"
)

// BackupsConfig controls backup behavior when outputs overwrite existing files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies the output format for build reports.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// Config is the root configuration structure for htmlbundle.
type Config struct {
	// Base is the directory, relative to the processing root, that root-relative
	// source references ("/js/app.js") resolve against.
	Base string `yaml:"base"`

	// NewLine is the separator inserted between concatenated sources.
	// Accepts "lf", "crlf", "cr", "os", "none", or a literal string.
	NewLine string `yaml:"new_line"`

	// OutDir is where rewritten documents and bundles are written.
	// "." rewrites documents in place.
	OutDir string `yaml:"out_dir"`

	// Extensions lists document file extensions (with leading dot).
	Extensions []string `yaml:"extensions"`

	// Include contains glob patterns documents must match (empty = all).
	Include []string `yaml:"include"`

	// Ignore contains glob patterns for documents to skip.
	Ignore []string `yaml:"ignore"`

	// Transforms names the per-source stream transforms applied before concatenation.
	Transforms []string `yaml:"transforms"`

	// SourceEncoding, when set, decodes every source from this charset to UTF-8.
	SourceEncoding string `yaml:"source_encoding"`

	// CheckTypes warns when a source's detected language does not fit its bundle type.
	CheckTypes bool `yaml:"check_types"`

	// Backups configures backup behavior when overwriting outputs.
	Backups BackupsConfig `yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// DryRun computes every output without writing anything.
	DryRun bool `yaml:"-"`

	// Format specifies the report format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of documents processed in parallel.
	Jobs int `yaml:"-"`

	// Watch rebuilds whenever a file under the root changes.
	Watch bool `yaml:"-"`

	// NoBackups disables backup creation.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Base:       ".",
		NewLine:    NewLineOS,
		OutDir:     "dist",
		Extensions: DefaultExtensions(),
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use NumCPU
	}
}

// DefaultExtensions returns the default set of HTML document extensions.
func DefaultExtensions() []string {
	return []string{".html", ".htm"}
}

// ResolveNewLine converts a NewLine setting into the literal separator.
// Names are matched case-sensitively; anything else is returned as-is.
func ResolveNewLine(value string) string {
	switch value {
	case NewLineLF:
		return "\n"
	case NewLineCRLF:
		return "\r\n"
	case NewLineCR:
		return "\r"
	case NewLineNone:
		return ""
	case NewLineOS, "":
		return PlatformNewLine()
	default:
		return value
	}
}

// PlatformNewLine returns the line terminator of the host platform.
func PlatformNewLine() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// BackupsEnabled reports whether outputs should be backed up before overwriting.
func (c *Config) BackupsEnabled() bool {
	return c.Backups.Enabled && !c.NoBackups && c.Backups.Mode != "none"
}
