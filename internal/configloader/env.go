package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/htmlbundle/pkg/config"
)

// envVarPrefix is the prefix for all htmlbundle environment variables.
const envVarPrefix = "HTMLBUNDLE_"

// envVar describes one supported environment variable.
type envVar struct {
	field       string
	description string
	apply       func(cfg *config.Config, value string) error
}

// envVars maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = map[string]envVar{
	"BASE": {
		field: "base", description: "Directory for root-relative references",
		apply: func(cfg *config.Config, v string) error { cfg.Base = v; return nil },
	},
	"NEW_LINE": {
		field: "new_line", description: "Bundle separator: lf, crlf, cr, os, or a literal string",
		apply: func(cfg *config.Config, v string) error { cfg.NewLine = v; return nil },
	},
	"OUT_DIR": {
		field: "out_dir", description: "Output directory (\".\" rewrites in place)",
		apply: func(cfg *config.Config, v string) error { cfg.OutDir = v; return nil },
	},
	"EXTENSIONS": {
		field: "extensions", description: "Comma-separated document extensions",
		apply: func(cfg *config.Config, v string) error { cfg.Extensions = parseSliceValue(v); return nil },
	},
	"IGNORE": {
		field: "ignore", description: "Comma-separated list of ignore patterns",
		apply: func(cfg *config.Config, v string) error { cfg.Ignore = parseSliceValue(v); return nil },
	},
	"TRANSFORMS": {
		field: "transforms", description: "Comma-separated per-source transforms",
		apply: func(cfg *config.Config, v string) error { cfg.Transforms = parseSliceValue(v); return nil },
	},
	"SOURCE_ENCODING": {
		field: "source_encoding", description: "Charset every source is decoded from",
		apply: func(cfg *config.Config, v string) error { cfg.SourceEncoding = v; return nil },
	},
	"CHECK_TYPES": {
		field: "check_types", description: "Warn on sources that do not fit their bundle type",
		apply: boolSetter("CHECK_TYPES", func(cfg *config.Config, b bool) { cfg.CheckTypes = b }),
	},
	"DRY_RUN": {
		field: "dry_run", description: "Dry-run mode: true or false",
		apply: boolSetter("DRY_RUN", func(cfg *config.Config, b bool) { cfg.DryRun = b }),
	},
	"JOBS": {
		field: "jobs", description: "Number of parallel workers (0 = auto)",
		apply: func(cfg *config.Config, v string) error {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer for %sJOBS: %q", envVarPrefix, v)
			}
			cfg.Jobs = i
			return nil
		},
	},
	"FORMAT": {
		field: "format", description: "Output format: text, table, json, diff, or summary",
		apply: func(cfg *config.Config, v string) error { cfg.Format = config.OutputFormat(v); return nil },
	},
	"BACKUPS_ENABLED": {
		field: "backups.enabled", description: "Back up outputs before overwriting: true or false",
		apply: boolSetter("BACKUPS_ENABLED", func(cfg *config.Config, b bool) { cfg.Backups.Enabled = b }),
	},
	"BACKUPS_MODE": {
		field: "backups.mode", description: "Backup mode: sidecar or none",
		apply: func(cfg *config.Config, v string) error { cfg.Backups.Mode = v; return nil },
	},
	"NO_BACKUPS": {
		field: "no_backups", description: "Disable backups: true or false",
		apply: boolSetter("NO_BACKUPS", func(cfg *config.Config, b bool) { cfg.NoBackups = b }),
	},
}

func boolSetter(suffix string, set func(*config.Config, bool)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s%s: %q (expected true/false/1/0)", envVarPrefix, suffix, value)
		}
		set(cfg, b)
		return nil
	}
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with HTMLBUNDLE_ (e.g., HTMLBUNDLE_OUT_DIR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		value := os.Getenv(envVarPrefix + suffix)
		if value == "" {
			continue
		}
		if err := envVars[suffix].apply(cfg, value); err != nil {
			return err
		}
	}

	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, v := range envVars {
		if v.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envVars))
	for suffix, v := range envVars {
		out[envVarPrefix+suffix] = v.description
	}
	return out
}

func sortedEnvSuffixes() []string {
	suffixes := make([]string, 0, len(envVars))
	for suffix := range envVars {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}
