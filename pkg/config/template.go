package config

import (
	"bytes"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every key with its default value instead of a commented skeleton.
	Full bool
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate()
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Directory for root-relative references such as "/js/app.js"
base: .

# Where rewritten documents and bundles are written ("." rewrites in place)
out_dir: dist

# Separator between concatenated sources: lf, crlf, cr, os, none, or a literal string
# new_line: os

# Per-source transforms applied before concatenation
# transforms:
#   - strip-bom
#   - strip-cr

# Decode every source from this charset to UTF-8
# source_encoding: windows-1252

# Warn when a source does not look like its bundle type
# check_types: true

# Document patterns to skip (glob patterns)
# ignore:
#   - "node_modules/**"
#   - "vendor/**"
`)

	return buf.Bytes()
}

// generateFullTemplate renders the defaults as YAML.
func generateFullTemplate() ([]byte, error) {
	cfg := NewConfig()
	cfg.Ignore = []string{"node_modules/**", "vendor/**"}

	content, err := cfg.ToYAMLWithHeader(DefaultTemplateHeader())
	if err != nil {
		return nil, fmt.Errorf("render defaults: %w", err)
	}
	return content, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# htmlbundle configuration
# See: https://github.com/yaklabco/htmlbundle`
}
