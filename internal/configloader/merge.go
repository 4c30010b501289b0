package configloader

import (
	"slices"

	"github.com/yaklabco/htmlbundle/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Booleans: only true propagates, so a lower layer cannot be switched off
//     by a higher layer that leaves the key unset
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Base != "" {
		result.Base = override.Base
	}
	if override.NewLine != "" {
		result.NewLine = override.NewLine
	}
	if override.OutDir != "" {
		result.OutDir = override.OutDir
	}
	if override.SourceEncoding != "" {
		result.SourceEncoding = override.SourceEncoding
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.CheckTypes {
		result.CheckTypes = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.Watch {
		result.Watch = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Include != nil {
		result.Include = slices.Clone(override.Include)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}
	if override.Transforms != nil {
		result.Transforms = slices.Clone(override.Transforms)
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
