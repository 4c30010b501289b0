// Package runner builds every HTML document under a set of paths.
// It discovers documents, runs the bundler over them with a bounded worker pool,
// and commits each document's outputs only when the whole document succeeded.
package runner

import "github.com/yaklabco/htmlbundle/pkg/config"

// Options controls a build run.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the processing root. Relative Paths resolve against it and
	// document paths are reported relative to it.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered HTML documents. Defaults to config.DefaultExtensions().
	Extensions []string

	// IncludeGlobs are additional glob patterns to include, relative to WorkingDir.
	// Empty means "include everything that matches Extensions".
	IncludeGlobs []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	// These merge ignore rules from config and CLI (e.g. --ignore).
	ExcludeGlobs []string

	// OutDir is skipped during discovery so generated documents are never rebuilt.
	// Ignored when it is the working directory itself.
	OutDir string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Config is the resolved configuration for this run.
	Config *config.Config
}

// OptionsFromConfig fills the discovery and scheduling options from cfg.
func OptionsFromConfig(cfg *config.Config, workDir string, paths []string) Options {
	return Options{
		Paths:        paths,
		WorkingDir:   workDir,
		Extensions:   cfg.Extensions,
		IncludeGlobs: cfg.Include,
		ExcludeGlobs: cfg.Ignore,
		OutDir:       cfg.OutDir,
		Jobs:         cfg.Jobs,
		Config:       cfg,
	}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return config.DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
