// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldWorkingDir = "working_dir"

	// Build fields.
	FieldDocument = "document"
	FieldBundle   = "bundle"
	FieldType     = "type"
	FieldSources  = "sources"
	FieldBytes    = "bytes"
	FieldOutDir   = "out_dir"
	FieldBase     = "base"
	FieldDryRun   = "dry_run"
	FieldJobs     = "jobs"
	FieldEvent    = "event"

	// Statistics fields.
	FieldDocumentsDiscovered = "documents_discovered"
	FieldDocumentsProcessed  = "documents_processed"
	FieldDocumentsErrored    = "documents_errored"
	FieldBundlesWritten      = "bundles_written"
	FieldElapsed             = "elapsed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
