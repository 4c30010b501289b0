package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// jsonVersion is the schema version of JSONOutput.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version   string         `json:"version"`
	DryRun    bool           `json:"dryRun"`
	Documents []JSONDocument `json:"documents"`
	Errors    []string       `json:"errors,omitempty"`
	Summary   JSONSummary    `json:"summary"`
}

// JSONDocument represents one processed document.
type JSONDocument struct {
	Path      string           `json:"path"`
	Rewritten bool             `json:"rewritten"`
	Skipped   bool             `json:"skipped,omitempty"`
	Outputs   []JSONOutputFile `json:"outputs"`
	Warnings  []string         `json:"warnings,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// JSONOutputFile represents one written (or would-be written) file.
type JSONOutputFile struct {
	Path     string       `json:"path"`
	Kind     string       `json:"kind"`
	Type     string       `json:"type,omitempty"`
	Size     int          `json:"size"`
	Changed  bool         `json:"changed"`
	Shared   bool         `json:"shared,omitempty"`
	BackedUp bool         `json:"backedUp,omitempty"`
	Sources  []JSONSource `json:"sources,omitempty"`
}

// JSONSource represents one input of a bundle.
type JSONSource struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Language string `json:"language,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	DocumentsDiscovered int   `json:"documentsDiscovered"`
	DocumentsProcessed  int   `json:"documentsProcessed"`
	DocumentsRewritten  int   `json:"documentsRewritten"`
	DocumentsSkipped    int   `json:"documentsSkipped"`
	DocumentsErrored    int   `json:"documentsErrored"`
	BundlesBuilt        int   `json:"bundlesBuilt"`
	BundlesDeduplicated int   `json:"bundlesDeduplicated"`
	FilesWritten        int   `json:"filesWritten"`
	BytesWritten        int64 `json:"bytesWritten"`
	Warnings            int   `json:"warnings"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return problems(result), nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version:   jsonVersion,
		DryRun:    r.opts.DryRun,
		Documents: make([]JSONDocument, 0),
	}

	if result == nil {
		return output
	}

	output.Documents = make([]JSONDocument, 0, len(result.Files))
	for i := range result.Files {
		output.Documents = append(output.Documents, buildDocument(&result.Files[i]))
	}

	for _, runErr := range result.Errors {
		output.Errors = append(output.Errors, runErr.Error())
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		DocumentsDiscovered: stats.DocumentsDiscovered,
		DocumentsProcessed:  stats.DocumentsProcessed,
		DocumentsRewritten:  stats.DocumentsRewritten,
		DocumentsSkipped:    stats.DocumentsSkipped,
		DocumentsErrored:    stats.DocumentsErrored,
		BundlesBuilt:        stats.BundlesBuilt,
		BundlesDeduplicated: stats.BundlesDeduplicated,
		FilesWritten:        stats.FilesWritten,
		BytesWritten:        stats.BytesWritten,
		Warnings:            stats.Warnings,
	}

	return output
}

func buildDocument(file *runner.FileOutcome) JSONDocument {
	doc := JSONDocument{
		Path:     file.RelPath,
		Skipped:  file.Skipped,
		Outputs:  make([]JSONOutputFile, 0, len(file.Artifacts)),
		Warnings: file.Warnings,
	}
	if doc.Path == "" {
		doc.Path = file.Path
	}

	if file.Error != nil {
		doc.Error = file.Error.Error()
		return doc
	}

	if rewritten := file.Document(); rewritten != nil {
		doc.Rewritten = string(rewritten.Content) != string(file.Original)
	}

	for idx, artifact := range file.Artifacts {
		out := JSONOutputFile{
			Path: artifact.Path,
			Kind: artifact.Kind.String(),
			Type: artifact.Type,
			Size: len(artifact.Content),
		}
		if idx < len(file.Writes) {
			write := file.Writes[idx]
			out.Changed = write.Changed
			out.Shared = write.Deduplicated
			out.BackedUp = write.BackedUp
		}
		for _, src := range artifact.Sources {
			out.Sources = append(out.Sources, JSONSource{
				Path:     string(src.Path),
				Size:     src.Size,
				Language: src.Language,
			})
		}
		doc.Outputs = append(doc.Outputs, out)
	}

	return doc
}
