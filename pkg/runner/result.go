package runner

import "github.com/yaklabco/htmlbundle/pkg/bundle"

// Write records what happened to one artifact at commit time.
type Write struct {
	// Path is the destination relative to the output directory, slash-separated.
	Path string

	Kind bundle.Kind

	// Bytes is the artifact size.
	Bytes int

	// Changed is false when the destination already held identical content.
	Changed bool

	// Deduplicated is set when another document already produced this bundle.
	Deduplicated bool

	// BackedUp is set when the previous content was saved before overwriting.
	BackedUp bool
}

// FileOutcome is the result of building one document.
type FileOutcome struct {
	// Path is the absolute path of the document.
	Path string

	// RelPath is the document path relative to the processing root, slash-separated.
	RelPath string

	// Original is the document content before rewriting.
	Original []byte

	// Artifacts holds the document first, then its bundles sorted by path.
	// Empty if the document failed.
	Artifacts []bundle.Artifact

	// Writes describes the committed artifacts, in the same order as Artifacts.
	Writes []Write

	// Warnings are non-fatal findings, such as a stylesheet listed in a js block.
	Warnings []string

	// Skipped is set when the document changed on disk while it was being built
	// and was therefore not overwritten.
	Skipped bool

	// Error is set if the document could not be built or committed.
	Error error
}

// Document returns the rewritten document artifact, or nil.
func (o *FileOutcome) Document() *bundle.Artifact {
	for i := range o.Artifacts {
		if o.Artifacts[i].Kind == bundle.KindDocument {
			return &o.Artifacts[i]
		}
	}
	return nil
}

// Bundles returns the bundle artifacts.
func (o *FileOutcome) Bundles() []bundle.Artifact {
	var out []bundle.Artifact
	for _, artifact := range o.Artifacts {
		if artifact.Kind == bundle.KindBundle {
			out = append(out, artifact)
		}
	}
	return out
}

// Stats captures aggregate information about a run.
type Stats struct {
	// DocumentsDiscovered is the total number of documents found during discovery.
	DocumentsDiscovered int

	// DocumentsProcessed is the number of documents built successfully.
	DocumentsProcessed int

	// DocumentsRewritten is the number of documents whose markup changed.
	DocumentsRewritten int

	// DocumentsSkipped is the number of documents modified concurrently and left alone.
	DocumentsSkipped int

	// DocumentsErrored is the number of documents that failed.
	DocumentsErrored int

	// BundlesBuilt is the number of bundles produced, including deduplicated ones.
	BundlesBuilt int

	// BundlesDeduplicated is the number of bundles another document already produced.
	BundlesDeduplicated int

	// FilesWritten is the number of outputs whose content changed on disk.
	FilesWritten int

	// BytesWritten is the total size of the changed outputs.
	BytesWritten int64

	// Warnings is the total number of warnings.
	Warnings int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each document.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Errors contains any non-file-specific errors encountered.
	Errors []error
}

// HasFailures reports whether any document failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DocumentsErrored > 0 || len(r.Errors) > 0
}

// HasWarnings reports whether any warnings were raised.
func (r *Result) HasWarnings() bool {
	if r == nil {
		return false
	}
	return r.Stats.Warnings > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.Warnings += len(outcome.Warnings)

	if outcome.Error != nil {
		r.Stats.DocumentsErrored++
		return
	}

	r.Stats.DocumentsProcessed++

	if outcome.Skipped {
		r.Stats.DocumentsSkipped++
	}

	if doc := outcome.Document(); doc != nil && string(doc.Content) != string(outcome.Original) {
		r.Stats.DocumentsRewritten++
	}

	for _, write := range outcome.Writes {
		if write.Kind == bundle.KindBundle {
			r.Stats.BundlesBuilt++
			if write.Deduplicated {
				r.Stats.BundlesDeduplicated++
			}
		}
		if write.Changed {
			r.Stats.FilesWritten++
			r.Stats.BytesWritten += int64(write.Bytes)
		}
	}
}
