package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/fsutil"
	"github.com/yaklabco/htmlbundle/pkg/langdetect"
)

// ErrOutsideWorkingDir is returned for documents that are not beneath the processing root.
var ErrOutsideWorkingDir = errors.New("document is outside the working directory")

// Runner builds documents with a Bundler and commits the results through an Output.
type Runner struct {
	// Bundler turns one document into its artifacts.
	Bundler *bundle.Bundler

	// Output commits artifacts. Its claims, like the Bundler's source cache, are
	// reset at the start of every Run.
	Output *Output

	// CheckTypes warns about sources whose language does not fit their bundle.
	// Requires the Bundler to be configured with a classifier.
	CheckTypes bool
}

// New creates a new Runner.
func New(bundler *bundle.Bundler, output *Output) *Runner {
	return &Runner{Bundler: bundler, Output: output}
}

// Run discovers documents under opts.Paths and builds them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// A worker takes its next document only after every bundle of the current one
// has finished, so at most opts.Jobs documents are in flight.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	r.Output.reset()
	r.Bundler.Purge()

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
	}
	result.Stats.DocumentsDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workDir, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order; collect by path and emit in discovery order.
	outcomes := make(map[string]FileOutcome, len(files))

	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker builds documents from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, workDir string, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.BuildFile(ctx, workDir, path)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// BuildFile builds and commits one document. path is absolute; workDir is the
// processing root the Bundler was configured with.
func (r *Runner) BuildFile(ctx context.Context, workDir, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	relPath, err := filepath.Rel(workDir, path)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		outcome.Error = fmt.Errorf("%w: %s", ErrOutsideWorkingDir, path)
		return outcome
	}
	outcome.RelPath = filepath.ToSlash(relPath)

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Original = content

	// Nothing is committed until every bundle of the document succeeded.
	artifacts, err := r.Bundler.ProcessAll(ctx, bundle.Document{RelPath: outcome.RelPath, Content: content})
	if err != nil {
		outcome.Error = fmt.Errorf("%s: %w", outcome.RelPath, err)
		return outcome
	}

	if r.CheckTypes {
		outcome.Warnings = typeWarnings(artifacts)
	}

	writes, skipped, err := r.Output.Commit(ctx, outcome.RelPath, artifacts, info)
	if err != nil {
		outcome.Error = fmt.Errorf("%s: %w", outcome.RelPath, err)
		return outcome
	}

	outcome.Artifacts = artifacts
	outcome.Writes = writes
	outcome.Skipped = skipped

	return outcome
}

func typeWarnings(artifacts []bundle.Artifact) []string {
	var warnings []string
	for _, artifact := range artifacts {
		if artifact.Kind != bundle.KindBundle {
			continue
		}
		for _, src := range artifact.Sources {
			if !langdetect.Compatible(artifact.Type, src.Language) {
				warnings = append(warnings, fmt.Sprintf(
					"%s: source %s looks like %s, not %s", artifact.Path, src.Path, src.Language, artifact.Type))
			}
		}
	}
	return warnings
}
