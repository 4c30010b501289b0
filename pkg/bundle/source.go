package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/yaklabco/htmlbundle/pkg/fsutil"
)

// ErrSourceRead is wrapped by every SourceReadError.
var ErrSourceRead = errors.New("source read failed")

// SourceReadError reports a bundle source that could not be read.
type SourceReadError struct {
	// Bundle is the output path of the bundle being built.
	Bundle string

	// Path is the source that failed, relative to the processing root.
	Path ResolvedPath

	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("bundle %s: read source %s: %v", e.Bundle, e.Path, e.Err)
}

// Unwrap exposes both ErrSourceRead and the underlying cause to errors.Is.
func (e *SourceReadError) Unwrap() []error {
	return []error{ErrSourceRead, e.Err}
}

// Source is the transformed content of one bundle input.
type Source struct {
	Path    ResolvedPath
	Content []byte
}

// ReadSources reads paths from fsys in the given order, passing each stream
// through transform when it is non-nil. It stops at the first failure.
func ReadSources(ctx context.Context, fsys fs.FS, paths []ResolvedPath, transform Transform) ([]Source, error) {
	sources := make([]Source, 0, len(paths))

	for _, p := range paths {
		content, err := readSource(ctx, fsys, p, transform)
		if err != nil {
			return nil, &SourceReadError{Path: p, Err: err}
		}
		sources = append(sources, Source{Path: p, Content: content})
	}

	return sources, nil
}

func readSource(ctx context.Context, fsys fs.FS, p ResolvedPath, transform Transform) ([]byte, error) {
	var reader io.Reader

	if cache, ok := fsys.(*cachedFS); ok {
		raw, err := cache.readFile(ctx, string(p))
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		file, err := fsutil.OpenFS(ctx, fsys, string(p))
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	if transform != nil {
		reader = transform(reader)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}
