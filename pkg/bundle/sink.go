package bundle

import (
	"context"
	"sync"
)

// Kind distinguishes the artifacts a document produces.
type Kind int

const (
	// KindDocument is the rewritten HTML document.
	KindDocument Kind = iota + 1

	// KindBundle is a concatenated asset.
	KindBundle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindBundle:
		return "bundle"
	default:
		return "unknown"
	}
}

// SourceInfo describes one source that went into a bundle.
type SourceInfo struct {
	// Path is relative to the processing root.
	Path ResolvedPath

	// Size is the number of bytes contributed after transforms.
	Size int64

	// Language is the classifier's verdict, empty when no classifier is configured.
	Language string
}

// Artifact is one output of processing a document.
type Artifact struct {
	Kind Kind

	// Path is relative to the processing root, slash-separated.
	Path string

	// Type is the block type of a bundle ("js", "css", ...). Empty for documents.
	Type string

	Content []byte

	// Sources lists the inputs of a bundle in concatenation order.
	Sources []SourceInfo
}

// Sink receives artifacts. Bundles of one document are emitted concurrently,
// so implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, artifact Artifact) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, artifact Artifact) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, artifact Artifact) error {
	return f(ctx, artifact)
}

// SliceSink collects artifacts in emission order.
type SliceSink struct {
	mu        sync.Mutex
	artifacts []Artifact
}

// Emit appends the artifact.
func (s *SliceSink) Emit(_ context.Context, artifact Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts = append(s.artifacts, artifact)
	return nil
}

// Artifacts returns a copy of the collected artifacts.
func (s *SliceSink) Artifacts() []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}
