// Package bundle turns HTML documents with build blocks into a rewritten
// document plus one concatenated asset per block.
//
// A Bundler parses a document with the blocks package, emits the rewritten
// document, then builds every bundle concurrently and emits each one to a Sink.
// Sources are read from an fs.FS rooted at the processing root.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/htmlbundle/pkg/blocks"
)

// ErrInvalidConfig is wrapped by every configuration error returned from New.
var ErrInvalidConfig = errors.New("invalid bundler configuration")

// Transform wraps one source stream. It is applied to each source of a bundle in turn.
type Transform func(r io.Reader) io.Reader

// TransformFactory returns the Transform for one bundle. It is called once per bundle.
type TransformFactory func() Transform

// Classifier reports the language of a source. Its result is recorded on SourceInfo.
type Classifier func(path string, content []byte) string

// Document is an input HTML file.
type Document struct {
	// RelPath is the slash-separated path relative to the processing root.
	RelPath string

	Content []byte
}

// Config configures a Bundler. Zero values select the documented defaults.
type Config struct {
	// Root is the processing root. Defaults to ".".
	Root string

	// Base is the directory, relative to Root, that root-relative references resolve
	// against. Defaults to Root itself.
	Base string

	// NewLine separates consecutive sources in a bundle. Nil selects the platform
	// line ending; an empty string joins sources with nothing between them.
	NewLine *string

	// Transform, when set, wraps every source stream.
	Transform TransformFactory

	// Classify, when set, labels each source with a language.
	Classify Classifier

	// FS is where sources are read from. Defaults to os.DirFS(Root).
	FS fs.FS

	// CacheEntries, when positive, keeps the raw bytes of that many recently read
	// sources so documents sharing a source read it once. See Purge.
	CacheEntries int
}

// Bundler processes documents. It holds no mutable state and is safe for concurrent use.
type Bundler struct {
	root      string
	base      string
	newLine   string
	transform TransformFactory
	classify  Classifier
	fsys      fs.FS
}

// New validates cfg and returns a Bundler.
func New(cfg Config) (*Bundler, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}

	fsys := cfg.FS
	if fsys == nil {
		stat, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: root %s: %w", ErrInvalidConfig, root, err)
		}
		if !stat.IsDir() {
			return nil, fmt.Errorf("%w: root %s is not a directory", ErrInvalidConfig, root)
		}
		fsys = os.DirFS(root)
	}

	base, err := normalizeBase(cfg.Base)
	if err != nil {
		return nil, err
	}

	stat, err := fs.Stat(fsys, base)
	if err != nil {
		return nil, fmt.Errorf("%w: base %s: %w", ErrInvalidConfig, base, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: base %s is not a directory", ErrInvalidConfig, base)
	}

	newLine := platformNewLine()
	if cfg.NewLine != nil {
		newLine = *cfg.NewLine
	}

	if cfg.CacheEntries > 0 {
		fsys, err = newCachedFS(fsys, cfg.CacheEntries)
		if err != nil {
			return nil, err
		}
	}

	return &Bundler{
		root:      root,
		base:      base,
		newLine:   newLine,
		transform: cfg.Transform,
		classify:  cfg.Classify,
		fsys:      fsys,
	}, nil
}

// normalizeBase converts a user-supplied base into a valid fs.FS path.
func normalizeBase(base string) (string, error) {
	if base == "" {
		return ".", nil
	}

	cleaned := path.Clean(filepath.ToSlash(base))
	if !fs.ValidPath(cleaned) {
		return "", fmt.Errorf("%w: base %q must be a relative path inside the root", ErrInvalidConfig, base)
	}
	return cleaned, nil
}

func platformNewLine() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Root returns the processing root.
func (b *Bundler) Root() string { return b.root }

// Base returns the normalized base directory.
func (b *Bundler) Base() string { return b.base }

// Purge drops cached sources so the next read sees the current files.
// It is a no-op without a cache.
func (b *Bundler) Purge() {
	if cache, ok := b.fsys.(*cachedFS); ok {
		cache.purge()
	}
}

// Process parses doc, emits the rewritten document, then builds and emits one
// bundle per block. Bundles are built concurrently; Process returns after every
// bundle task has finished and reports the first failure.
//
// A *blocks.ParseError is returned unchanged and nothing is emitted. A source that
// cannot be read fails with *SourceReadError and its bundle is not emitted.
func (b *Bundler) Process(ctx context.Context, doc Document, sink Sink) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("process %s: %w", doc.RelPath, ctx.Err())
	default:
	}

	result, err := blocks.Parse(doc.Content)
	if err != nil {
		return err
	}

	relPath := path.Clean(filepath.ToSlash(doc.RelPath))

	err = sink.Emit(ctx, Artifact{
		Kind:    KindDocument,
		Path:    relPath,
		Content: result.Content,
	})
	if err != nil {
		return fmt.Errorf("emit document %s: %w", relPath, err)
	}

	docDir := path.Dir(relPath)

	// Sibling tasks are not cancelled when one fails.
	var group errgroup.Group

	for i := range result.Blocks {
		block := &result.Blocks[i]
		if !block.Bundled() {
			continue
		}

		group.Go(func() error {
			artifact, err := b.build(ctx, docDir, block)
			if err != nil {
				return err
			}
			if err := sink.Emit(ctx, artifact); err != nil {
				return fmt.Errorf("emit bundle %s: %w", artifact.Path, err)
			}
			return nil
		})
	}

	return group.Wait()
}

// build resolves, reads, and concatenates the sources of one block.
func (b *Bundler) build(ctx context.Context, docDir string, block *blocks.Block) (Artifact, error) {
	output, err := OutputPath(block.Target)
	if err != nil {
		return Artifact{}, fmt.Errorf("block on line %d: %w", block.Line, err)
	}

	paths := make([]ResolvedPath, 0, len(block.Sources))
	for _, raw := range block.Sources {
		ref, err := ParseReference(raw)
		if err != nil {
			return Artifact{}, fmt.Errorf("bundle %s: %w", output, err)
		}
		resolved, err := Resolve(ref, docDir, b.base)
		if err != nil {
			return Artifact{}, fmt.Errorf("bundle %s: %w", output, err)
		}
		paths = append(paths, resolved)
	}

	var transform Transform
	if b.transform != nil {
		transform = b.transform()
	}

	sources, err := ReadSources(ctx, b.fsys, paths, transform)
	if err != nil {
		var readErr *SourceReadError
		if errors.As(err, &readErr) {
			readErr.Bundle = string(output)
		}
		return Artifact{}, err
	}

	readers := make([]io.Reader, len(sources))
	infos := make([]SourceInfo, len(sources))
	for i, src := range sources {
		readers[i] = bytes.NewReader(src.Content)
		infos[i] = SourceInfo{Path: src.Path, Size: int64(len(src.Content))}
		if b.classify != nil {
			infos[i].Language = b.classify(string(src.Path), src.Content)
		}
	}

	var buf bytes.Buffer
	if _, err := Concat(&buf, b.newLine, readers...); err != nil {
		return Artifact{}, fmt.Errorf("bundle %s: %w", output, err)
	}

	return Artifact{
		Kind:    KindBundle,
		Path:    string(output),
		Type:    block.Type,
		Content: buf.Bytes(),
		Sources: infos,
	}, nil
}

// ProcessAll runs Process and returns the document followed by its bundles sorted by path.
func (b *Bundler) ProcessAll(ctx context.Context, doc Document) ([]Artifact, error) {
	var sink SliceSink
	if err := b.Process(ctx, doc, &sink); err != nil {
		return nil, err
	}

	artifacts := sink.Artifacts()
	sort.SliceStable(artifacts, func(i, j int) bool {
		if artifacts[i].Kind != artifacts[j].Kind {
			return artifacts[i].Kind < artifacts[j].Kind
		}
		return strings.Compare(artifacts[i].Path, artifacts[j].Path) < 0
	})
	return artifacts, nil
}
