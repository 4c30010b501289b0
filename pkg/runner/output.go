package runner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/fsutil"
)

// ErrBundleCollision is returned when two documents produce different content
// for the same output path.
var ErrBundleCollision = errors.New("output path produced with different content")

// claim records which document first produced an output path.
type claim struct {
	owner string
	sum   [32]byte
}

// Output commits artifacts under an output directory. It is safe for concurrent use.
type Output struct {
	outDir  string
	inPlace bool
	dryRun  bool
	backups fsutil.BackupConfig

	mu     sync.Mutex
	claims map[string]claim
}

// OutputOptions configures an Output.
type OutputOptions struct {
	// Root is the processing root.
	Root string

	// OutDir is where artifacts are written, relative to Root unless absolute.
	// Empty or equal to Root rewrites documents in place.
	OutDir string

	// DryRun computes what would change without touching the filesystem.
	DryRun bool

	// Backups controls sidecar backups of overwritten files.
	Backups fsutil.BackupConfig
}

// NewOutput creates an Output.
func NewOutput(opts OutputOptions) (*Output, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	outDir := root
	if opts.OutDir != "" {
		outDir = opts.OutDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(root, outDir)
		}
		outDir = filepath.Clean(outDir)
	}

	return &Output{
		outDir:  outDir,
		inPlace: outDir == root,
		dryRun:  opts.DryRun,
		backups: opts.Backups,
		claims:  make(map[string]claim),
	}, nil
}

// Dir returns the absolute output directory.
func (o *Output) Dir() string { return o.outDir }

// InPlace reports whether documents are rewritten where they were read.
func (o *Output) InPlace() bool { return o.inPlace }

// DryRun reports whether writes are suppressed.
func (o *Output) DryRun() bool { return o.dryRun }

// reset forgets every claim so a new run starts clean.
func (o *Output) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.claims = make(map[string]claim)
}

// Commit writes the artifacts of one document. Either every artifact is accepted
// or none is: collisions are checked for the whole set, and every changed artifact
// is staged beside its destination before any destination is replaced.
//
// When documents are rewritten in place and original no longer matches the file on
// disk, nothing is written and skipped is true.
func (o *Output) Commit(
	ctx context.Context,
	owner string,
	artifacts []bundle.Artifact,
	original *fsutil.FileInfo,
) (writes []Write, skipped bool, err error) {
	if o.inPlace && original != nil && !o.dryRun {
		modified, err := fsutil.CheckModified(ctx, original)
		if err != nil {
			return nil, false, fmt.Errorf("check %s: %w", owner, err)
		}
		if modified {
			return nil, true, nil
		}
	}

	dedup, err := o.claim(owner, artifacts)
	if err != nil {
		return nil, false, err
	}

	writes, pending, err := o.stage(ctx, artifacts, dedup)
	if err != nil {
		o.release(owner, artifacts)
		return nil, false, err
	}

	for i, p := range pending {
		if p.existed {
			writes[p.index].BackedUp, err = fsutil.CreateBackup(ctx, p.staged.Path(), o.backups)
			if err == nil {
				err = p.staged.Commit()
			}
		} else {
			err = p.staged.Commit()
		}
		if err != nil {
			discard(pending[i+1:])
			o.release(owner, artifacts)
			return nil, false, fmt.Errorf("write %s: %w", p.staged.Path(), err)
		}
	}

	return writes, false, nil
}

// pendingWrite is a staged artifact waiting to replace its destination.
type pendingWrite struct {
	index   int
	staged  *fsutil.StagedFile
	existed bool
}

// stage compares every artifact with its destination and stages the changed ones.
// On error every staged file is discarded.
func (o *Output) stage(ctx context.Context, artifacts []bundle.Artifact, dedup []bool) ([]Write, []pendingWrite, error) {
	writes := make([]Write, len(artifacts))
	var pending []pendingWrite

	for i, artifact := range artifacts {
		writes[i] = Write{
			Path:         artifact.Path,
			Kind:         artifact.Kind,
			Bytes:        len(artifact.Content),
			Deduplicated: dedup[i],
		}
		if dedup[i] {
			continue
		}

		dest := filepath.Join(o.outDir, filepath.FromSlash(artifact.Path))

		existing, readErr := os.ReadFile(dest)
		switch {
		case readErr == nil:
			if bytes.Equal(existing, artifact.Content) {
				continue
			}
		case !os.IsNotExist(readErr):
			discard(pending)
			return nil, nil, fmt.Errorf("read %s: %w", dest, readErr)
		}

		writes[i].Changed = true
		if o.dryRun {
			continue
		}

		staged, err := fsutil.Stage(ctx, dest, artifact.Content, 0)
		if err != nil {
			discard(pending)
			return nil, nil, fmt.Errorf("write %s: %w", dest, err)
		}
		pending = append(pending, pendingWrite{index: i, staged: staged, existed: readErr == nil})
	}

	return writes, pending, nil
}

func discard(pending []pendingWrite) {
	for _, p := range pending {
		p.staged.Discard()
	}
}

// claim reserves every artifact path for owner. It reports, per artifact,
// whether another document already claimed the path with identical content.
// Two artifacts of the same set sharing a path are a collision.
func (o *Output) claim(owner string, artifacts []bundle.Artifact) ([]bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	dedup := make([]bool, len(artifacts))
	sums := make([][32]byte, len(artifacts))
	inSet := make(map[string]struct{}, len(artifacts))

	for i, artifact := range artifacts {
		if _, dup := inSet[artifact.Path]; dup {
			return nil, fmt.Errorf("%w: %s (twice from %s)", ErrBundleCollision, artifact.Path, owner)
		}
		inSet[artifact.Path] = struct{}{}

		sums[i] = sha256.Sum256(artifact.Content)
		existing, ok := o.claims[artifact.Path]
		if !ok {
			continue
		}
		if existing.sum != sums[i] {
			return nil, fmt.Errorf("%w: %s (from %s and %s)", ErrBundleCollision, artifact.Path, existing.owner, owner)
		}
		dedup[i] = true
	}

	for i, artifact := range artifacts {
		if !dedup[i] {
			o.claims[artifact.Path] = claim{owner: owner, sum: sums[i]}
		}
	}

	return dedup, nil
}

// release drops the claims owner holds after a failed commit.
func (o *Output) release(owner string, artifacts []bundle.Artifact) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, artifact := range artifacts {
		if existing, ok := o.claims[artifact.Path]; ok && existing.owner == owner {
			delete(o.claims, artifact.Path)
		}
	}
}
