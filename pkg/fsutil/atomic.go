package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// DefaultDirMode is the permission mode for directories created for outputs.
const DefaultDirMode os.FileMode = 0755

// StagedFile is content written to a temp file beside its destination and not
// yet moved into place.
type StagedFile struct {
	tmpPath string
	path    string
}

// Path returns the destination the file is renamed to on Commit.
func (s *StagedFile) Path() string { return s.path }

// Stage writes content to a temp file in path's directory, creating missing
// directories. If mode is 0, DefaultFileMode is used. The destination is not
// touched until Commit.
func Stage(ctx context.Context, path string, content []byte, mode os.FileMode) (*StagedFile, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("stage: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	// Temp file lives in the target directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}

	success = true
	return &StagedFile{tmpPath: tmpPath, path: path}, nil
}

// Commit renames the staged file over its destination.
func (s *StagedFile) Commit() error {
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		_ = os.Remove(s.tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Discard removes the temp file. The destination is left as it was.
func (s *StagedFile) Discard() {
	_ = os.Remove(s.tmpPath)
}

// WriteAtomic writes content to path atomically using a temp file and rename.
// Missing parent directories are created. If mode is 0, DefaultFileMode is used.
//
// On error, the temp file is cleaned up and any existing file remains untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	staged, err := Stage(ctx, path, content, mode)
	if err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	return staged.Commit()
}

// WriteAtomicIfChanged writes content to path atomically only if the content differs.
// Returns true if the file was written, false if it was unchanged.
func WriteAtomicIfChanged(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			return false, nil
		}
	case !os.IsNotExist(err):
		return false, fmt.Errorf("read existing: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
