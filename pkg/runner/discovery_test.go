package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// writeTree creates files (slash-separated, relative to dir) with the given content.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func assertFiles(t *testing.T, dir string, got []string, want ...string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(got), got)
	}
	for i, name := range want {
		exp := filepath.Join(dir, filepath.FromSlash(name))
		if got[i] != exp {
			t.Errorf("file[%d] = %s, want %s", i, got[i], exp)
		}
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<html></html>"})

	files, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{filepath.Join(dir, "index.html")},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "index.html")
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":         "",
		"pages/about.htm":    "",
		"pages/CONTACT.HTML": "",
		"js/app.js":          "",
		"notes.txt":          "",
	})

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "index.html", "pages/CONTACT.HTML", "pages/about.htm")
}

func TestDiscover_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":     "",
		"layout.tmpl":    "",
		"partials/a.php": "",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Extensions: []string{".tmpl", ".php"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "layout.tmpl", "partials/a.php")
}

func TestDiscover_ExcludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":                   "",
		"vendor/pkg/demo.html":         "",
		"node_modules/lib/readme.html": "",
		"pages/a.html":                 "",
		"pages/a.tmpl.html":            "",
		"pages/deep/b.tmpl.html":       "",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir:   dir,
		ExcludeGlobs: []string{"vendor/**", "node_modules/**", "*.tmpl.html"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "index.html", "pages/a.html")
}

func TestDiscover_IncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":        "",
		"pages/a.html":      "",
		"pages/blog/b.html": "",
		"drafts/draft.html": "",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir:   dir,
		IncludeGlobs: []string{"pages/**"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "pages/a.html", "pages/blog/b.html")
}

func TestDiscover_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir:   t.TempDir(),
		ExcludeGlobs: []string{"[unclosed"},
	})
	if !errors.Is(err, runner.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestDiscover_SkipsOutDirAndHidden(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":         "",
		"dist/index.html":    "",
		".cache/page.html":   "",
		".hidden.html":       "",
		"pages/.draft.html":  "",
		"pages/visible.html": "",
	})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		OutDir:     "dist",
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "index.html", "pages/visible.html")
}

func TestDiscover_InPlaceOutDirIsNotSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": ""})

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		OutDir:     ".",
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "index.html")
}

func TestDiscover_Deduplication(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"pages/a.html": ""})

	files, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{".", "pages", "pages/a.html"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "pages/a.html")
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing"},
		WorkingDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": ""})
	writeTree(t, target, map[string]string{"shared.html": ""})

	if err := os.Symlink(target, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected symlinked directory to be skipped, got %v", files)
	}

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected symlinked directory to be followed, got %v", files)
	}
}
