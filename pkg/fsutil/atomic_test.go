package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlbundle/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "dist", "js", "app.js")

		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x\ny"), 0))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "x\ny", string(got))

		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fsutil.DefaultFileMode, stat.Mode().Perm())
	})

	t.Run("overwrites existing file and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "index.html")
		require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("rewritten"), 0600))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "rewritten", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("cancelled context leaves target untouched", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fsutil.WriteAtomic(ctx, path, []byte("x"), 0)
		require.ErrorIs(t, err, context.Canceled)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing *string
		content  string
		want     bool
	}{
		{name: "new file", existing: nil, content: "a", want: true},
		{name: "same content", existing: ptr("a"), content: "a", want: false},
		{name: "different content", existing: ptr("a"), content: "b", want: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.css")
			if testCase.existing != nil {
				require.NoError(t, os.WriteFile(path, []byte(*testCase.existing), 0644))
			}

			written, err := fsutil.WriteAtomicIfChanged(context.Background(), path, []byte(testCase.content), 0)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, written)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testCase.content, string(got))
		})
	}
}

func ptr(s string) *string {
	return &s
}

func TestStage(t *testing.T) {
	t.Parallel()

	t.Run("destination changes only on commit", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "app.js")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		staged, err := fsutil.Stage(context.Background(), path, []byte("new"), 0)
		require.NoError(t, err)
		assert.Equal(t, path, staged.Path())

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(got))

		require.NoError(t, staged.Commit())

		got, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("discard leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		staged, err := fsutil.Stage(context.Background(), filepath.Join(dir, "app.js"), []byte("new"), 0)
		require.NoError(t, err)

		staged.Discard()

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
