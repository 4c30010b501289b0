package fsutil_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlbundle/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content and metadata", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0644))

		content, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", string(content))
		assert.Equal(t, int64(len(content)), info.Size)
		assert.Equal(t, path, info.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fsutil.ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fsutil.ReadFile(ctx, "whatever.html")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpenFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"js/a.js": &fstest.MapFile{Data: []byte("var a;")},
		"js/lib":  &fstest.MapFile{Mode: fs.ModeDir},
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "regular file", path: "js/a.js", want: "var a;"},
		{name: "missing file", path: "js/b.js", wantErr: fsutil.ErrNotFound},
		{name: "directory", path: "js/lib", wantErr: fsutil.ErrIsDirectory},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			file, err := fsutil.OpenFS(context.Background(), fsys, testCase.path)
			if testCase.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, testCase.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			defer file.Close()

			got, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(got))
		})
	}
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	t.Run("unchanged file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

		_, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("rewritten file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

		_, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("two!"), 0644))
		later := info.ModTime.Add(time.Second)
		require.NoError(t, os.Chtimes(path, later, later))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

		_, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModified(context.Background(), nil)
		assert.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})
}
