package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ErrInvalidPattern is returned when an include or exclude glob does not compile.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Discover finds HTML documents matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	filter, err := newFilter(workDir, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if !info.IsDir() {
			// Explicitly named files only need the right extension and must pass the globs.
			if filter.matchesFile(absPath) {
				add(absPath)
			}
			continue
		}

		discovered, err := walkDirectory(ctx, absPath, filter, opts.FollowSymlinks)
		if err != nil {
			return nil, err
		}
		for _, f := range discovered {
			add(f)
		}
	}

	sort.Strings(files)

	return files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// walkDirectory recursively walks a directory and returns matching documents.
func walkDirectory(ctx context.Context, root string, filter *filter, followSymlinks bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") || filter.skipsDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !followSymlinks {
					return nil
				}
				// Walk the target; WalkDir uses Lstat on its root so this cannot recurse forever.
				subFiles, err := walkDirectory(ctx, realPath, filter, followSymlinks)
				if err != nil {
					return err
				}
				files = append(files, subFiles...)
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if filter.matchesFile(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

// pattern is one compiled glob. Patterns without a "/" also match the base name,
// so "*.tmpl.html" skips templates at any depth.
type pattern struct {
	glob     glob.Glob
	baseName bool
}

func (p pattern) match(relPath string) bool {
	if p.glob.Match(relPath) {
		return true
	}
	return p.baseName && p.glob.Match(filepath.Base(relPath))
}

func compilePatterns(patterns []string) ([]pattern, error) {
	compiled := make([]pattern, 0, len(patterns))
	for _, raw := range patterns {
		normalized := strings.TrimPrefix(filepath.ToSlash(raw), "./")
		g, err := glob.Compile(normalized, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, raw, err)
		}
		compiled = append(compiled, pattern{glob: g, baseName: !strings.Contains(normalized, "/")})
	}
	return compiled, nil
}

// filter decides which paths discovery keeps.
type filter struct {
	workDir    string
	outDir     string
	extensions []string
	include    []pattern
	exclude    []pattern
}

func newFilter(workDir string, opts Options) (*filter, error) {
	include, err := compilePatterns(opts.IncludeGlobs)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(opts.ExcludeGlobs)
	if err != nil {
		return nil, err
	}

	var outDir string
	if opts.OutDir != "" {
		outDir = opts.OutDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(workDir, outDir)
		}
		outDir = filepath.Clean(outDir)
		if outDir == workDir {
			outDir = ""
		}
	}

	return &filter{
		workDir:    workDir,
		outDir:     outDir,
		extensions: opts.effectiveExtensions(),
		include:    include,
		exclude:    exclude,
	}, nil
}

// rel returns the slash-separated path relative to the working directory.
func (f *filter) rel(path string) string {
	relPath, err := filepath.Rel(f.workDir, path)
	if err != nil {
		relPath = path
	}
	return filepath.ToSlash(relPath)
}

func (f *filter) skipsDir(path string) bool {
	if f.outDir != "" && path == f.outDir {
		return true
	}
	relPath := f.rel(path)
	return matchAny(f.exclude, relPath) || matchAny(f.exclude, relPath+"/")
}

func (f *filter) matchesFile(path string) bool {
	if !hasMatchingExtension(path, f.extensions) {
		return false
	}

	if f.outDir != "" && strings.HasPrefix(path, f.outDir+string(filepath.Separator)) {
		return false
	}

	relPath := f.rel(path)
	if matchAny(f.exclude, relPath) {
		return false
	}

	if len(f.include) > 0 && !matchAny(f.include, relPath) {
		return false
	}

	return true
}

func matchAny(patterns []pattern, relPath string) bool {
	for _, p := range patterns {
		if p.match(relPath) {
			return true
		}
	}
	return false
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
