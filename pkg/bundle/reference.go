package bundle

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Reference errors.
var (
	// ErrOutsideRoot indicates a path that resolves above the processing root.
	ErrOutsideRoot = errors.New("path escapes the processing root")

	// ErrUnsupportedReference indicates a source that cannot be read from disk,
	// such as a remote URL or an empty reference.
	ErrUnsupportedReference = errors.New("unsupported source reference")
)

// RefKind distinguishes how a source reference is anchored.
type RefKind int

const (
	// RootRelative references start with "/" and resolve against the configured base.
	RootRelative RefKind = iota + 1

	// DocumentRelative references resolve against the directory of the referencing document.
	DocumentRelative
)

// String returns the kind name.
func (k RefKind) String() string {
	switch k {
	case RootRelative:
		return "root-relative"
	case DocumentRelative:
		return "document-relative"
	default:
		return "unknown"
	}
}

// Reference is a source path as written in a build block.
type Reference struct {
	Kind RefKind

	// Path is the reference with any query string or fragment removed.
	// Root-relative paths keep their leading "/".
	Path string
}

// ResolvedPath is a slash-separated path relative to the processing root.
type ResolvedPath string

// ParseReference classifies a raw src/href value.
// Query strings and fragments are dropped; remote URLs are rejected.
func ParseReference(raw string) (Reference, error) {
	ref := strings.TrimSpace(raw)
	if cut := strings.IndexAny(ref, "?#"); cut >= 0 {
		ref = ref[:cut]
	}

	switch {
	case ref == "":
		return Reference{}, fmt.Errorf("%w: %q is empty", ErrUnsupportedReference, raw)
	case strings.HasPrefix(ref, "//"), strings.Contains(ref, "://"), strings.HasPrefix(ref, "data:"):
		return Reference{}, fmt.Errorf("%w: %q is not a local file", ErrUnsupportedReference, raw)
	case strings.HasPrefix(ref, "/"):
		return Reference{Kind: RootRelative, Path: ref}, nil
	default:
		return Reference{Kind: DocumentRelative, Path: ref}, nil
	}
}

// Resolve maps a reference to a path relative to the processing root.
//
// Root-relative references lose exactly one leading "/" and are joined to base.
// Document-relative references are joined to docDir and ignore base.
func Resolve(ref Reference, docDir, base string) (ResolvedPath, error) {
	var joined string

	switch ref.Kind {
	case RootRelative:
		joined = path.Join(base, ref.Path[1:])
	case DocumentRelative:
		joined = path.Join(docDir, ref.Path)
	default:
		return "", fmt.Errorf("%w: unknown kind for %q", ErrUnsupportedReference, ref.Path)
	}

	return clean(joined)
}

// OutputPath returns the bundle path for a block target: the target without its
// leading "/", relative to the processing root.
func OutputPath(target string) (ResolvedPath, error) {
	trimmed := strings.TrimPrefix(target, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty target", ErrUnsupportedReference)
	}
	return clean(trimmed)
}

func clean(p string) (ResolvedPath, error) {
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return ResolvedPath(cleaned), nil
}
