// Package blocks parses HTML build blocks.
//
// A build block is a pair of HTML comments wrapping the asset tags that should be
// served as one combined file:
//
//	<!-- build:js js/app.js defer -->
//	<script src="/lib/a.js"></script>
//	<script src="b.js"></script>
//	<!-- endbuild -->
//
// Parse replaces every block with a single tag referencing the target and reports
// the sources each block lists, in document order. The build and endbuild comments
// must each sit on their own line.
package blocks

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Block types with a dedicated replacement.
const (
	TypeJS     = "js"
	TypeCSS    = "css"
	TypeRemove = "remove"
)

// ErrMalformedBlock is the sentinel wrapped by every ParseError.
var ErrMalformedBlock = errors.New("malformed build block")

// ParseError reports a structural problem in the build-block markup.
type ParseError struct {
	// Line is the 1-based line the problem was detected on.
	Line int

	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap allows errors.Is(err, ErrMalformedBlock).
func (e *ParseError) Unwrap() error {
	return ErrMalformedBlock
}

func errorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

//nolint:gochecknoglobals // compiled once
var (
	startPattern = regexp.MustCompile(`^(\s*)<!--\s*build:([\w-]+)(?:\(([^)]*)\))?(?:\s+(.*?))?\s*-->\s*$`)
	endPattern   = regexp.MustCompile(`^\s*<!--\s*endbuild\s*-->\s*$`)
)

// Block is one build block found in a document.
type Block struct {
	// Type is the block type ("js", "css", "remove", or a custom name).
	Type string

	// Target is the output path exactly as written in the markup.
	Target string

	// SearchPaths holds the alternate search paths given in parentheses.
	// They are informational; sources are never resolved against them.
	SearchPaths []string

	// Attrs is the raw attribute text following the target, copied onto the replacement tag.
	Attrs string

	// Sources are the src/href values of the block's tags, in order.
	Sources []string

	// Line is the 1-based line of the opening build comment.
	Line int

	// Indent is the leading whitespace of the opening build comment.
	Indent string
}

// Bundled reports whether the block produces a bundle.
// Remove blocks and blocks without sources only rewrite the markup.
func (b *Block) Bundled() bool {
	return b.Type != TypeRemove && len(b.Sources) > 0
}

// Replacement returns the tag that stands in for the block, without indentation
// or line ending. Remove and custom blocks have no replacement.
func (b *Block) Replacement() string {
	attrs := ""
	if b.Attrs != "" {
		attrs = " " + b.Attrs
	}
	target := html.EscapeString(b.Target)

	switch b.Type {
	case TypeJS:
		return fmt.Sprintf(`<script src="%s"%s></script>`, target, attrs)
	case TypeCSS:
		return fmt.Sprintf(`<link rel="stylesheet" href="%s"%s>`, target, attrs)
	default:
		return ""
	}
}

// Result is the outcome of parsing one document.
type Result struct {
	// Content is the rewritten document.
	Content []byte

	// Blocks lists every build block in discovery order.
	Blocks []Block
}

// BundleMap returns type -> target -> ordered sources for every block that produces a bundle.
func (r *Result) BundleMap() map[string]map[string][]string {
	bundles := make(map[string]map[string][]string)
	for i := range r.Blocks {
		block := &r.Blocks[i]
		if !block.Bundled() {
			continue
		}
		if bundles[block.Type] == nil {
			bundles[block.Type] = make(map[string][]string)
		}
		bundles[block.Type][block.Target] = append([]string(nil), block.Sources...)
	}
	return bundles
}

// pending is a block whose endbuild has not been seen yet.
type pending struct {
	block Block
	body  bytes.Buffer
}

// Parse rewrites content and collects its build blocks.
// Content without build blocks is returned unchanged.
func Parse(content []byte) (*Result, error) {
	var (
		out     bytes.Buffer
		blocks  []Block
		open    *pending
		targets = make(map[string]int)
	)

	out.Grow(len(content))

	for idx, line := range splitLines(content) {
		lineNo := idx + 1
		text := trimLineEnding(line)

		if match := startPattern.FindSubmatch(text); match != nil {
			if open != nil {
				return nil, errorf(lineNo, "build block nested inside block opened on line %d", open.block.Line)
			}

			block, err := newBlock(lineNo, match)
			if err != nil {
				return nil, err
			}

			if block.Type != TypeRemove {
				key := path.Clean(strings.TrimPrefix(block.Target, "/"))
				if first, dup := targets[key]; dup {
					return nil, errorf(lineNo, "duplicate target %q, first declared on line %d", block.Target, first)
				}
				targets[key] = lineNo
			}

			open = &pending{block: block}
			continue
		}

		if endPattern.Match(text) {
			if open == nil {
				return nil, errorf(lineNo, "endbuild without a matching build comment")
			}

			block := open.block
			block.Sources = extractSources(block.Type, open.body.Bytes())
			blocks = append(blocks, block)

			if replacement := block.Replacement(); replacement != "" {
				out.WriteString(block.Indent)
				out.WriteString(replacement)
				out.WriteString(lineEnding(line))
			}

			open = nil
			continue
		}

		if open != nil {
			open.body.Write(line)
			continue
		}

		out.Write(line)
	}

	if open != nil {
		return nil, errorf(open.block.Line, "build block %q is never closed", open.block.Type)
	}

	if len(blocks) == 0 {
		return &Result{Content: content}, nil
	}

	return &Result{Content: out.Bytes(), Blocks: blocks}, nil
}

// newBlock builds a Block from a start-comment match.
func newBlock(lineNo int, match [][]byte) (Block, error) {
	block := Block{
		Type:   string(match[2]),
		Line:   lineNo,
		Indent: string(match[1]),
	}

	if alts := strings.TrimSpace(string(match[3])); alts != "" {
		for _, alt := range strings.Split(alts, ",") {
			if alt = strings.TrimSpace(alt); alt != "" {
				block.SearchPaths = append(block.SearchPaths, alt)
			}
		}
	}

	rest := strings.TrimSpace(string(match[4]))
	if cut := strings.IndexFunc(rest, unicode.IsSpace); cut >= 0 {
		block.Target = rest[:cut]
		block.Attrs = strings.TrimSpace(rest[cut:])
	} else {
		block.Target = rest
	}

	if block.Target == "" && block.Type != TypeRemove {
		return Block{}, errorf(lineNo, "build block %q has no target", block.Type)
	}

	return block, nil
}

// splitLines splits content into lines that keep their terminators.
func splitLines(content []byte) [][]byte {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineEnding(line []byte) string {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return "\r\n"
	case bytes.HasSuffix(line, []byte("\n")):
		return "\n"
	default:
		return ""
	}
}

func trimLineEnding(line []byte) []byte {
	return line[:len(line)-len(lineEnding(line))]
}
