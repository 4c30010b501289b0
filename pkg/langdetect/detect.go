// Package langdetect classifies bundle sources by language.
// It uses go-enry to spot sources that do not belong in their bundle,
// such as a stylesheet listed inside a js build block.
package langdetect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect.
const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangCSS        = "css"
	LangHTML       = "html"
	LangJSON       = "json"
	LangText       = "text"
)

//nolint:gochecknoglobals // compiled once
var (
	cssRulePattern = regexp.MustCompile(`(?m)^\s*[.#@a-zA-Z*:\[][^{};=]*\{[^{}]*:[^{}]*;?\s*\}`)
	jsPattern      = regexp.MustCompile(`\b(function|var|let|const|return|require|module\.exports|import|export)\b|=>|console\.log`)
)

// Detect returns the language of a source, lowercased.
// Returns "text" when detection fails or confidence is low.
func Detect(path string, content []byte) string {
	// Strategy 1: extension (cheapest and usually right for web assets).
	if path != "" {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			return normalize(lang)
		}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return LangText
	}

	// Strategy 2: shebang.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	// Strategy 3: patterns specific to web assets.
	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	// Strategy 4: classifier restricted to languages that show up in pages.
	candidates := []string{"JavaScript", "TypeScript", "CSS", "SCSS", "Less", "HTML", "JSON"}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

// detectByPattern checks for patterns that are highly indicative.
func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)

	if lang := detectHTML(trimmed); lang != "" {
		return lang
	}
	if lang := detectJSON(trimmed); lang != "" {
		return lang
	}
	if cssRulePattern.Match(content) && !jsPattern.Match(content) {
		return LangCSS
	}
	if jsPattern.Match(content) {
		return LangJavaScript
	}
	return ""
}

// detectHTML checks for HTML language patterns.
func detectHTML(trimmed []byte) string {
	lowerTrimmed := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lowerTrimmed, []byte("<!doctype html")) ||
		bytes.HasPrefix(lowerTrimmed, []byte("<html")) ||
		bytes.Contains(lowerTrimmed, []byte("<head>")) ||
		bytes.Contains(lowerTrimmed, []byte("<body>")) {
		return LangHTML
	}
	return ""
}

// detectJSON checks for JSON patterns.
func detectJSON(trimmed []byte) string {
	if (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.HasPrefix(bytes.TrimSpace(trimmed[1:]), []byte(`"`)) {
		return LangJSON
	}
	return ""
}

// normalize converts go-enry language names to the lowercase names used here.
func normalize(lang string) string {
	return strings.ToLower(lang)
}

// Compatible reports whether a source of the given language belongs in a bundle
// of blockType. Undetected sources and custom block types are always compatible.
func Compatible(blockType, language string) bool {
	if language == "" || language == LangText {
		return true
	}

	switch blockType {
	case "js":
		return language == LangJavaScript || language == LangTypeScript || language == LangJSON
	case "css":
		return language == LangCSS
	default:
		return true
	}
}
