package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/htmlbundle/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		content  string
		expected string
	}{
		{
			name:     "js extension",
			path:     "assets/app.js",
			content:  "anything",
			expected: "javascript",
		},
		{
			name:     "css extension",
			path:     "css/site.css",
			content:  "body { margin: 0; }",
			expected: "css",
		},
		{
			name:     "empty content without extension",
			path:     "",
			content:  "  \n",
			expected: "text",
		},
		{
			name:     "node shebang",
			path:     "bin/tool",
			content:  "#!/usr/bin/env node\nconsole.log('hi');",
			expected: "javascript",
		},
		{
			name:     "javascript by pattern",
			path:     "vendor/lib",
			content:  "var x = function () { return 42; };",
			expected: "javascript",
		},
		{
			name:     "css by pattern",
			path:     "vendor/theme",
			content:  ".nav a:hover {\n  color: red;\n}\n",
			expected: "css",
		},
		{
			name:     "html by pattern",
			path:     "partials/snippet",
			content:  "<!DOCTYPE html>\n<html><body></body></html>",
			expected: "html",
		},
		{
			name:     "json by pattern",
			path:     "data/config",
			content:  `{"key": "value"}`,
			expected: "json",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, langdetect.Detect(testCase.path, []byte(testCase.content)))
		})
	}
}

func TestCompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		blockType string
		language  string
		expected  bool
	}{
		{"js", "javascript", true},
		{"js", "typescript", true},
		{"js", "css", false},
		{"js", "html", false},
		{"js", "text", true},
		{"js", "", true},
		{"css", "css", true},
		{"css", "javascript", false},
		{"templates", "html", true},
	}

	for _, testCase := range tests {
		t.Run(testCase.blockType+"/"+testCase.language, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, langdetect.Compatible(testCase.blockType, testCase.language))
		})
	}
}
