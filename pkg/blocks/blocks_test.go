package blocks_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlbundle/pkg/blocks"
)

func TestParse_NoBlocks(t *testing.T) {
	t.Parallel()

	content := []byte("<html>\n<head><script src=\"a.js\"></script></head>\n</html>\n")

	result, err := blocks.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, content, result.Content)
	assert.Empty(t, result.Blocks)
	assert.Empty(t, result.BundleMap())
}

func TestParse_Rewrites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		sources map[string]map[string][]string
	}{
		{
			name: "js block",
			input: "<head>\n" +
				"  <!-- build:js js/out.js -->\n" +
				"  <script src=\"/assets/a.js\"></script>\n" +
				"  <script src=\"b.js\"></script>\n" +
				"  <!-- endbuild -->\n" +
				"</head>\n",
			want: "<head>\n" +
				"  <script src=\"js/out.js\"></script>\n" +
				"</head>\n",
			sources: map[string]map[string][]string{
				"js": {"js/out.js": {"/assets/a.js", "b.js"}},
			},
		},
		{
			name: "css block with attributes",
			input: "<!-- build:css /css/site.css media=\"print\" -->\n" +
				"<link rel=\"stylesheet\" href=\"css/a.css\">\n" +
				"<link rel=\"stylesheet\" href=\"css/b.css\" />\n" +
				"<!-- endbuild -->\n",
			want: "<link rel=\"stylesheet\" href=\"/css/site.css\" media=\"print\">\n",
			sources: map[string]map[string][]string{
				"css": {"/css/site.css": {"css/a.css", "css/b.css"}},
			},
		},
		{
			name: "js attributes",
			input: "<!-- build:js app.js defer async -->\n" +
				"<script src=\"a.js\"></script>\n" +
				"<!-- endbuild -->",
			want: "<script src=\"app.js\" defer async></script>",
			sources: map[string]map[string][]string{
				"js": {"app.js": {"a.js"}},
			},
		},
		{
			name: "remove block",
			input: "<body>\n" +
				"<!-- build:remove -->\n" +
				"<script src=\"livereload.js\"></script>\n" +
				"<!-- endbuild -->\n" +
				"</body>\n",
			want:    "<body>\n</body>\n",
			sources: map[string]map[string][]string{},
		},
		{
			name: "custom block keeps sources but no tag",
			input: "<!-- build:templates tpl/all.html -->\n" +
				"<link rel=\"import\" href=\"a.html\">\n" +
				"<script src=\"b.html\"></script>\n" +
				"<!-- endbuild -->\n" +
				"<p>after</p>\n",
			want: "<p>after</p>\n",
			sources: map[string]map[string][]string{
				"templates": {"tpl/all.html": {"a.html", "b.html"}},
			},
		},
		{
			name: "crlf line endings are kept",
			input: "<head>\r\n" +
				"\t<!-- build:js out.js -->\r\n" +
				"\t<script src=\"a.js\"></script>\r\n" +
				"\t<!-- endbuild -->\r\n" +
				"</head>\r\n",
			want: "<head>\r\n" +
				"\t<script src=\"out.js\"></script>\r\n" +
				"</head>\r\n",
			sources: map[string]map[string][]string{
				"js": {"out.js": {"a.js"}},
			},
		},
		{
			name: "inline scripts and commented tags are skipped",
			input: "<!-- build:js out.js -->\n" +
				"<script>var inline = 1;</script>\n" +
				"<!-- <script src=\"old.js\"></script> -->\n" +
				"<script src=\"a.js\"></script>\n" +
				"<link rel=\"stylesheet\" href=\"ignored.css\">\n" +
				"<!-- endbuild -->\n",
			want: "<script src=\"out.js\"></script>\n",
			sources: map[string]map[string][]string{
				"js": {"out.js": {"a.js"}},
			},
		},
		{
			name: "block without sources rewrites but bundles nothing",
			input: "<!-- build:js out.js -->\n" +
				"<!-- endbuild -->\n",
			want:    "<script src=\"out.js\"></script>\n",
			sources: map[string]map[string][]string{},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result, err := blocks.Parse([]byte(testCase.input))
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(result.Content))
			assert.Equal(t, testCase.sources, result.BundleMap())
		})
	}
}

func TestParse_BlockDetails(t *testing.T) {
	t.Parallel()

	input := "<html>\n" +
		"    <!-- build:js(app, .tmp) scripts/main.js defer -->\n" +
		"    <script src=\"a.js\"></script>\n" +
		"    <!-- endbuild -->\n" +
		"<!-- build:css css/main.css -->\n" +
		"<link rel=\"stylesheet\" href=\"a.css\">\n" +
		"<!-- endbuild -->\n"

	result, err := blocks.Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, result.Blocks, 2)

	first := result.Blocks[0]
	assert.Equal(t, blocks.TypeJS, first.Type)
	assert.Equal(t, "scripts/main.js", first.Target)
	assert.Equal(t, []string{"app", ".tmp"}, first.SearchPaths)
	assert.Equal(t, "defer", first.Attrs)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "    ", first.Indent)
	assert.True(t, first.Bundled())

	second := result.Blocks[1]
	assert.Equal(t, blocks.TypeCSS, second.Type)
	assert.Equal(t, 5, second.Line)
	assert.Empty(t, second.SearchPaths)
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	input := "<head>\n" +
		"  <!-- build:js js/out.js -->\n" +
		"  <script src=\"a.js\"></script>\n" +
		"  <!-- endbuild -->\n" +
		"  <!-- build:remove -->\n" +
		"  <script src=\"dev.js\"></script>\n" +
		"  <!-- endbuild -->\n" +
		"</head>\n"

	first, err := blocks.Parse([]byte(input))
	require.NoError(t, err)

	second, err := blocks.Parse(first.Content)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
	assert.Empty(t, second.Blocks)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{
			name: "nested block",
			input: "<!-- build:js a.js -->\n" +
				"<!-- build:js b.js -->\n" +
				"<!-- endbuild -->\n",
			wantLine: 2,
			wantMsg:  "nested",
		},
		{
			name:     "stray endbuild",
			input:    "<p></p>\n<!-- endbuild -->\n",
			wantLine: 2,
			wantMsg:  "without a matching build",
		},
		{
			name:     "unclosed block",
			input:    "<p></p>\n<!-- build:css a.css -->\n<link href=\"x.css\">\n",
			wantLine: 2,
			wantMsg:  "never closed",
		},
		{
			name:     "missing target",
			input:    "<!-- build:js -->\n<!-- endbuild -->\n",
			wantLine: 1,
			wantMsg:  "no target",
		},
		{
			name: "duplicate target",
			input: "<!-- build:js js/app.js -->\n<!-- endbuild -->\n" +
				"<!-- build:js /js/app.js -->\n<!-- endbuild -->\n",
			wantLine: 3,
			wantMsg:  "duplicate target",
		},
		{
			name: "duplicate target with dot segment",
			input: "<!-- build:js js/app.js -->\n<!-- endbuild -->\n" +
				"<!-- build:js ./js/app.js -->\n<!-- endbuild -->\n",
			wantLine: 3,
			wantMsg:  "duplicate target",
		},
		{
			name: "duplicate target with doubled slash",
			input: "<!-- build:css css/site.css -->\n<!-- endbuild -->\n" +
				"<!-- build:css css//site.css -->\n<!-- endbuild -->\n",
			wantLine: 3,
			wantMsg:  "duplicate target",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result, err := blocks.Parse([]byte(testCase.input))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, blocks.ErrMalformedBlock)

			var parseErr *blocks.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, testCase.wantLine, parseErr.Line)
			assert.Contains(t, parseErr.Msg, testCase.wantMsg)
		})
	}
}

func TestBlock_Replacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		block blocks.Block
		want  string
	}{
		{blocks.Block{Type: blocks.TypeJS, Target: "a.js"}, `<script src="a.js"></script>`},
		{blocks.Block{Type: blocks.TypeCSS, Target: "a.css", Attrs: `media="print"`}, `<link rel="stylesheet" href="a.css" media="print">`},
		{blocks.Block{Type: blocks.TypeRemove}, ""},
		{blocks.Block{Type: "fonts", Target: "f.woff"}, ""},
		{blocks.Block{Type: blocks.TypeJS, Target: `a".js><b`}, `<script src="a&#34;.js&gt;&lt;b"></script>`},
		{blocks.Block{Type: blocks.TypeCSS, Target: "x.css?v=1&t=2"}, `<link rel="stylesheet" href="x.css?v=1&amp;t=2">`},
	}

	for _, testCase := range tests {
		t.Run(testCase.block.Type, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, testCase.block.Replacement())
		})
	}
}
