package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/reporter"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

const (
	originalDoc  = "<html>\n<!-- build:js js/out.js -->\n<script src=\"a.js\"></script>\n<script src=\"b.js\"></script>\n<!-- endbuild -->\n</html>\n"
	rewrittenDoc = "<html>\n<script src=\"js/out.js\"></script>\n</html>\n"
)

func sampleResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path:     "/site/index.html",
				RelPath:  "index.html",
				Original: []byte(originalDoc),
				Artifacts: []bundle.Artifact{
					{Kind: bundle.KindDocument, Path: "index.html", Content: []byte(rewrittenDoc)},
					{
						Kind:    bundle.KindBundle,
						Path:    "js/out.js",
						Type:    "js",
						Content: []byte("var a;\nvar b;"),
						Sources: []bundle.SourceInfo{
							{Path: "a.js", Size: 6, Language: "JavaScript"},
							{Path: "b.js", Size: 6, Language: "JavaScript"},
						},
					},
				},
				Writes: []runner.Write{
					{Path: "index.html", Kind: bundle.KindDocument, Bytes: len(rewrittenDoc), Changed: true},
					{Path: "js/out.js", Kind: bundle.KindBundle, Bytes: 13, Changed: true},
				},
				Warnings: []string{"js/out.js: b.js looks like CSS"},
			},
			{
				Path:     "/site/plain.html",
				RelPath:  "plain.html",
				Original: []byte("<p>hi</p>\n"),
				Artifacts: []bundle.Artifact{
					{Kind: bundle.KindDocument, Path: "plain.html", Content: []byte("<p>hi</p>\n")},
				},
				Writes: []runner.Write{{Path: "plain.html", Kind: bundle.KindDocument, Bytes: 10}},
			},
			{
				Path:    "/site/broken.html",
				RelPath: "broken.html",
				Error:   errors.New("line 3: build block never closed"),
			},
		},
		Stats: runner.Stats{
			DocumentsDiscovered: 3,
			DocumentsProcessed:  2,
			DocumentsRewritten:  1,
			DocumentsErrored:    1,
			BundlesBuilt:        1,
			FilesWritten:        2,
			BytesWritten:        int64(len(rewrittenDoc) + 13),
			Warnings:            1,
		},
	}
}

func newReporter(t *testing.T, format reporter.Format, mutate func(*reporter.Options)) (reporter.Reporter, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.ErrorWriter = &buf
	opts.Format = format
	opts.Color = "never"
	if mutate != nil {
		mutate(&opts)
	}

	rep, err := reporter.New(opts)
	require.NoError(t, err)
	return rep, &buf
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "summary", input: "summary", want: reporter.FormatSummary},
		{name: "unknown format", input: "xml", wantErr: true},
		{name: "sarif is not supported", input: "sarif", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(testCase.input)
			if testCase.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(reporter.Options{Format: reporter.Format("xml")})
	require.Error(t, err)
	assert.False(t, reporter.Format("xml").IsValid())
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatText, nil)
	problems, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, problems)

	out := buf.String()
	assert.Contains(t, out, "index.html 1 bundle")
	assert.Contains(t, out, "js/out.js")
	assert.Contains(t, out, "<- a.js")
	assert.Contains(t, out, "b.js looks like CSS")
	assert.Contains(t, out, "broken.html failed")
	assert.Contains(t, out, "build block never closed")
	assert.NotContains(t, out, "plain.html")
	assert.Contains(t, out, "Built 2 documents")
}

func TestTextReporter_Options(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatText, func(opts *reporter.Options) {
		opts.Verbose = true
		opts.ShowSources = false
		opts.ShowSummary = false
		opts.DryRun = true
	})
	_, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "plain.html")
	assert.NotContains(t, out, "<- a.js")
	assert.NotContains(t, out, "Built 2 documents")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatText, nil)
	problems, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)
	assert.Zero(t, problems)
	assert.Contains(t, buf.String(), "No documents found")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatJSON, func(opts *reporter.Options) {
		opts.DryRun = true
	})
	problems, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, problems)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.True(t, output.DryRun)
	require.Len(t, output.Documents, 3)

	index := output.Documents[0]
	assert.Equal(t, "index.html", index.Path)
	assert.True(t, index.Rewritten)
	require.Len(t, index.Outputs, 2)
	assert.Equal(t, "document", index.Outputs[0].Kind)
	assert.Equal(t, "bundle", index.Outputs[1].Kind)
	assert.Equal(t, "js", index.Outputs[1].Type)
	assert.Equal(t, 13, index.Outputs[1].Size)
	require.Len(t, index.Outputs[1].Sources, 2)
	assert.Equal(t, "b.js", index.Outputs[1].Sources[1].Path)

	assert.False(t, output.Documents[1].Rewritten)
	assert.Equal(t, "line 3: build block never closed", output.Documents[2].Error)

	assert.Equal(t, 1, output.Summary.BundlesBuilt)
	assert.Equal(t, 1, output.Summary.DocumentsErrored)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatJSON, func(opts *reporter.Options) {
		opts.Compact = true
	})
	_, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, buf.String(), `"documents":[]`)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatDiff, nil)
	_, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "diff --git a/index.html b/index.html")
	assert.Contains(t, out, "-<!-- build:js js/out.js -->")
	assert.Contains(t, out, "+<script src=\"js/out.js\"></script>")
	assert.Contains(t, out, "=> js/out.js (2 sources, 13 B)")
	assert.Contains(t, out, "broken.html: error:")
	assert.NotContains(t, out, "plain.html")
	assert.Contains(t, out, "1 document changed, 1 insertion(+), 4 deletions(-)")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatTable, nil)
	problems, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, problems)

	out := buf.String()
	assert.Contains(t, out, "DOCUMENT")
	assert.Contains(t, out, "js/out.js")
	assert.Contains(t, out, "index.html: js/out.js: b.js looks like CSS")
	assert.Contains(t, out, "broken.html: line 3")
}

func TestSummaryReporter(t *testing.T) {
	t.Parallel()

	rep, buf := newReporter(t, reporter.FormatSummary, nil)
	_, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Documents found:")
	assert.Contains(t, out, "broken.html failed")
	assert.Contains(t, out, "Build failed")
}
