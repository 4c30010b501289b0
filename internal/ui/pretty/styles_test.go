package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
)

func TestNewStyles_PlainRendersVerbatim(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	for _, rendered := range []string{
		styles.Error.Render("js/app.js"),
		styles.Bold.Render("js/app.js"),
		styles.Bundle.Render("js/app.js"),
		styles.DiffAdd.Render("js/app.js"),
		styles.TableHeader.Render("js/app.js"),
	} {
		assert.Equal(t, "js/app.js", rendered)
	}
}

func TestNewStyles_ColorKeepsText(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)
	require.NotNil(t, styles)

	// Lipgloss drops escape codes when it detects no terminal, so only the
	// text itself is checked.
	assert.Contains(t, styles.Error.Render("boom"), "boom")
	assert.Contains(t, styles.Success.Render("ok"), "ok")
	assert.Contains(t, styles.Dim.Render("3 B"), "3 B")
}

func TestIsColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		name    string
		mode    string
		writer  *bytes.Buffer
		noColor string
		want    bool
	}{
		{name: "always", mode: "always", writer: &buf, want: true},
		{name: "always ignores NO_COLOR", mode: "always", writer: &buf, noColor: "1", want: true},
		{name: "never", mode: "never", writer: &buf},
		{name: "auto non-tty", mode: "auto", writer: &buf},
		{name: "empty mode is auto", mode: "", writer: &buf},
		{name: "unknown mode is auto", mode: "rainbow", writer: &buf},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", testCase.noColor)
			assert.Equal(t, testCase.want, pretty.IsColorEnabled(testCase.mode, testCase.writer))
		})
	}
}

func TestIsColorEnabled_NoColorBeatsTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, pretty.IsColorEnabled("auto", os.Stdout))
	assert.False(t, pretty.IsColorEnabled("never", os.Stdout))
}
