package goldmark_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func plain(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Styled spans only differ from plain text when colour is on.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender_PlainText(t *testing.T) {
	t.Parallel()

	theme := chatstream.DefaultTheme()
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"paragraph", "hello world", "hello world"},
		{"soft break joins lines", "one\ntwo", "one two"},
		{"paragraphs", "first\n\nsecond", "first\n\nsecond"},
		{"bullet list", "- a\n- b", "- a\n- b"},
		{"ordered list", "1. one\n2. two", "1. one\n2. two"},
		{"ordered list keeps start", "3. three\n4. four", "3. three\n4. four"},
		{"nested list", "- a\n  - b\n- c", "- a\n  - b\n- c"},
		{"thematic break", "above\n\n---\n\nbelow", "above\n\n---\n\nbelow"},
		{"fenced code", "```\nx := 1\n```", "│ x := 1"},
		{"fenced code with language", "```go\nfunc main() {}\n```", "go\n│ func main() {}"},
		{"indented code", "    a := 1\n    b := 2", "│ a := 1\n│ b := 2"},
		{"blockquote", "> quoted", "▎ quoted"},
		{"link", "[docs](https://example.com)", "docs (https://example.com)"},
		{"bare url", "see https://example.com/x", "see https://example.com/x"},
		{"image", "![logo](logo.png)", "logo (logo.png)"},
		{"strikethrough", "~~gone~~ kept", "gone kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plain(goldmark.Render(tt.source, 80, theme)))
		})
	}
}

func TestRender_Styling(t *testing.T) {
	t.Parallel()

	theme := chatstream.DefaultTheme()
	render := func(s string) string { return goldmark.Render(s, 80, theme) }

	tests := []struct {
		name   string
		styled string
		plain  string
	}{
		{"heading", "# Title", "Title"},
		{"bold", "**bold**", "bold"},
		{"italic", "*italic*", "italic"},
		{"bold italic", "***both***", "both"},
		{"code span", "`x`", "x"},
		{"strikethrough", "~~x~~", "x"},
		{"link", "[x](x)", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := render(tt.styled)
			assert.Equal(t, tt.plain, plain(got))
			assert.NotEqual(t, render(tt.plain), got)
		})
	}
}

func TestRender_Wrapping(t *testing.T) {
	t.Parallel()

	theme := chatstream.DefaultTheme()

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		out := plain(goldmark.Render(strings.Repeat("word ", 20), 20, theme))
		lines := strings.Split(out, "\n")
		assert.Greater(t, len(lines), 1)
		for _, line := range lines {
			assert.LessOrEqual(t, lipgloss.Width(line), 20, "line %q", line)
			assert.Equal(t, strings.TrimRight(line, " "), line)
		}
	})

	t.Run("list continuation hangs under text", func(t *testing.T) {
		t.Parallel()
		out := plain(goldmark.Render("- "+strings.Repeat("item ", 10), 20, theme))
		lines := strings.Split(out, "\n")
		assert.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "- item"))
		for _, line := range lines[1:] {
			assert.True(t, strings.HasPrefix(line, "  item"), "line %q", line)
		}
	})

	t.Run("quote wraps inside gutter", func(t *testing.T) {
		t.Parallel()
		out := plain(goldmark.Render("> "+strings.Repeat("said ", 10), 20, theme))
		for _, line := range strings.Split(out, "\n") {
			assert.True(t, strings.HasPrefix(line, "▎ "), "line %q", line)
			assert.LessOrEqual(t, lipgloss.Width(line), 20, "line %q", line)
		}
	})

	t.Run("code is not reflowed", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("x", 50)
		out := plain(goldmark.Render("```\n"+long+"\n```", 20, theme))
		assert.Equal(t, "│ "+long, out)
	})

	t.Run("zero width defaults to 80", func(t *testing.T) {
		t.Parallel()
		src := strings.Repeat("word ", 30)
		assert.Equal(t, goldmark.Render(src, 80, theme), goldmark.Render(src, 0, theme))
	})
}

func TestRender_PartialMarkdown(t *testing.T) {
	t.Parallel()

	// Replies are rendered while they stream, so unterminated markup is
	// normal input.
	theme := chatstream.DefaultTheme()
	for _, src := range []string{"**bo", "```go\nfunc", "[link](http://", "- ", "> "} {
		assert.NotPanics(t, func() { goldmark.Render(src, 40, theme) }, src)
	}
	assert.Equal(t, "│ func", plain(goldmark.Render("```\nfunc", 40, theme)))
}
