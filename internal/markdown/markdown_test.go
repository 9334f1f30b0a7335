package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	html, err := ToHTML("# Title\n\nSome *emphasis* and a [link](https://example.com).")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Contains(t, html, `href="https://example.com"`)
}

func TestToHTMLTable(t *testing.T) {
	html, err := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)

	assert.Contains(t, html, "<table>")
}
