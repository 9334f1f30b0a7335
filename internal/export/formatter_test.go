package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatContentPlainText(t *testing.T) {
	blocks := FormatContent("hello world")

	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, "hello world", blocks[0].Text)
}

func TestFormatContentDocumentStructure(t *testing.T) {
	blocks := FormatContent("## Title\n- item one\n- item two\nplain text")

	require.Len(t, blocks, 4)

	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, 2, blocks[0].Level)
	assert.Equal(t, "Title", blocks[0].Text)

	assert.Equal(t, BlockListItem, blocks[1].Kind)
	assert.Equal(t, "item one", blocks[1].Text)

	assert.Equal(t, BlockListItem, blocks[2].Kind)
	assert.Equal(t, "item two", blocks[2].Text)

	assert.Equal(t, BlockParagraph, blocks[3].Kind)
	assert.Equal(t, "plain text", blocks[3].Text)
}

func TestFormatContentLevelThreeHeading(t *testing.T) {
	blocks := FormatContent("### Details")

	require.Len(t, blocks, 1)
	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, 3, blocks[0].Level)
	assert.Equal(t, "Details", blocks[0].Text)
}

func TestFormatContentEmphasis(t *testing.T) {
	blocks := FormatContent("**bold** and *italic*")

	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "<b>bold</b>")
	assert.Contains(t, blocks[0].Text, "<i>italic</i>")
}

func TestFormatContentUnderscoreEmphasis(t *testing.T) {
	blocks := FormatContent("__strong__ and _em_")

	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "<b>strong</b>")
	assert.Contains(t, blocks[0].Text, "<i>em</i>")
}

func TestFormatContentAdjacentItalicSpans(t *testing.T) {
	blocks := FormatContent("*a* *b* *c*")

	require.Len(t, blocks, 1)
	assert.Equal(t, "<i>a</i> <i>b</i> <i>c</i>", blocks[0].Text)

	blocks = FormatContent("_x_ _y_")

	require.Len(t, blocks, 1)
	assert.Equal(t, "<i>x</i> <i>y</i>", blocks[0].Text)
}

func TestFormatContentListItemsKeepLiteralMarkers(t *testing.T) {
	blocks := FormatContent("- **bold** item\n- *em* item")

	require.Len(t, blocks, 2)
	assert.Equal(t, "**bold** item", blocks[0].Text)
	assert.Equal(t, "*em* item", blocks[1].Text)
}

func TestFormatContentIdentifiersUntouched(t *testing.T) {
	blocks := FormatContent("use snake_case_name here")

	require.Len(t, blocks, 1)
	assert.Equal(t, "use snake_case_name here", blocks[0].Text)
}

func TestFormatContentMalformedEmphasisPassesThrough(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated bold", "**bold"},
		{"unterminated italic", "*italic"},
		{"lone asterisk", "a * b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := FormatContent(tt.input)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.input, blocks[0].Text)
		})
	}
}

func TestFormatContentRule(t *testing.T) {
	blocks := FormatContent("before\n---\nafter")

	require.Len(t, blocks, 3)
	assert.Equal(t, BlockRule, blocks[1].Kind)
}

func TestFormatContentListRequiresSpace(t *testing.T) {
	blocks := FormatContent("-item")

	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, "-item", blocks[0].Text)
}

func TestFormatContentBlankLinesSkipped(t *testing.T) {
	blocks := FormatContent("one\n\n\ntwo")

	require.Len(t, blocks, 2)
	assert.Equal(t, "one", blocks[0].Text)
	assert.Equal(t, "two", blocks[1].Text)
}

func TestFormatContentLineBreakMarkup(t *testing.T) {
	blocks := FormatContent("first<br/>second<BR>third")

	require.Len(t, blocks, 3)
	assert.Equal(t, "first", blocks[0].Text)
	assert.Equal(t, "second", blocks[1].Text)
	assert.Equal(t, "third", blocks[2].Text)
}

func TestFormatContentEscapesMarkup(t *testing.T) {
	blocks := FormatContent("a < b & c > d")

	require.Len(t, blocks, 1)
	assert.Equal(t, "a &lt; b &amp; c &gt; d", blocks[0].Text)
}

func TestFormatContentLiteralEmphasisTagsSurvive(t *testing.T) {
	blocks := FormatContent("already <b>bold</b> and <i>italic</i>")

	require.Len(t, blocks, 1)
	assert.Equal(t, "already <b>bold</b> and <i>italic</i>", blocks[0].Text)
}

func TestFormatContentOtherTagsEscaped(t *testing.T) {
	blocks := FormatContent("<script>alert(1)</script>")

	require.Len(t, blocks, 1)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", blocks[0].Text)
}

func TestFormatContentDeterministic(t *testing.T) {
	input := "## Title\n**bold** _em_\n- li\n---"

	first := FormatContent(input)
	second := FormatContent(input)

	assert.Equal(t, first, second)
}
