// Package export converts conversation markdown into typed document blocks
// and renders them as a paginated PDF.
package export

import (
	"regexp"
	"strings"
)

// BlockKind identifies one kind of document block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockListItem
	BlockParagraph
	BlockRule
	BlockSpacer
)

// Block is one typed document block. Text carries renderer-neutral markup
// limited to <b> and <i>.
type Block struct {
	Kind   BlockKind
	Level  int     // heading level, 2 or 3
	Text   string  // heading, list item, or paragraph markup
	Height float64 // spacer height in mm
}

var (
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)

	boldStarRe  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe = regexp.MustCompile(`__(.+?)__`)

	// Single-marker emphasis only fires when the markers are not adjacent
	// to word characters, so identifiers like snake_case_name pass through.
	italicStarRe  = regexp.MustCompile(`(^|[^\w*])\*([^*]+?)\*($|[^\w*])`)
	italicUnderRe = regexp.MustCompile(`(^|[^\w_])_([^_]+?)_($|[^\w_])`)
)

// FormatContent converts a markdown-flavored text blob into an ordered
// block sequence. Pure and deterministic; malformed emphasis markers pass
// through as literal characters.
func FormatContent(content string) []Block {
	content = lineBreakRe.ReplaceAllString(content, "\n")
	content = escapeMarkup(content)

	var blocks []Block
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			// no block

		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, Block{
				Kind:  BlockHeading,
				Level: 3,
				Text:  strings.TrimSpace(line[4:]),
			})

		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{
				Kind:  BlockHeading,
				Level: 2,
				Text:  strings.TrimSpace(line[3:]),
			})

		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, Block{
				Kind: BlockListItem,
				Text: strings.TrimSpace(line[2:]),
			})

		case line == "---":
			blocks = append(blocks, Block{Kind: BlockRule})

		default:
			blocks = append(blocks, Block{
				Kind: BlockParagraph,
				Text: applyEmphasis(line),
			})
		}
	}

	return blocks
}

// escapeMarkup escapes markup-significant characters, ampersand first to
// avoid double-escaping, then re-enables the small emphasis-tag whitelist
// so literal <b>/<i> markup in model output survives.
func escapeMarkup(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")

	for _, tag := range []string{"b", "i"} {
		s = strings.ReplaceAll(s, "&lt;"+tag+"&gt;", "<"+tag+">")
		s = strings.ReplaceAll(s, "&lt;/"+tag+"&gt;", "</"+tag+">")
	}

	return s
}

// applyEmphasis substitutes markdown emphasis with <b>/<i> markup. Bold
// resolves before italic so ** is never read as two * spans. The italic
// patterns consume their trailing boundary character, which hides every
// other span in a run of adjacent ones; a second pass picks those up.
func applyEmphasis(s string) string {
	s = boldStarRe.ReplaceAllString(s, "<b>$1</b>")
	s = boldUnderRe.ReplaceAllString(s, "<b>$1</b>")
	for i := 0; i < 2; i++ {
		s = italicStarRe.ReplaceAllString(s, "$1<i>$2</i>$3")
		s = italicUnderRe.ReplaceAllString(s, "$1<i>$2</i>$3")
	}
	return s
}
