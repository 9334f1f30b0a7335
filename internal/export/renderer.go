package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/deepagent-ai/agent-platform/internal/model"
)

// RoleStyle controls how one role's messages are laid out.
type RoleStyle struct {
	FontSize float64
	Color    [3]int // RGB
	Indent   float64
	Spacing  float64
}

var roleStyles = map[model.Role]RoleStyle{
	model.RoleUser:      {FontSize: 11, Color: [3]int{26, 26, 46}, Indent: 8, Spacing: 4},
	model.RoleAssistant: {FontSize: 11, Color: [3]int{22, 33, 62}, Indent: 8, Spacing: 4},
}

var defaultStyle = RoleStyle{FontSize: 11, Color: [3]int{0, 0, 0}, Indent: 8, Spacing: 4}

const (
	pageMargin   = 20.0
	lineHeight   = 5.0
	bulletIndent = 5.0
	ruleGap      = 4.0
)

// Renderer writes conversations as paginated PDF documents under a fixed
// exports root.
type Renderer struct {
	exportsDir string
}

// NewRenderer creates a renderer writing into dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{exportsDir: dir}
}

// Render writes the conversation to a new PDF file and returns its path
// and filename.
func (r *Renderer) Render(conv *model.Conversation) (path, filename string, err error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 9, "Conversation Export", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Model: %s", orUnknown(conv.ModelID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	for _, msg := range conv.Messages {
		r.renderMessage(pdf, msg)
		pdf.Ln(4)
	}

	short := conv.ID
	if len(short) > 8 {
		short = short[:8]
	}
	filename = fmt.Sprintf("conversation_%s_%s.pdf", short, time.Now().Format("20060102_150405"))
	path = filepath.Join(r.exportsDir, filename)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return path, filename, nil
}

func (r *Renderer) renderMessage(pdf *fpdf.Fpdf, msg model.Message) {
	style, ok := roleStyles[msg.Role]
	if !ok {
		style = defaultStyle
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, strings.ToUpper(string(msg.Role))+":", "", 1, "L", false, 0, "")

	pdf.SetTextColor(style.Color[0], style.Color[1], style.Color[2])

	for _, block := range formatBlocks(msg.Content) {
		switch block.Kind {
		case BlockHeading:
			size := style.FontSize + 3
			if block.Level == 3 {
				size = style.FontSize + 1.5
			}
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", size)
			pdf.SetX(pageMargin + style.Indent)
			pdf.MultiCell(0, lineHeight+1, decodeEntities(block.Text), "", "L", false)
			pdf.Ln(1)

		case BlockListItem:
			pdf.SetFont("Helvetica", "", style.FontSize)
			pdf.SetLeftMargin(pageMargin + style.Indent + bulletIndent)
			pdf.SetX(pageMargin + style.Indent + bulletIndent)
			writeMarkup(pdf, "• "+block.Text)
			pdf.SetLeftMargin(pageMargin)

		case BlockParagraph:
			pdf.SetFont("Helvetica", "", style.FontSize)
			pdf.SetLeftMargin(pageMargin + style.Indent)
			pdf.SetX(pageMargin + style.Indent)
			writeMarkup(pdf, block.Text)
			pdf.SetLeftMargin(pageMargin)

		case BlockRule:
			pdf.Ln(ruleGap)

		case BlockSpacer:
			pdf.Ln(block.Height)
		}
	}

	pdf.Ln(style.Spacing)
}

// formatBlocks shields the export from formatter panics on pathological
// content: the whole message degrades to a single paragraph instead of
// failing the export.
func formatBlocks(content string) (blocks []Block) {
	defer func() {
		if recover() != nil {
			blocks = []Block{{Kind: BlockParagraph, Text: escapeMarkup(content)}}
		}
	}()

	return FormatContent(content)
}

// writeMarkup renders a markup string through fpdf's basic HTML writer,
// which understands the <b>/<i> subset the formatter emits.
func writeMarkup(pdf *fpdf.Fpdf, markup string) {
	// The HTML writer leaves entities alone; ampersands read better decoded.
	markup = strings.ReplaceAll(markup, "&amp;", "&")

	html := pdf.HTMLBasicNew()
	html.Write(lineHeight, markup)
	pdf.Ln(lineHeight)
}

// decodeEntities reverses the formatter's escaping for text drawn outside
// the HTML writer, which would otherwise print the entities literally.
// The lt/gt entities decode before amp so an escaped literal "&lt;" comes
// back as itself rather than as "<".
func decodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
