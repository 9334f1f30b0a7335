// Package extract pulls text and page images out of uploaded PDF files.
package extract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

const (
	// maxPages bounds how many pages get rasterized per upload.
	maxPages = 10
	// rasterDPI is the render resolution for page images.
	rasterDPI = 150
)

// PageImage is one rasterized page, PNG-encoded and base64-wrapped for the
// JSON response.
type PageImage struct {
	Page int    `json:"page"`
	Data string `json:"data"`
}

// Result carries everything extracted from one uploaded PDF.
type Result struct {
	Text      string
	Images    []PageImage
	PageCount int
}

// FromPDF extracts text and page images from the PDF at path. Extraction
// failures degrade: a text failure yields a placeholder message, an image
// failure yields an empty image list. The function itself never fails.
func FromPDF(path string) Result {
	res := Result{
		Text:   extractText(path),
		Images: rasterizePages(path),
	}
	res.PageCount = len(res.Images)
	return res
}

func extractText(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Sprintf("Error extracting text: %v", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return fmt.Sprintf("Error extracting text: %v", err)
	}

	text, err := io.ReadAll(textReader)
	if err != nil {
		return fmt.Sprintf("Error extracting text: %v", err)
	}

	return strings.TrimSpace(string(text))
}

func rasterizePages(path string) []PageImage {
	doc, err := fitz.New(path)
	if err != nil {
		return nil
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	var images []PageImage
	for i := 0; i < pages; i++ {
		img, err := doc.ImageDPI(i, rasterDPI)
		if err != nil {
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			continue
		}

		images = append(images, PageImage{
			Page: i + 1,
			Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}

	return images
}
