package extract

import (
	"context"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativePDF extracts text with the pure-Go ledongthuc/pdf reader, page by
// page. No external binaries required.
type NativePDF struct{}

// NewNativePDF creates a NativePDF extractor.
func NewNativePDF() *NativePDF {
	return &NativePDF{}
}

// ExtractText reads every page of the PDF and concatenates the page texts.
// Pages that cannot be decoded are skipped; the file only fails as a whole
// when it cannot be opened at all.
func (n *NativePDF) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", &NotReadableError{Path: pdfPath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &NotReadableError{Path: pdfPath, Err: err}
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", &NotReadableError{Path: pdfPath, Err: err}
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	return text.String(), nil
}
