// Package extract converts disclosure report files into plain text.
package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/disclosurelab/esgscore/internal/config"
)

// Format tags the supported input file formats.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatTXT
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatTXT:
		return "txt"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".txt":
		return FormatTXT
	default:
		return FormatUnknown
	}
}

// PDFExtractor extracts text content from a PDF file.
type PDFExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Extractor dispatches on file format and returns the report's plain text.
type Extractor struct {
	pdf PDFExtractor
}

// New creates an Extractor with the PDF provider selected by config.
func New(cfg config.ExtractConfig) (*Extractor, error) {
	var pdf PDFExtractor
	switch cfg.PDFProvider {
	case "native", "":
		pdf = NewNativePDF()
	case "pdftotext":
		pdf = NewPdfToText(cfg.PdfToTextPath)
	default:
		return nil, eris.Errorf("extract: unknown pdf provider %q", cfg.PDFProvider)
	}
	return &Extractor{pdf: pdf}, nil
}

// NewWithPDF creates an Extractor with an explicit PDF provider.
func NewWithPDF(pdf PDFExtractor) *Extractor {
	return &Extractor{pdf: pdf}
}

// Extract reads the file at path and returns its text. It fails with a typed
// error when the format is unsupported, the file cannot be read, or no text
// could be extracted.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	var (
		text string
		err  error
	)
	switch DetectFormat(path) {
	case FormatPDF:
		text, err = e.pdf.ExtractText(ctx, path)
	case FormatTXT:
		text, err = ReadTXT(path)
	default:
		return "", &UnsupportedFormatError{Path: path, Ext: filepath.Ext(path)}
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &EmptyTextError{Path: path}
	}
	return text, nil
}
