package intake

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MinTextLength is the minimum number of characters, after trimming, for an
// extraction to count as usable. Shorter results suggest a scanned document.
const MinTextLength = 100

const (
	MimePDF   = "application/pdf"
	MimePlain = "text/plain"
)

// TextExtractor reads embedded text from a document
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// OCR recognizes text in scanned documents and images
type OCR interface {
	ExtractTextOCR(ctx context.Context, data []byte, mimeType string) (string, error)
}

// DocumentExtractor handles plain text and PDF documents
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

func (e *DocumentExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	switch baseMimeType(mimeType) {
	case MimePlain:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrExtraction)
		}
		text = string(data)
	case MimePDF:
		text, err = extractPDFText(data)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %w: %s", ErrExtraction, ErrUnsupportedFormat, mimeType)
	}
	return sufficientText(text)
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open PDF: %v", ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// some pages fail to decode, keep the rest
			continue
		}
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// sufficientText trims text and rejects results shorter than MinTextLength
func sufficientText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", fmt.Errorf("%w: %w: got %d characters, need %d",
			ErrExtraction, ErrInsufficientText, utf8.RuneCountInString(text), MinTextLength)
	}
	return text, nil
}

// DetectMimeType returns the declared MIME type, falling back to the file
// extension when the client sent none or a generic one.
func DetectMimeType(declared, filename string) string {
	base := baseMimeType(declared)
	if base != "" && base != "application/octet-stream" {
		return base
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return MimePlain
	case ".pdf":
		return MimePDF
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return baseMimeType(byExt)
	}
	return "application/octet-stream"
}

func baseMimeType(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
