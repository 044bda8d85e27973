// Package intake turns uploaded case material (documents, scans and
// interview audio) into plain text facts.
package intake

import "errors"

var (
	ErrExtraction    = errors.New("text extraction failed")
	ErrTranscription = errors.New("transcription failed")

	// Detail errors; always returned wrapped together with ErrExtraction or ErrTranscription
	ErrInsufficientText  = errors.New("not enough text extracted")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
)
