// Package export renders a project as a standalone HTML document or a PDF.
package export

import "errors"

// Format is the export output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates the headless browser needed for PDF
// generation is not installed.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
