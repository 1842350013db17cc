//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// Format identifies a supported document format
type Format string

// Supported document formats
const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatODT      Format = "odt"
	FormatHTML     Format = "html"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// RawDocument is an uploaded document. It only lives for one ingestion request.
type RawDocument struct {
	Content   []byte `json:"-" validate:"required"`
	MediaType string `json:"media_type"`
	Filename  string `json:"filename" validate:"max=255"`
}

// Validate validates the RawDocument using the validator.
func (d *RawDocument) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// LineRange is a half-open range of line offsets [Start, End)
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines in the range
func (r LineRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether line falls inside the range
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line < r.End
}

// ExtractedText is the plain text of a document plus its work experience span
type ExtractedText struct {
	Text               string    `json:"text"`
	Format             Format    `json:"format"`
	WorkExperienceSpan LineRange `json:"work_experience_span"`
}

// JobTextChunk is the raw text of one candidate role
type JobTextChunk struct {
	Index int       `json:"index"`
	Text  string    `json:"text"`
	Lines LineRange `json:"lines"`
}
