package ingestion

import (
	"fmt"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// UnsupportedFormatError is returned when neither the declared media type nor
// the filename identify a format the extractor can read
type UnsupportedFormatError struct {
	MediaType string
	Filename  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format (media type %q, filename %q)", e.MediaType, e.Filename)
}

// UnreadableDocumentError is returned when a supported document cannot be converted to text
type UnreadableDocumentError struct {
	Format types.Format
	Cause  error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unreadable %s document: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("unreadable %s document", e.Format)
}

func (e *UnreadableDocumentError) Unwrap() error {
	return e.Cause
}
