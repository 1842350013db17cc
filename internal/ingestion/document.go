// Package ingestion converts uploaded documents into cleaned plain text.
package ingestion

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// Converter turns the bytes of one document format into raw text
type Converter func(ctx context.Context, r io.Reader) (string, error)

var mediaTypeFormats = map[string]types.Format{
	"application/pdf": types.FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": types.FormatDOCX,
	"application/vnd.oasis.opendocument.text":                                 types.FormatODT,
	"text/html":             types.FormatHTML,
	"application/xhtml+xml": types.FormatHTML,
	"text/plain":            types.FormatText,
	"text/markdown":         types.FormatMarkdown,
	"text/x-markdown":       types.FormatMarkdown,
}

var extensionFormats = map[string]types.Format{
	".pdf":      types.FormatPDF,
	".docx":     types.FormatDOCX,
	".odt":      types.FormatODT,
	".html":     types.FormatHTML,
	".htm":      types.FormatHTML,
	".txt":      types.FormatText,
	".text":     types.FormatText,
	".md":       types.FormatMarkdown,
	".markdown": types.FormatMarkdown,
}

// docconvMIME is the MIME type docconv dispatches on for each binary format
var docconvMIME = map[types.Format]string{
	types.FormatPDF:  "application/pdf",
	types.FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	types.FormatODT:  "application/vnd.oasis.opendocument.text",
}

// DetectFormat resolves a document's format from its declared media type,
// falling back to the filename extension.
func DetectFormat(doc types.RawDocument) (types.Format, error) {
	if doc.MediaType != "" {
		mediaType, _, err := mime.ParseMediaType(doc.MediaType)
		if err == nil {
			if format, ok := mediaTypeFormats[strings.ToLower(mediaType)]; ok {
				return format, nil
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}

	return "", &UnsupportedFormatError{MediaType: doc.MediaType, Filename: doc.Filename}
}

// Extractor converts documents to cleaned text using one Converter per format
type Extractor struct {
	converters map[types.Format]Converter
}

// NewExtractor returns an Extractor wired with the default converters:
// docconv for PDF, DOCX and ODT, goquery for HTML and passthrough for text.
func NewExtractor() *Extractor {
	return &Extractor{
		converters: map[types.Format]Converter{
			types.FormatPDF:      docconvConverter(types.FormatPDF),
			types.FormatDOCX:     docconvConverter(types.FormatDOCX),
			types.FormatODT:      docconvConverter(types.FormatODT),
			types.FormatHTML:     convertHTML,
			types.FormatText:     convertPlain,
			types.FormatMarkdown: convertPlain,
		},
	}
}

// WithConverter returns a copy of the extractor that uses conv for format
func (e *Extractor) WithConverter(format types.Format, conv Converter) *Extractor {
	out := &Extractor{converters: make(map[types.Format]Converter, len(e.converters)+1)}
	for k, v := range e.converters {
		out.converters[k] = v
	}
	out.converters[format] = conv
	return out
}

// ExtractText converts doc to cleaned plain text. The work experience span is
// left empty; it is filled in by segmentation.
func (e *Extractor) ExtractText(ctx context.Context, doc types.RawDocument) (types.ExtractedText, error) {
	format, err := DetectFormat(doc)
	if err != nil {
		return types.ExtractedText{}, err
	}

	conv, ok := e.converters[format]
	if !ok {
		return types.ExtractedText{}, &UnsupportedFormatError{MediaType: doc.MediaType, Filename: doc.Filename}
	}
	if err := ctx.Err(); err != nil {
		return types.ExtractedText{}, err
	}

	raw, err := conv(ctx, bytes.NewReader(doc.Content))
	if err != nil {
		return types.ExtractedText{}, &UnreadableDocumentError{Format: format, Cause: err}
	}

	return types.ExtractedText{
		Text:   CleanText(raw),
		Format: format,
	}, nil
}

// ExtractText converts doc using the default extractor
func ExtractText(ctx context.Context, doc types.RawDocument) (types.ExtractedText, error) {
	return NewExtractor().ExtractText(ctx, doc)
}

func docconvConverter(format types.Format) Converter {
	mimeType := docconvMIME[format]
	return func(_ context.Context, r io.Reader) (string, error) {
		res, err := docconv.Convert(r, mimeType, false)
		if err != nil {
			return "", err
		}
		return res.Body, nil
	}
}

func convertPlain(_ context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}
