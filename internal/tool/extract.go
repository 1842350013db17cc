// Package tool exposes the CV pipeline as a Model Context Protocol tool.
package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonathan/cv-consolidator/internal/pipeline"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// Version is the MCP server version.
const Version = "0.1.0"

// MetadataExtractCV describes the extract_cv tool.
var MetadataExtractCV = &mcp.Tool{
	Name: "extract_cv",
	Description: "Extract a structured, consolidated CV from a document. " +
		"Pass plain text or markdown in content, or a PDF, DOCX, ODT or HTML file as base64 in content_base64 " +
		"together with its filename or media type. " +
		"The result holds contact details, roles with verbatim bullet points, education, skills, " +
		"plus advisory data: cross-role duplicate bullets and a page-length plan. " +
		"Template placeholders such as example.com addresses come back as null.",
}

// Runner runs the pipeline for one document
type Runner interface {
	Run(ctx context.Context, doc types.RawDocument, opts pipeline.Options) (*pipeline.Result, error)
}

// InputExtractCV is the input for the extract_cv tool.
type InputExtractCV struct {
	Content       string `json:"content,omitempty" jsonschema:"plain text or markdown of the CV"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"base64 encoded document bytes for binary formats"`
	Filename      string `json:"filename,omitempty" jsonschema:"original filename, used to detect the format"`
	MediaType     string `json:"media_type,omitempty" jsonschema:"media type of the document, e.g. application/pdf"`
	SessionID     string `json:"session_id,omitempty" jsonschema:"key for the stored record; generated when omitted"`
}

// Extractor serves the extract_cv tool
type Extractor struct {
	runner Runner
}

// NewExtractor creates an Extractor backed by runner
func NewExtractor(runner Runner) *Extractor {
	return &Extractor{runner: runner}
}

// ExtractCV runs the pipeline on the provided document. The output is the
// pipeline result; it has no declared schema because identity fields
// serialize as either a string or null.
func (e *Extractor) ExtractCV(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractCV) (*mcp.CallToolResult, any, error) {
	doc, err := input.document()
	if err != nil {
		return nil, nil, err
	}

	result, err := e.runner.Run(ctx, doc, pipeline.Options{SessionID: input.SessionID})
	if err != nil {
		return nil, nil, err
	}
	return nil, result, nil
}

func (in InputExtractCV) document() (types.RawDocument, error) {
	doc := types.RawDocument{Filename: in.Filename, MediaType: in.MediaType}

	switch {
	case in.ContentBase64 != "":
		content, err := base64.StdEncoding.DecodeString(in.ContentBase64)
		if err != nil {
			return doc, fmt.Errorf("content_base64 is not valid base64: %w", err)
		}
		doc.Content = content
	case in.Content != "":
		doc.Content = []byte(in.Content)
		if doc.MediaType == "" && doc.Filename == "" {
			doc.MediaType = "text/plain"
		}
	default:
		return doc, fmt.Errorf("content or content_base64 is required")
	}
	return doc, nil
}

// NewServer creates an MCP server with the extract_cv tool registered
func NewServer(runner Runner) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "cv-consolidator", Version: Version}, nil)
	mcp.AddTool(server, MetadataExtractCV, NewExtractor(runner).ExtractCV)
	return server
}

// Run serves the tool over stdio until ctx is canceled or the client disconnects
func Run(ctx context.Context, runner Runner) error {
	return NewServer(runner).Run(ctx, &mcp.StdioTransport{})
}
