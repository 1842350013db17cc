package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/cv-consolidator/internal/pipeline"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// ErrorResponse is the body of a failed request. A CV that was consolidated
// but could not be stored is still included.
type ErrorResponse struct {
	Error     string           `json:"error"`
	SessionID string           `json:"session_id,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
}

// handleUpload runs the pipeline on a multipart upload and returns the result
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	doc, sessionID, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.runner.Run(r.Context(), doc, pipeline.Options{SessionID: sessionID})
	if err != nil {
		s.logger.Error("pipeline run failed", "filename", doc.Filename, "error", err)
		resp := ErrorResponse{Error: err.Error(), Result: result}
		if result != nil {
			resp.SessionID = result.SessionID
		}
		s.jsonResponse(w, HTTPStatus(err), resp)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleUploadStream runs the pipeline and streams progress via SSE
func (s *Server) handleUploadStream(w http.ResponseWriter, r *http.Request) {
	doc, sessionID, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.runner.Run(r.Context(), doc, pipeline.Options{
		SessionID: sessionID,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent("step", event); err != nil {
				s.logger.Warn("failed to write SSE event", "error", err)
			}
		},
	})
	if err != nil {
		s.logger.Error("streaming pipeline run failed", "filename", doc.Filename, "error", err)
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}

	if err := sse.WriteEvent("complete", result); err != nil {
		s.logger.Warn("failed to write SSE event", "error", err)
	}
}

// handleGetCV returns the stored CV for a session
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	if sessionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if s.records == nil {
		s.errorResponse(w, http.StatusNotImplemented, "no store configured")
		return
	}

	record, err := s.records.GetCV(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to read cv", "session_id", sessionID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	if record == nil {
		err := &ErrNotFound{SessionID: sessionID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleDeleteCV removes the stored CV for a session
func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	if sessionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if s.records == nil {
		s.errorResponse(w, http.StatusNotImplemented, "no store configured")
		return
	}

	if err := s.records.DeleteCV(r.Context(), sessionID); err != nil {
		s.logger.Error("failed to delete cv", "session_id", sessionID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload reads the "file" part of a multipart form into a RawDocument.
// The optional "session_id" field keys the stored record.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (types.RawDocument, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.RawDocument{}, "", &ErrValidation{
				Field:   "file",
				Message: fmt.Sprintf("upload exceeds %d bytes", s.maxUpload),
			}
		}
		return types.RawDocument{}, "", &ErrValidation{Field: "file", Message: "expected a multipart form upload"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return types.RawDocument{}, "", &ErrValidation{Field: "file", Message: "file is required"}
	}
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(file)
	if err != nil {
		return types.RawDocument{}, "", fmt.Errorf("failed to read upload: %w", err)
	}

	doc := types.RawDocument{
		Content:   content,
		MediaType: header.Header.Get("Content-Type"),
		Filename:  header.Filename,
	}
	return doc, r.FormValue("session_id"), nil
}
