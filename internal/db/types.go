package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/cv-consolidator/internal/ingestion"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// Record is one stored CV keyed by session
type Record struct {
	SessionID string             `json:"session_id"`
	CV        *types.CanonicalCV `json:"cv"`
	Filename  string             `json:"filename,omitempty"`
	Format    types.Format       `json:"format,omitempty"`
	Hash      string             `json:"hash,omitempty"`
	Chars     int                `json:"chars"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// cvTable is the table both backends write to
const cvTable = "cv_records"

// row holds the column values shared by both backends
type row struct {
	sessionID string
	cvJSON    []byte
	filename  string
	format    string
	hash      string
	chars     int
}

func newRow(sessionID string, cv *types.CanonicalCV, meta *ingestion.Metadata) (row, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return row{}, fmt.Errorf("session id is empty")
	}
	if cv == nil {
		return row{}, fmt.Errorf("cv is nil")
	}

	normalized := cv.Clone()
	cvJSON, err := json.Marshal(normalized)
	if err != nil {
		return row{}, fmt.Errorf("failed to marshal cv: %w", err)
	}

	r := row{sessionID: sessionID, cvJSON: cvJSON}
	if meta != nil {
		r.filename = meta.Filename
		r.format = string(meta.Format)
		r.hash = meta.Hash
		r.chars = meta.Chars
	}
	return r, nil
}

func decodeCV(data []byte) (*types.CanonicalCV, error) {
	var cv types.CanonicalCV
	if err := json.Unmarshal(data, &cv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cv: %w", err)
	}
	cv.Normalize()
	return &cv, nil
}
