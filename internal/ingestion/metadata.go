package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// Metadata describes one ingested document
type Metadata struct {
	Filename  string       `json:"filename,omitempty"`
	Format    types.Format `json:"format"`
	Timestamp string       `json:"timestamp"` // RFC3339 format
	Hash      string       `json:"hash"`      // SHA256 hex digest of the cleaned text
	Chars     int          `json:"chars"`     // rune count of the cleaned text
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(filename string, extracted types.ExtractedText) *Metadata {
	return &Metadata{
		Filename:  filename,
		Format:    extracted.Format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(extracted.Text),
		Chars:     utf8.RuneCountInString(extracted.Text),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
