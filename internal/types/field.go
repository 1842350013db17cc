// Package types provides type definitions for structured data used throughout the cv-consolidator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnknownMarker is the human-readable rendering of an unknown identity field.
const UnknownMarker = "unknown"

// Field is an identity value that is either Known or Unknown.
// The zero value is Unknown.
type Field struct {
	value string
	known bool
}

// Known returns a field holding v. Blank values collapse to Unknown so that an
// empty string can never masquerade as real data.
func Known(v string) Field {
	v = strings.TrimSpace(v)
	if v == "" {
		return Field{}
	}
	return Field{value: v, known: true}
}

// Unknown returns the explicit unknown field.
func Unknown() Field {
	return Field{}
}

// Value returns the underlying value and whether it is known.
func (f Field) Value() (string, bool) {
	return f.value, f.known
}

// IsKnown reports whether the field holds a real value.
func (f Field) IsKnown() bool {
	return f.known
}

// OrElse returns the value when known, otherwise fallback.
func (f Field) OrElse(fallback string) string {
	if f.known {
		return f.value
	}
	return fallback
}

// String renders the field for display.
func (f Field) String() string {
	return f.OrElse(UnknownMarker)
}

// MarshalJSON encodes a known field as a string and an unknown field as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.known {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null or a string. Numbers and booleans keep their
// literal text, so a phone number sent as 4915112345678 survives. Objects and
// arrays cannot hold a single value and decode as Unknown.
func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*f = Unknown()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = Known(s)
	case '{', '[', 'n':
		*f = Unknown()
	default:
		*f = Known(string(trimmed))
	}
	return nil
}
