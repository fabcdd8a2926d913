package store

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is a flat record as stored in a collection: whatever JSON object
// the caller handed in, keyed by the collection's declared key field.
// Update has full-replace semantics, so a Document always carries every
// field the record is supposed to keep.
type Document map[string]any

// ToDocument converts a typed model into its stored form via a JSON
// round-trip, so json tags decide the field names.
func ToDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode record into document: %w", err)
	}
	return doc, nil
}

// FromDocument decodes a stored document back into a typed model.
func FromDocument(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// StringField returns the document's field rendered as a string, which is
// how key and index columns are stored. Absent and null fields report ok=false.
func (d Document) StringField(field string) (string, bool) {
	v, exists := d[field]
	if !exists || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case json.Number:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
