// Package models defines the data structures for event documents and validation outcomes.
package models

// EventField is the document field naming the schema an event must satisfy.
const EventField = "event"

// Document is a decoded JSON value: nil, bool, json.Number, string, []any or map[string]any.
type Document struct {
	value any
}

// NewDocument wraps a decoded JSON value.
func NewDocument(v any) Document {
	return Document{value: v}
}

// Value returns the underlying decoded JSON value.
func (d Document) Value() any {
	return d.value
}

// IsNull returns true if the document decoded to JSON null.
func (d Document) IsNull() bool {
	return d.value == nil
}

// Lookup returns the value of a top-level field.
// The field is absent when the document is not an object, the key is
// missing, or the value is JSON null.
func (d Document) Lookup(name string) (any, bool) {
	obj, ok := d.value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
