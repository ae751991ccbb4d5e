// Package registry loads event and schema documents from flat directories.
package registry

import (
	"sort"
	"strings"

	"event-schema-validator/internal/models"
)

// EventEntry is one event document together with its source filename.
type EventEntry struct {
	Filename string
	Document models.Document
}

// EventRegistry maps event filenames to documents, preserving discovery order.
type EventRegistry struct {
	order []string
	docs  map[string]models.Document
}

// NewEventRegistry creates an empty event registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{docs: make(map[string]models.Document)}
}

// Add registers a document under filename. Re-adding a filename replaces
// the document but keeps its original position.
func (r *EventRegistry) Add(filename string, doc models.Document) {
	if _, exists := r.docs[filename]; !exists {
		r.order = append(r.order, filename)
	}
	r.docs[filename] = doc
}

// Get returns the document registered under filename.
func (r *EventRegistry) Get(filename string) (models.Document, bool) {
	doc, ok := r.docs[filename]
	return doc, ok
}

// Len returns the number of registered events.
func (r *EventRegistry) Len() int {
	return len(r.order)
}

// Entries returns the events in discovery order.
func (r *EventRegistry) Entries() []EventEntry {
	entries := make([]EventEntry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, EventEntry{Filename: name, Document: r.docs[name]})
	}
	return entries
}

// SchemaDocument is a parsed JSON Schema and the file it came from.
type SchemaDocument struct {
	ID   string
	Path string
	Doc  any
}

// SchemaRegistry maps schema identifiers to schema documents.
type SchemaRegistry struct {
	schemas map[string]SchemaDocument
}

// NewSchemaRegistry creates an empty schema registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]SchemaDocument)}
}

// Put registers a schema under its ID. The last write wins; the return value
// reports whether an earlier schema was replaced.
func (r *SchemaRegistry) Put(s SchemaDocument) bool {
	_, replaced := r.schemas[s.ID]
	r.schemas[s.ID] = s
	return replaced
}

// Get returns the schema registered under id.
func (r *SchemaRegistry) Get(id string) (SchemaDocument, bool) {
	s, ok := r.schemas[id]
	return s, ok
}

// Has reports whether a schema is registered under id.
func (r *SchemaRegistry) Has(id string) bool {
	_, ok := r.schemas[id]
	return ok
}

// Len returns the number of registered schemas.
func (r *SchemaRegistry) Len() int {
	return len(r.schemas)
}

// IDs returns the registered schema identifiers in sorted order.
func (r *SchemaRegistry) IDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SchemaID derives a schema identifier from a filename by dropping
// everything from the first '.' onward: "order_created.schema.json" is
// "order_created". A name without a '.' is used whole.
func SchemaID(filename string) string {
	if i := strings.IndexByte(filename, '.'); i >= 0 {
		return filename[:i]
	}
	return filename
}
