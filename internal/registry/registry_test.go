package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"event-schema-validator/internal/models"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestSchemaID(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"order_created.schema.json", "order_created"},
		{"ping.json", "ping"},
		{"ping", "ping"},
		{".hidden.json", ""},
		{"a.b.c", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := SchemaID(tt.filename); got != tt.expected {
				t.Errorf("SchemaID(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestLoadEvents_DiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"e3.json": `{"event": "c"}`,
		"e1.json": `{"event": "a"}`,
		"e2.json": `null`,
	})

	reg, err := LoadEvents(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := reg.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"e1.json", "e2.json", "e3.json"} {
		if entries[i].Filename != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].Filename)
		}
	}
	if !entries[1].Document.IsNull() {
		t.Error("expected e2.json to decode to null")
	}
	v, ok := entries[0].Document.Lookup("event")
	if !ok || v != "a" {
		t.Errorf("expected event 'a', got %v (ok=%v)", v, ok)
	}
}

func TestLoadEvents_NumbersKeptExact(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"e1.json": `{"n": 12345678901234567890}`})

	reg, err := LoadEvents(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, _ := reg.Get("e1.json")
	n, ok := doc.Lookup("n")
	if !ok {
		t.Fatal("expected field n")
	}
	if num, ok := n.(json.Number); !ok || num.String() != "12345678901234567890" {
		t.Errorf("expected exact json.Number, got %#v", n)
	}
}

func TestLoadEvents_MalformedJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"event": `},
		{"empty", ``},
		{"trailing data", `{"event": "a"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"bad.json": tt.content})

			_, err := LoadEvents(dir)
			if !errors.Is(err, ErrMalformedJSON) {
				t.Errorf("expected ErrMalformedJSON, got %v", err)
			}
		})
	}
}

func TestLoadEvents_SubdirectoryIsFatal(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := LoadEvents(dir)
	if !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("expected ErrNotRegularFile, got %v", err)
	}
}

func TestLoadEvents_MissingDirectory(t *testing.T) {
	_, err := LoadEvents(filepath.Join(t.TempDir(), "does-not-exist"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadSchemas_KeyedByID(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"order_created.schema.json": `{"type": "object"}`,
		"ping.schema.json":          `{"required": ["event"]}`,
	})

	reg, err := LoadSchemas(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := reg.IDs()
	if len(ids) != 2 || ids[0] != "order_created" || ids[1] != "ping" {
		t.Errorf("unexpected ids %v", ids)
	}
	s, ok := reg.Get("order_created")
	if !ok {
		t.Fatal("expected order_created schema")
	}
	if s.Path != filepath.Join(dir, "order_created.schema.json") {
		t.Errorf("unexpected path %s", s.Path)
	}
}

func TestLoadSchemas_LastWriteWins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ping.json":        `{"title": "first"}`,
		"ping.schema.json": `{"title": "second"}`,
	})

	reg, err := LoadSchemas(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 schema, got %d", reg.Len())
	}
	s, _ := reg.Get("ping")
	title := s.Doc.(map[string]any)["title"]
	if title != "second" {
		t.Errorf("expected later file to win, got title %v", title)
	}
}

func TestEventRegistry_AddKeepsPosition(t *testing.T) {
	reg := NewEventRegistry()
	reg.Add("a", models.NewDocument(nil))
	reg.Add("b", models.NewDocument(nil))
	reg.Add("a", models.NewDocument(nil))

	entries := reg.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Filename != "a" || entries[1].Filename != "b" {
		t.Errorf("unexpected order %v", entries)
	}
}
