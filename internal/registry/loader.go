package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"event-schema-validator/internal/models"
)

// Errors for files that cannot be loaded. Both abort the run.
var (
	ErrNotRegularFile = errors.New("not a regular file")
	ErrMalformedJSON  = errors.New("malformed json")
)

// LoadEvents reads every file in dir as a JSON event document.
// Files are visited in filename order, which becomes the discovery order.
func LoadEvents(dir string) (*EventRegistry, error) {
	reg := NewEventRegistry()
	err := walkJSON(dir, func(name, path string, doc any) {
		reg.Add(name, models.NewDocument(doc))
	})
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	log.Debug().
		Str("dir", dir).
		Int("count", reg.Len()).
		Msg("Event documents loaded")
	return reg, nil
}

// LoadSchemas reads every file in dir as a JSON Schema document keyed by SchemaID.
func LoadSchemas(dir string) (*SchemaRegistry, error) {
	reg := NewSchemaRegistry()
	err := walkJSON(dir, func(name, path string, doc any) {
		id := SchemaID(name)
		if reg.Put(SchemaDocument{ID: id, Path: path, Doc: doc}) {
			log.Warn().
				Str("schemaId", id).
				Str("file", name).
				Msg("Schema identifier collision, keeping the later file")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	log.Debug().
		Str("dir", dir).
		Int("count", reg.Len()).
		Msg("Schema documents loaded")
	return reg, nil
}

// walkJSON decodes each entry of a flat directory and hands it to fn.
// os.ReadDir returns entries sorted by filename.
func walkJSON(dir string, fn func(name, path string, doc any)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !entry.Type().IsRegular() {
			// Symlinks are followed; anything else is rejected.
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("%s: %w", path, ErrNotRegularFile)
			}
		}

		doc, err := decodeFile(path)
		if err != nil {
			return err
		}
		fn(entry.Name(), path, doc)
	}
	return nil
}

func decodeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedJSON, err)
	}
	return doc, nil
}
