// Package schema validates event documents against registered JSON Schemas.
package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"event-schema-validator/internal/registry"
)

// Errors returned by the validator. All of them abort the run.
var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrCompile       = errors.New("schema compilation failed")
	ErrUnknownDraft  = errors.New("unknown json schema draft")
)

// Options tune schema compilation.
type Options struct {
	DefaultDraft string // 4, 6, 7, 2019-09, 2020-12; applies to schemas without $schema
	AssertFormat bool   // treat "format" as an assertion
}

// DefaultOptions returns the compilation defaults.
func DefaultOptions() Options {
	return Options{
		DefaultDraft: "2020-12",
		AssertFormat: false,
	}
}

// Violation describes the first reason a document failed its schema.
type Violation struct {
	Message          string // human-readable message, without location
	InstanceLocation string // JSON pointer into the document
	KeywordPath      string // failing schema keyword, e.g. "/required"
}

// Validator compiles registered schemas on first use and validates documents against them.
// Not safe for concurrent use.
type Validator struct {
	schemas  *registry.SchemaRegistry
	compiler *jsonschema.Compiler
	compiled map[string]*jsonschema.Schema
	urls     map[string]string
	printer  *message.Printer
}

// New registers every schema in the registry with a single compiler so
// relative $refs between schema files resolve.
func New(schemas *registry.SchemaRegistry, opts Options) (*Validator, error) {
	draft, err := parseDraft(opts.DefaultDraft)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(draft)
	if opts.AssertFormat {
		c.AssertFormat()
	}

	v := &Validator{
		schemas:  schemas,
		compiler: c,
		compiled: make(map[string]*jsonschema.Schema),
		urls:     make(map[string]string),
		printer:  message.NewPrinter(language.English),
	}

	for _, id := range schemas.IDs() {
		s, _ := schemas.Get(id)
		url, err := resourceURL(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCompile, s.Path, err)
		}
		if err := c.AddResource(url, s.Doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCompile, s.Path, err)
		}
		v.urls[id] = url
	}
	return v, nil
}

// Has reports whether a schema is registered under id.
func (v *Validator) Has(id string) bool {
	return v.schemas.Has(id)
}

// Validate checks doc against the schema registered under id.
// Returns nil if the document is valid, or the first violation otherwise.
// Only the first violation is reported; any others are discarded.
func (v *Validator) Validate(id string, doc any) (*Violation, error) {
	sch, err := v.compile(id)
	if err != nil {
		return nil, err
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate against %q: %w", id, err)
	}

	leaf := firstLeaf(verr)
	if leaf.ErrorKind == nil {
		return &Violation{Message: verr.LocalizedError(v.printer)}, nil
	}
	return &Violation{
		Message:          leaf.ErrorKind.LocalizedString(v.printer),
		InstanceLocation: pointer(leaf.InstanceLocation),
		KeywordPath:      keywordPath(leaf),
	}, nil
}

func (v *Validator) compile(id string) (*jsonschema.Schema, error) {
	if sch, ok := v.compiled[id]; ok {
		return sch, nil
	}

	url, ok := v.urls[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, id)
	}

	sch, err := v.compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, id, err)
	}
	v.compiled[id] = sch
	return sch, nil
}

// firstLeaf follows the first cause down to the most specific error.
// Sibling causes are ordered by instance location, then keyword path, since
// the library visits object properties in map order.
func firstLeaf(e *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(e.Causes) > 0 {
		first := e.Causes[0]
		for _, c := range e.Causes[1:] {
			if causeLess(c, first) {
				first = c
			}
		}
		e = first
	}
	return e
}

func causeLess(a, b *jsonschema.ValidationError) bool {
	al, bl := pointer(a.InstanceLocation), pointer(b.InstanceLocation)
	if al != bl {
		return al < bl
	}
	return keywordPath(a) < keywordPath(b)
}

func keywordPath(e *jsonschema.ValidationError) string {
	if e.ErrorKind == nil {
		return ""
	}
	return pointer(e.ErrorKind.KeywordPath())
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range tokens {
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		sb.WriteByte('/')
		sb.WriteString(tok)
	}
	return sb.String()
}

func resourceURL(s registry.SchemaDocument) (string, error) {
	if s.Path == "" {
		return "mem:///" + s.ID + ".json", nil
	}
	abs, err := filepath.Abs(s.Path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func parseDraft(name string) (*jsonschema.Draft, error) {
	switch strings.TrimSpace(name) {
	case "4", "draft4", "draft-04":
		return jsonschema.Draft4, nil
	case "6", "draft6", "draft-06":
		return jsonschema.Draft6, nil
	case "7", "draft7", "draft-07":
		return jsonschema.Draft7, nil
	case "2019-09", "draft2019-09":
		return jsonschema.Draft2019, nil
	case "", "2020-12", "draft2020-12":
		return jsonschema.Draft2020, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDraft, name)
	}
}
