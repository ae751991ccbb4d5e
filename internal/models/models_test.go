package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDocument_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantOK  bool
		wantVal any
	}{
		{"object with field", map[string]any{"event": "ping"}, true, "ping"},
		{"object without field", map[string]any{"foo": "bar"}, false, nil},
		{"field is null", map[string]any{"event": nil}, false, nil},
		{"field is false", map[string]any{"event": false}, true, false},
		{"null document", nil, false, nil},
		{"false document", false, false, nil},
		{"number document", json.Number("0"), false, nil},
		{"array document", []any{"event"}, false, nil},
		{"string document", "event", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewDocument(tt.value).Lookup(EventField)
			if ok != tt.wantOK {
				t.Fatalf("Lookup ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.wantVal {
				t.Errorf("Lookup value = %v, want %v", got, tt.wantVal)
			}
		})
	}
}

func TestDocument_IsNull(t *testing.T) {
	if !NewDocument(nil).IsNull() {
		t.Error("expected nil document to be null")
	}
	if NewDocument(false).IsNull() {
		t.Error("expected false document to not be null")
	}
	if NewDocument(json.Number("0")).IsNull() {
		t.Error("expected 0 document to not be null")
	}
}

func TestOutcome_Line(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
		wantOK  bool
	}{
		{
			"no schema mapping",
			Outcome{Seq: 1, Filename: "e0.json", Kind: NoSchemaMapping},
			"1. 'e0.json' has not corresponding json schema!",
			true,
		},
		{
			"missing event field",
			Outcome{Seq: 2, Filename: "e2.json", Kind: MissingEventField},
			"2. Field 'event' is absent in 'e2.json'!",
			true,
		},
		{
			"unknown schema reference",
			Outcome{Seq: 3, Filename: "e3.json", EventName: "unknown_type", Kind: UnknownSchemaReference},
			"3. e3.json has not corresponding json schema! Check the 'event' field in e3.json",
			true,
		},
		{
			"schema violation",
			Outcome{Seq: 4, Filename: "e4.json", EventName: "ping", Kind: SchemaViolation, Message: "boom"},
			"4. Validation error when tried to apply 'ping.schema' schema on 'e4.json'! boom",
			true,
		},
		{
			"valid",
			Outcome{Seq: 5, Filename: "e5.json", EventName: "ping", Kind: Valid},
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.outcome.Line()
			if ok != tt.wantOK {
				t.Fatalf("Line ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutcomeKind_String(t *testing.T) {
	if Valid.String() != "VALID" {
		t.Errorf("expected VALID, got %s", Valid.String())
	}
	if SchemaViolation.String() != "SCHEMA_VIOLATION" {
		t.Errorf("expected SCHEMA_VIOLATION, got %s", SchemaViolation.String())
	}
	if OutcomeKind(42).String() != "UNKNOWN(42)" {
		t.Errorf("expected UNKNOWN(42), got %s", OutcomeKind(42).String())
	}
	if Valid.IsFailure() {
		t.Error("expected Valid to not be a failure")
	}
	if !MissingEventField.IsFailure() {
		t.Error("expected MissingEventField to be a failure")
	}
}

func TestNewOutcomeRecord(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	rec := NewOutcomeRecord("run-1", Outcome{
		Seq:      2,
		Filename: "e2.json",
		Kind:     MissingEventField,
	}, at)

	if rec.RunID != "run-1" {
		t.Errorf("expected runId 'run-1', got %s", rec.RunID)
	}
	if rec.Outcome != "MISSING_EVENT_FIELD" {
		t.Errorf("expected outcome MISSING_EVENT_FIELD, got %s", rec.Outcome)
	}
	if rec.Line != "2. Field 'event' is absent in 'e2.json'!" {
		t.Errorf("unexpected line %q", rec.Line)
	}
	if rec.ValidatedAt != 1700000000000 {
		t.Errorf("expected validatedAt 1700000000000, got %d", rec.ValidatedAt)
	}
	if !rec.Failed() {
		t.Error("expected record to be failed")
	}

	valid := NewOutcomeRecord("run-1", Outcome{Seq: 1, Filename: "e1.json", Kind: Valid}, at)
	if valid.Failed() {
		t.Error("expected valid record to not be failed")
	}
	if valid.Line != "" {
		t.Errorf("expected empty line for valid record, got %q", valid.Line)
	}
}
