package models

import (
	"fmt"
	"time"
)

// OutcomeKind classifies the result of resolving and validating one event.
type OutcomeKind int

const (
	// Valid - the event satisfied its schema. Produces no report line.
	Valid OutcomeKind = iota
	// NoSchemaMapping - the event document is JSON null.
	NoSchemaMapping
	// MissingEventField - the document has no usable "event" field.
	MissingEventField
	// UnknownSchemaReference - the "event" field names no loaded schema.
	UnknownSchemaReference
	// SchemaViolation - the document failed validation against its schema.
	SchemaViolation
)

// String returns the string representation of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case Valid:
		return "VALID"
	case NoSchemaMapping:
		return "NO_SCHEMA_MAPPING"
	case MissingEventField:
		return "MISSING_EVENT_FIELD"
	case UnknownSchemaReference:
		return "UNKNOWN_SCHEMA_REFERENCE"
	case SchemaViolation:
		return "SCHEMA_VIOLATION"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// IsFailure returns true for every kind except Valid.
func (k OutcomeKind) IsFailure() bool {
	return k != Valid
}

// Outcome is the classification assigned to one event.
type Outcome struct {
	Seq       int         // 1-based rank in discovery order
	Filename  string      // event file name
	EventName string      // value of the "event" field, if any
	Kind      OutcomeKind
	Message   string      // first violation message for SchemaViolation
}

// Line formats the report line for the outcome.
// Returns false for Valid outcomes, which are not reported.
func (o Outcome) Line() (string, bool) {
	switch o.Kind {
	case NoSchemaMapping:
		return fmt.Sprintf("%d. '%s' has not corresponding json schema!", o.Seq, o.Filename), true
	case MissingEventField:
		return fmt.Sprintf("%d. Field 'event' is absent in '%s'!", o.Seq, o.Filename), true
	case UnknownSchemaReference:
		return fmt.Sprintf("%d. %s has not corresponding json schema! Check the 'event' field in %s",
			o.Seq, o.Filename, o.Filename), true
	case SchemaViolation:
		return fmt.Sprintf("%d. Validation error when tried to apply '%s.schema' schema on '%s'! %s",
			o.Seq, o.EventName, o.Filename, o.Message), true
	default:
		return "", false
	}
}

// OutcomeRecord is the published and stored form of an Outcome.
type OutcomeRecord struct {
	RunID       string `json:"runId"`
	Seq         int    `json:"seq"`
	Filename    string `json:"filename"`
	EventName   string `json:"eventName,omitempty"`
	Outcome     string `json:"outcome"`
	Message     string `json:"message,omitempty"`
	Line        string `json:"line,omitempty"`
	ValidatedAt int64  `json:"validatedAt"`
}

// NewOutcomeRecord builds the record for an outcome produced in the given run.
func NewOutcomeRecord(runID string, o Outcome, at time.Time) OutcomeRecord {
	line, _ := o.Line()
	return OutcomeRecord{
		RunID:       runID,
		Seq:         o.Seq,
		Filename:    o.Filename,
		EventName:   o.EventName,
		Outcome:     o.Kind.String(),
		Message:     o.Message,
		Line:        line,
		ValidatedAt: at.UnixMilli(),
	}
}

// Failed returns true if the record describes a failed event.
func (r OutcomeRecord) Failed() bool {
	return r.Outcome != Valid.String()
}
