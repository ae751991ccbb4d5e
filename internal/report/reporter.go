// Package report writes one human-readable block per failed event to the validation log.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"event-schema-validator/internal/models"
)

// DefaultFile is the report file written in the working directory.
const DefaultFile = "validation.log"

// Reporter appends report lines to a sink, each framed by blank lines.
type Reporter struct {
	logger zerolog.Logger
	sink   *sinkWriter
	closer io.Closer
	lines  int
}

// New creates a reporter writing to w.
func New(w io.Writer) *Reporter {
	sink := &sinkWriter{out: newBlockWriter(w)}
	return &Reporter{
		logger: zerolog.New(sink),
		sink:   sink,
	}
}

// Open creates a reporter appending to the file at path.
// The file is created if missing, even if nothing is reported.
func Open(path string) (*Reporter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	r := New(f)
	r.closer = f
	return r, nil
}

// newBlockWriter renders only the message as "\n<message>\n\n".
func newBlockWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.MessageFieldName},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("\n%s\n", i)
		},
	}
}

// sinkWriter records write failures for the caller instead of letting
// zerolog print them to stderr.
type sinkWriter struct {
	out io.Writer
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	if _, err := s.out.Write(p); err != nil {
		s.err = err
	}
	return len(p), nil
}

// Report writes the line for o. Valid outcomes are not reported.
func (r *Reporter) Report(o models.Outcome) error {
	line, ok := o.Line()
	if !ok {
		return nil
	}

	r.sink.err = nil
	r.logger.Log().Msg(line)
	if r.sink.err != nil {
		return fmt.Errorf("write report line %d: %w", o.Seq, r.sink.err)
	}
	r.lines++
	return nil
}

// Lines returns the number of lines written.
func (r *Reporter) Lines() int {
	return r.lines
}

// Close closes the underlying file, if the reporter owns one.
func (r *Reporter) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
