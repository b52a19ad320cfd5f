// Package audit writes the operator action log: one line per attempted
// action, warning, or error, appended to a local file. Each line carries a
// timestamp, a severity, a human-readable message and the operation, target
// and subject identities involved.
package audit

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Sink is the append-only audit log writer.
type Sink struct {
	log    zerolog.Logger
	closer io.Closer
}

// Open creates a sink appending to the file at path.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}
	s := NewSink(f)
	s.closer = f
	return s, nil
}

// NewSink creates a sink writing to w. Used directly in tests; production
// goes through Open.
func NewSink(w io.Writer) *Sink {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	return &Sink{
		log: zerolog.New(console).With().Timestamp().Logger(),
	}
}

// Action records one attempted mutation or significant read action.
func (s *Sink) Action(op, target, subject, msg string) {
	s.event(s.log.Info(), op, target, subject).Msg(msg)
}

// Warn records a recoverable per-item failure (resolution miss, remote
// conflict, policy block).
func (s *Sink) Warn(op, target, subject, msg string, err error) {
	ev := s.event(s.log.Warn(), op, target, subject)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// Error records a failure fatal to the in-flight operation.
func (s *Sink) Error(op, target, msg string, err error) {
	ev := s.event(s.log.Error(), op, target, "")
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

func (s *Sink) event(ev *zerolog.Event, op, target, subject string) *zerolog.Event {
	ev = ev.Str("op", op)
	if target != "" {
		ev = ev.Str("target", target)
	}
	if subject != "" {
		ev = ev.Str("subject", subject)
	}
	return ev
}

// Close closes the underlying file if the sink owns one.
func (s *Sink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
