package swap

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Severity classifies an operation event for display purposes.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Event is a structured, human-readable record of an orchestrator operation. The UI
// layer receives the raw fields and is free to format them however it likes.
type Event struct {
	Kind      string    `json:"kind"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives operation events as they are emitted. Sinks are invoked
// synchronously from the session's calling goroutine.
type EventSink func(Event)

func (s *Session) emit(severity Severity, kind, message string) {
	evt := Event{
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		Timestamp: s.clock(),
	}

	entry := s.logger.WithFields(logrus.Fields{
		"kind":  kind,
		"state": s.state,
	})
	switch severity {
	case SeverityWarn:
		entry.Warn(message)
	case SeverityError:
		entry.Error(message)
	default:
		entry.Info(message)
	}

	if s.sink != nil {
		s.sink(evt)
	}
}
