package storage

import (
	"context"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/events"
)

// WriteRecorder observes event writes. *metrics.Collector implements it.
type WriteRecorder interface {
	RecordEventWrite(err error)
}

// EventSink adapts an EventRepository to events.EventPersister so the
// in-memory log writes through to the database.
type EventSink struct {
	repo    EventRepository
	metrics WriteRecorder
	timeout time.Duration
}

// NewEventSink creates a write-through sink. metrics may be nil.
func NewEventSink(repo EventRepository, metrics WriteRecorder) *EventSink {
	return &EventSink{repo: repo, metrics: metrics, timeout: 5 * time.Second}
}

// Append persists one event.
func (s *EventSink) Append(e events.GameEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err := s.repo.AppendEvent(ctx, e)
	if s.metrics != nil {
		s.metrics.RecordEventWrite(err)
	}
	return err
}

var _ events.EventPersister = (*EventSink)(nil)
