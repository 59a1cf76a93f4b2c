// Package events provides the effects log of the simulation: world events,
// news items and the append-only record of everything a tick produced.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// EventType defines the category of a logged event.
type EventType string

const (
	EventTypeDayAdvanced     EventType = "DAY_ADVANCED"
	EventTypeMonthProcessed  EventType = "MONTH_PROCESSED"
	EventTypeNews            EventType = "NEWS"
	EventTypeWorldEvent      EventType = "WORLD_EVENT"
	EventTypeBillProposed    EventType = "BILL_PROPOSED"
	EventTypeBillAdvanced    EventType = "BILL_ADVANCED"
	EventTypeBillResolved    EventType = "BILL_RESOLVED"
	EventTypeVoteRequested   EventType = "VOTE_REQUESTED"
	EventTypeVoteCast        EventType = "VOTE_CAST"
	EventTypeVoteAutoResolve EventType = "VOTE_AUTO_RESOLVED"
	EventTypePoll            EventType = "POLL"
	EventTypeElectionNight   EventType = "ELECTION_NIGHT"
	EventTypeElectionResult  EventType = "ELECTION_RESULT"
	EventTypeStaffTaskDone   EventType = "STAFF_TASK_DONE"
	EventTypePhaseError      EventType = "PHASE_ERROR"
	EventTypeNotification    EventType = "NOTIFICATION"
)

// GameEvent represents an immutable record of something a tick produced.
type GameEvent struct {
	ID         string            `json:"id"`
	CampaignID string            `json:"campaign_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	ActorID    string            `json:"actor_id"`  // who caused it
	TargetID   string            `json:"target_id"` // bill, election or politician affected
	Payload    interface{}       `json:"payload"`
	Date       calendar.GameDate `json:"date"`
	Message    string            `json:"message"`
}

// New builds an event stamped with a fresh id.
func New(eventType EventType, date calendar.GameDate, actorID, targetID, message string, payload interface{}) GameEvent {
	return GameEvent{
		ID:        NewID(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		ActorID:   actorID,
		TargetID:  targetID,
		Payload:   payload,
		Date:      date,
		Message:   message,
	}
}

// NewID creates a unique identifier.
func NewID() string {
	return uuid.NewString()
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of campaign events, written
// through to an optional persister.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds events to the log. The in-memory log always keeps them; the
// first persister error is returned.
func (el *EventLog) Append(evs ...GameEvent) error {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, evs...)

	if el.persister == nil {
		return nil
	}
	var firstErr error
	for _, e := range evs {
		if err := el.persister.Append(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Load seeds the log from storage without writing back.
func (el *EventLog) Load(evs []GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events[:0:0], evs...)
}

// GetByActor returns all events caused by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	return el.filter(func(e GameEvent) bool { return e.ActorID == actorID })
}

// GetByDate returns all events of one simulated day.
func (el *EventLog) GetByDate(date calendar.GameDate) []GameEvent {
	return el.filter(func(e GameEvent) bool { return e.Date == date })
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	return el.filter(func(e GameEvent) bool { return e.Type == t })
}

// Since returns a copy of the events after the first n.
func (el *EventLog) Since(n int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(el.events) {
		return nil
	}
	return append([]GameEvent(nil), el.events[n:]...)
}

// Len is the number of logged events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	return el.Since(0)
}

func (el *EventLog) filter(keep func(GameEvent) bool) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}
