package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

var (
	ErrMissingCampaign = errors.New("engine: no campaign")
	ErrMissingDate     = errors.New("engine: campaign has no current date")
	ErrMissingCity     = errors.New("engine: campaign has no city")
	// ErrElectionPending blocks ticks until the pending election is resolved.
	ErrElectionPending = errors.New("engine: election night pending resolution")
	ErrUnknownElection = errors.New("engine: unknown election")
	ErrUnknownBill     = errors.New("engine: unknown bill")
	ErrNoQueuedVote    = errors.New("engine: no queued vote for voter")
	ErrNoActionPoints  = errors.New("engine: no action points left")
	ErrInvalidCommand  = errors.New("engine: invalid command")
)

// PhaseError is a failure captured inside one monthly phase. The phase is
// treated as a no-op and the pipeline continues.
type PhaseError struct {
	Phase   string            `json:"phase"`
	Date    calendar.GameDate `json:"date"`
	At      time.Time         `json:"at"`
	Message string            `json:"message"`
	Err     error             `json:"-"`
}

func (e PhaseError) Error() string {
	return fmt.Sprintf("phase %s on %s: %s", e.Phase, e.Date, e.Message)
}

func (e PhaseError) Unwrap() error { return e.Err }

// ValidationWarning reports a discarded non-finite or out-of-range value.
type ValidationWarning struct {
	Field  string
	Target string
	Value  float64
}

func (w ValidationWarning) Error() string {
	return fmt.Sprintf("discarded %s of %s: %v", w.Field, w.Target, w.Value)
}
