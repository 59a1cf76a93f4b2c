// Package bill defines legislative bills and their stage payloads.
// This package is PURE and must NOT import any infrastructure packages.
package bill

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// Level is the jurisdiction tier a bill belongs to.
type Level string

const (
	LevelCity     Level = "city"
	LevelState    Level = "state"
	LevelNational Level = "national"
)

// Levels lists tiers bottom-up.
var Levels = []Level{LevelCity, LevelState, LevelNational}

// Valid reports a known level.
func (l Level) Valid() bool {
	return l == LevelCity || l == LevelState || l == LevelNational
}

// Status is the coarse lifecycle position of a bill.
type Status string

const (
	StatusError              Status = "error"
	StatusStalled            Status = "stalled"
	StatusInCommittee        Status = "in_committee"
	StatusPendingVote        Status = "pending_vote"
	StatusFloorConsideration Status = "floor_consideration"
	StatusAwaitingSignature  Status = "awaiting_signature"
	StatusPassed             Status = "passed"
	StatusFailed             Status = "failed"
)

// Statuses is the closed set of statuses.
var Statuses = []Status{
	StatusError, StatusStalled, StatusInCommittee, StatusPendingVote,
	StatusFloorConsideration, StatusAwaitingSignature, StatusPassed, StatusFailed,
}

// Valid reports membership in the closed set.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// Source records who authored the bill.
type Source string

const (
	SourcePlayer     Source = "player"
	SourceLegislator Source = "legislator"
	SourceAdvocacy   Source = "advocacy"
)

// Record outcome strings for StageRecord.Status.
const (
	RecordEntered = "entered"
	RecordPassed  = "passed"
	RecordFailed  = "failed"
	RecordForced  = "forced"
)

// StageRecord is one entry of a bill's stage history.
type StageRecord struct {
	Stage       string             `json:"stage"`
	EnteredOn   calendar.GameDate  `json:"enteredOn"`
	CompletedOn *calendar.GameDate `json:"completedOn,omitempty"`
	Status      string             `json:"status"`
}

// Policy is one entry of the policy catalog a bill can enact.
type Policy struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Axis    string  `json:"axis" yaml:"axis"`
	Stance  float64 `json:"stance" yaml:"stance"`   // -1 (left/libertarian) .. +1
	Support float64 `json:"support" yaml:"support"` // baseline public support 0-100
}

// Bill is a piece of legislation moving through a workflow.
type Bill struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          Level    `json:"level"`
	JurisdictionID string   `json:"jurisdictionId"`
	Policies       []string `json:"policies"`
	ProposerID     string   `json:"proposerId"`
	Source         Source   `json:"source"`
	PublicSupport  float64  `json:"publicSupport"`

	Status            Status            `json:"status"`
	CurrentStage      string            `json:"currentStage"`
	StageScheduledFor calendar.GameDate `json:"stageScheduledFor"`
	StageEnteredOn    calendar.GameDate `json:"stageEnteredOn"`
	StageHistory      []StageRecord     `json:"stageHistory"`
	VotesCast         map[string]Choice `json:"votesCast,omitempty"`
	Detail            Detail            `json:"-"`

	ProposedOn   calendar.GameDate  `json:"proposedOn"`
	DatePassed   *calendar.GameDate `json:"datePassed,omitempty"`
	DateFailed   *calendar.GameDate `json:"dateFailed,omitempty"`
	FailureStage string             `json:"failureStage,omitempty"`
	FinalTally   *Tally             `json:"finalTally,omitempty"`
	LastError    string             `json:"lastError,omitempty"`

	// Legacy bills are driven by the heuristic lifecycle instead of a workflow.
	Legacy    bool              `json:"legacy,omitempty"`
	NextCheck calendar.GameDate `json:"nextCheck"`
}

// Terminal reports passed/failed.
func (b *Bill) Terminal() bool {
	return b.Status.Terminal()
}

// DaysInStage counts days since the current stage was entered.
func (b *Bill) DaysInStage(today calendar.GameDate) int {
	if b.StageEnteredOn.IsZero() {
		return 0
	}
	return b.StageEnteredOn.DaysUntil(today)
}

// Clone deep-copies the bill so callers can replace rather than mutate.
func (b Bill) Clone() Bill {
	out := b
	out.Policies = append([]string(nil), b.Policies...)
	if b.StageHistory != nil {
		out.StageHistory = make([]StageRecord, len(b.StageHistory))
		for i, rec := range b.StageHistory {
			out.StageHistory[i] = rec
			if rec.CompletedOn != nil {
				d := *rec.CompletedOn
				out.StageHistory[i].CompletedOn = &d
			}
		}
	}
	if b.VotesCast != nil {
		out.VotesCast = make(map[string]Choice, len(b.VotesCast))
		for k, v := range b.VotesCast {
			out.VotesCast[k] = v
		}
	}
	if b.Detail != nil {
		out.Detail = b.Detail.clone()
	}
	if b.DatePassed != nil {
		d := *b.DatePassed
		out.DatePassed = &d
	}
	if b.DateFailed != nil {
		d := *b.DateFailed
		out.DateFailed = &d
	}
	if b.FinalTally != nil {
		t := *b.FinalTally
		out.FinalTally = &t
	}
	return out
}

// EnterStage appends a history record and moves the bill to stage.
func (b *Bill) EnterStage(stage string, today, scheduledFor calendar.GameDate) {
	b.CurrentStage = stage
	b.StageEnteredOn = today
	// Scheduling never moves backwards.
	b.StageScheduledFor = calendar.Max(b.StageScheduledFor, scheduledFor)
	b.StageHistory = append(b.StageHistory, StageRecord{Stage: stage, EnteredOn: today, Status: RecordEntered})
	b.VotesCast = nil
}

// CompleteStage closes the open history record for the current stage.
func (b *Bill) CompleteStage(today calendar.GameDate, outcome string) {
	for i := len(b.StageHistory) - 1; i >= 0; i-- {
		rec := &b.StageHistory[i]
		if rec.Stage == b.CurrentStage && rec.CompletedOn == nil {
			d := today
			rec.CompletedOn = &d
			rec.Status = outcome
			return
		}
	}
}

// MarkPassed finalizes a bill as passed.
func (b *Bill) MarkPassed(today calendar.GameDate, tally *Tally) {
	d := today
	b.Status = StatusPassed
	b.DatePassed = &d
	b.FinalTally = tally
}

// MarkFailed finalizes a bill as failed at its current stage.
func (b *Bill) MarkFailed(today calendar.GameDate, tally *Tally) {
	d := today
	b.Status = StatusFailed
	b.DateFailed = &d
	b.FailureStage = b.CurrentStage
	b.FinalTally = tally
}

func (b *Bill) String() string {
	return fmt.Sprintf("%s[%s %s/%s]", b.ID, b.Level, b.CurrentStage, b.Status)
}
