// Package ai lets a language model write the in-game press coverage. A Wire
// files copy for assignments, an Allowance caps what the desk may spend, and
// NewsWriter falls back to rule-based coverage whenever the wire is silent.
package ai

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StoryKind is the slot an assignment fills in the paper.
type StoryKind string

const (
	KindArticle  StoryKind = "article"
	KindFollowUp StoryKind = "follow_up"
)

// Assignment is one story commissioned from the wire.
type Assignment struct {
	Kind      StoryKind
	RelatedID string // world event the story covers
	Brief     string // event facts and task for the writer
	MaxWords  int
	Tone      float64 // sampling temperature
}

// Copy is what the wire filed for an assignment.
type Copy struct {
	Text    string
	Model   string
	Tokens  int
	Elapsed time.Duration
}

// Ledger summarizes what the wire has filed.
type Ledger struct {
	Filed     map[StoryKind]int `json:"filed"`
	Tokens    int               `json:"tokens"`
	SpentUSD  float64           `json:"spent_usd"`
	Remaining float64           `json:"remaining_usd"`
}

// Stories is the total number of filed stories.
func (l Ledger) Stories() int {
	n := 0
	for _, v := range l.Filed {
		n += v
	}
	return n
}

// Wire is a source of written copy.
type Wire interface {
	File(ctx context.Context, a Assignment) (Copy, error)
	Ledger() Ledger
	Name() string
	Ready() bool
}

// Allowance caps desk spending per calendar day and month. Spend is booked
// under period keys, so a new day or month starts from zero.
type Allowance struct {
	mu      sync.Mutex
	daily   float64
	monthly float64
	byDay   map[string]float64
	byMonth map[string]float64
	now     func() time.Time
}

// NewAllowance caps spend at daily and monthly USD.
func NewAllowance(daily, monthly float64) *Allowance {
	return &Allowance{
		daily:   daily,
		monthly: monthly,
		byDay:   map[string]float64{},
		byMonth: map[string]float64{},
		now:     time.Now,
	}
}

func (a *Allowance) periods() (day, month string) {
	t := a.now().UTC()
	return t.Format("2006-01-02"), t.Format("2006-01")
}

// Covers reports whether cost fits both caps.
func (a *Allowance) Covers(cost float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, m := a.periods()
	return a.byDay[d]+cost <= a.daily && a.byMonth[m]+cost <= a.monthly
}

// Charge books cost against the current day and month.
func (a *Allowance) Charge(cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, m := a.periods()
	a.byDay[d] += cost
	a.byMonth[m] += cost
}

// Left is what remains of this month's cap.
func (a *Allowance) Left() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, m := a.periods()
	return a.monthly - a.byMonth[m]
}

func (a *Allowance) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, m := a.periods()
	return fmt.Sprintf("today $%.2f of %.2f, %s $%.2f of %.2f", a.byDay[d], a.daily, m, a.byMonth[m], a.monthly)
}
