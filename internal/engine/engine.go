package engine

import (
	"time"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/collaborators/baseline"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/legislation/progression"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Recorder receives tick metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordTick(start time.Time, err error)
	RecordPhaseError(phase string)
	RecordBillResolution(level, status string)
	RecordNews(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordTick(time.Time, error)         {}
func (nopRecorder) RecordPhaseError(string)             {}
func (nopRecorder) RecordBillResolution(string, string) {}
func (nopRecorder) RecordNews(int)                      {}

// Engine is the central orchestrator that wires the progression engine and
// the collaborators to the daily and monthly routines.
type Engine struct {
	logger      *logger.Logger
	rng         random.Source
	progression *progression.Engine
	collab      collaborators.Set
	metrics     Recorder

	// Daily probability of an unscheduled world event.
	dailyEventChance float64

	// Sub-systems
	staff       *StaffSystem
	polling     *PollingSystem
	votes       *VoteSystem
	legislative *LegislativeSystem
	political   *PoliticalSystem
	world       *EventSystem
	elections   *ElectionSystem
	monthly     *MonthlyOrchestrator
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom injects the random source every subsystem draws from.
func WithRandom(src random.Source) Option {
	return func(e *Engine) { e.rng = src }
}

// WithProgression replaces the bill progression engine.
func WithProgression(p *progression.Engine) Option {
	return func(e *Engine) { e.progression = p }
}

// WithCollaborators replaces the collaborator set. Nil members keep the
// baseline implementation.
func WithCollaborators(set collaborators.Set) Option {
	return func(e *Engine) { e.collab = set }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithDailyEventChance overrides the chance of a random event on any day.
func WithDailyEventChance(p float64) Option {
	return func(e *Engine) { e.dailyEventChance = p }
}

// New initializes the engine and its subsystems.
func New(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{logger: log, metrics: nopRecorder{}, dailyEventChance: 0.01}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Discard()
	}
	if e.rng == nil {
		e.rng = random.NewSeeded(time.Now().UnixNano())
	}
	if e.progression == nil {
		e.progression = progression.New(nil, nil, e.rng)
	}
	e.collab = fillCollaborators(e.collab, baseline.New(e.rng))

	e.staff = NewStaffSystem(e.logger)
	e.polling = NewPollingSystem(e.rng, e.logger)
	e.votes = NewVoteSystem(e.progression, NewVoteSimulator(e.rng), e.metrics, e.logger)
	e.legislative = NewLegislativeSystem(e.progression, e.votes, e.collab.Author, e.rng, e.metrics, e.logger)
	e.political = NewPoliticalSystem(e.rng, e.logger)
	e.world = NewEventSystem(e.collab, e.rng, e.logger)
	e.elections = NewElectionSystem(e.rng, e.logger)
	e.monthly = NewMonthlyOrchestrator(e, e.logger)
	return e
}

func fillCollaborators(set, def collaborators.Set) collaborators.Set {
	if set.Stats == nil {
		set.Stats = def.Stats
	}
	if set.Budget == nil {
		set.Budget = def.Budget
	}
	if set.Events == nil {
		set.Events = def.Events
	}
	if set.News == nil {
		set.News = def.News
	}
	if set.Coalitions == nil {
		set.Coalitions = def.Coalitions
	}
	if set.Author == nil {
		set.Author = def.Author
	}
	return set
}

// Progression exposes the bill progression engine for player actions.
func (e *Engine) Progression() *progression.Engine {
	return e.progression
}

// tick is the working state of one AdvanceDay call.
type tick struct {
	c       *campaign.Campaign
	today   calendar.GameDate
	result  *TickResult
	touched map[string]bool // bills already mutated this tick
}

func newTick(c *campaign.Campaign, today calendar.GameDate) *tick {
	return &tick{c: c, today: today, result: &TickResult{Date: today}, touched: map[string]bool{}}
}

// fork gives a phase its own copy of the campaign and an empty result.
func (t *tick) fork() *tick {
	touched := make(map[string]bool, len(t.touched))
	for id := range t.touched {
		touched[id] = true
	}
	return &tick{c: t.c.Clone(), today: t.today, result: &TickResult{Date: t.today}, touched: touched}
}

// commit adopts a successful fork.
func (t *tick) commit(sub *tick, step string) {
	t.c = sub.c
	t.touched = sub.touched
	if step != "" {
		sub.result.ExecutionOrder = append([]string{step}, sub.result.ExecutionOrder...)
	}
	t.result.merge(sub.result)
}

func (t *tick) step(name string) {
	t.result.ExecutionOrder = append(t.result.ExecutionOrder, name)
}

func (t *tick) emit(evs ...events.GameEvent) {
	for i := range evs {
		if evs[i].CampaignID == "" {
			evs[i].CampaignID = t.c.ID
		}
	}
	t.result.Effects = append(t.result.Effects, evs...)
}

// news stamps and records news items, mirroring each as a NEWS effect.
func (t *tick) news(items ...events.NewsItem) {
	for _, n := range items {
		if n.ID == "" {
			n.ID = events.NewID()
		}
		if n.Date.IsZero() {
			n.Date = t.today
		}
		t.result.NewsItems = append(t.result.NewsItems, n)
		t.emit(events.New(events.EventTypeNews, t.today, "SYSTEM_NEWS", n.RelatedID, n.Headline, n))
	}
}

func (t *tick) notify(targetID, message string) {
	t.emit(events.New(events.EventTypeNotification, t.today, "SYSTEM", targetID, message, nil))
}

// billUpdate records a transition when the bill actually changed.
func (t *tick) billUpdate(before, after bill.Bill, err error) bool {
	if before.CurrentStage == after.CurrentStage && before.Status == after.Status && err == nil {
		return false
	}
	u := BillUpdate{
		BillID:    after.ID,
		Level:     after.Level,
		FromStage: before.CurrentStage,
		ToStage:   after.CurrentStage,
		From:      before.Status,
		To:        after.Status,
	}
	if err != nil {
		u.Error = err.Error()
	}
	t.result.BillUpdates = append(t.result.BillUpdates, u)
	return true
}
