package engine

import (
	"fmt"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

// Monthly phase names, in pipeline order.
const (
	PhaseStatistics  = "statistics"
	PhaseBudget      = "budget"
	PhasePolitical   = "political"
	PhaseLegislative = "legislative"
	PhaseEvents      = "events"
	PhaseCoalitions  = "coalitions"
	PhaseScheduled   = "scheduled_events"
)

type phase struct {
	name string
	run  func(*tick) error
}

// MonthlyOrchestrator runs the fixed monthly pipeline. Every phase works on
// its own copy of the campaign; a phase that fails or panics is discarded
// and the next one starts from the last good state.
type MonthlyOrchestrator struct {
	engine *Engine
	logger *logger.Logger
	phases []phase
}

// NewMonthlyOrchestrator wires the pipeline to the engine's subsystems.
func NewMonthlyOrchestrator(e *Engine, log *logger.Logger) *MonthlyOrchestrator {
	m := &MonthlyOrchestrator{engine: e, logger: log}
	m.phases = []phase{
		{PhaseStatistics, m.statistics},
		{PhaseBudget, m.budget},
		{PhasePolitical, e.political.Update},
		{PhaseLegislative, e.legislative.Monthly},
		{PhaseEvents, func(t *tick) error { return e.world.Random(t, MonthlyEventChance) }},
		{PhaseCoalitions, func(t *tick) error { return e.world.Mobilize(t, nil) }},
		{PhaseScheduled, e.world.Scheduled},
	}
	return m
}

// Run executes every phase in order, then validates the result.
func (m *MonthlyOrchestrator) Run(t *tick) {
	before := t.c.Clone()
	newsFrom := len(t.result.NewsItems)
	for _, p := range m.phases {
		sub := t.fork()
		if err := m.runPhase(p, sub); err != nil {
			pe := PhaseError{Phase: p.name, Date: t.today, At: time.Now().UTC(), Message: err.Error(), Err: err}
			t.result.Errors = append(t.result.Errors, pe)
			t.result.ExecutionOrder = append(t.result.ExecutionOrder, "monthly:"+p.name+":failed")
			t.emit(events.New(events.EventTypePhaseError, t.today, "SYSTEM_MONTHLY", p.name, pe.Error(), pe))
			m.engine.metrics.RecordPhaseError(p.name)
			m.logger.Error("monthly phase failed", "phase", p.name, "error", err)
			continue
		}
		t.commit(sub, "monthly:"+p.name)
	}
	m.validate(before, t)

	monthly := events.Dedupe(t.result.NewsItems[newsFrom:])
	t.result.NewsItems = append(t.result.NewsItems[:newsFrom], monthly...)
	t.emit(events.New(events.EventTypeMonthProcessed, t.today, "SYSTEM_MONTHLY", "",
		fmt.Sprintf("Month %d-%02d processed with %d phase errors", t.today.Year, t.today.Month, len(t.result.Errors)), nil))
}

func (m *MonthlyOrchestrator) runPhase(p phase, t *tick) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.run(t)
}

// validate restores approval and capital values that are non-finite or out
// of range after the pipeline.
func (m *MonthlyOrchestrator) validate(before *campaign.Campaign, t *tick) {
	store := t.c.Politicians
	if store == nil || before.Politicians == nil {
		return
	}
	for _, id := range store.IDs() {
		st, _ := store.State(id)
		prev, _ := before.Politicians.State(id)
		changed := false
		if !valid(st.ApprovalRating) {
			m.logger.Warn("validation warning", "warning", ValidationWarning{Field: "approvalRating", Target: id, Value: st.ApprovalRating}.Error())
			st.ApprovalRating = prev.ApprovalRating
			delete(t.result.PoliticalUpdates.ApprovalRating, id)
			changed = true
		}
		if !valid(st.PoliticalCapital) {
			m.logger.Warn("validation warning", "warning", ValidationWarning{Field: "politicalCapital", Target: id, Value: st.PoliticalCapital}.Error())
			st.PoliticalCapital = prev.PoliticalCapital
			delete(t.result.PoliticalUpdates.PoliticalCapital, id)
			changed = true
		}
		if changed {
			store.SetState(id, st)
		}
	}
}

func valid(v float64) bool {
	return rules.Finite(v) && v >= 0 && v <= 100
}

// statistics applies the stat updater to every jurisdiction.
func (m *MonthlyOrchestrator) statistics(t *tick) error {
	passed := passedBills(t.c)
	for _, jid := range sortedKeys(t.c.Jurisdictions) {
		j := t.c.Jurisdictions[jid]
		out, err := m.engine.collab.Stats.UpdateStats(collaborators.StatInput{
			Date:         t.today,
			Jurisdiction: j,
			PassedBills:  passed,
			Catalog:      t.c.PolicyCatalog,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", jid, err)
		}
		stats, err := j.Stats.Apply(out.Delta)
		if err != nil {
			return fmt.Errorf("%s: %w", jid, err)
		}
		j.Stats = stats
		t.c.Jurisdictions[jid] = j
		t.news(out.News...)
	}
	return nil
}

// budget updates the city and every region.
func (m *MonthlyOrchestrator) budget(t *tick) error {
	targets := append([]string{t.c.CityID}, t.c.RegionIDs...)
	for i, jid := range targets {
		j, ok := t.c.Jurisdictions[jid]
		if !ok {
			continue
		}
		out, err := m.engine.collab.Budget.UpdateBudget(collaborators.BudgetInput{Date: t.today, Jurisdiction: j, Regional: i > 0})
		if err != nil {
			return fmt.Errorf("%s: %w", jid, err)
		}
		stats, err := j.Stats.Apply(out.Delta)
		if err != nil {
			return fmt.Errorf("%s: %w", jid, err)
		}
		j.Stats = stats
		if out.Budget != nil {
			j.Budget = out.Budget
		}
		t.c.Jurisdictions[jid] = j
		t.news(out.News...)
	}
	return nil
}

// passedBills returns the bills behind passed outcomes since the last pass.
func passedBills(c *campaign.Campaign) []bill.Bill {
	ids := map[string]bool{}
	for _, o := range c.RecentOutcomes {
		if o.Status == bill.StatusPassed {
			ids[o.BillID] = true
		}
	}
	var out []bill.Bill
	for _, b := range c.ActiveBills() {
		if ids[b.ID] {
			out = append(out, b)
		}
	}
	for _, b := range c.ArchivedBills {
		if ids[b.ID] {
			out = append(out, b.Clone())
		}
	}
	return out
}
