package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// MaxFastForwardDays bounds a single fast-forward call.
const MaxFastForwardDays = 4*366 + 1

// Daily step names recorded in TickResult.ExecutionOrder.
const (
	StepCalendar       = "calendar"
	StepResetResources = "reset_resources"
	StepStaffTasks     = "staff_tasks"
	StepWeeklyPolling  = "weekly_polling"
	StepRandomEvent    = "random_event"
	StepOverdueVotes   = "overdue_votes"
	StepLegislative    = "legislative_daily"
	StepMonthly        = "monthly"
	StepCampaigning    = "campaigning"
	StepElectionNight  = "election_night"
	StepNewYear        = "new_year"
)

// AdvanceDay simulates one day on a copy of c. On error the returned
// campaign is nil and c is left exactly as it was.
func (e *Engine) AdvanceDay(c *campaign.Campaign) (next *campaign.Campaign, res *TickResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			next, res = nil, nil
			err = fmt.Errorf("engine: tick panicked: %v", r)
		}
		e.metrics.RecordTick(start, err)
	}()
	if err := validateCampaign(c); err != nil {
		return nil, nil, err
	}

	t := newTick(c.Clone(), c.CurrentDate.Next())
	t.c.CurrentDate = t.today
	t.step(StepCalendar)

	t.step(StepResetResources)
	e.staff.ResetResources(t)

	t.step(StepStaffTasks)
	e.staff.Process(t)

	if e.polling.Due(t.today) {
		t.step(StepWeeklyPolling)
		e.polling.Weekly(t)
	}

	t.step(StepRandomEvent)
	e.isolated(t, StepRandomEvent, func(sub *tick) error {
		return e.world.Random(sub, e.dailyEventChance)
	})

	t.step(StepOverdueVotes)
	e.votes.ResolveOverdue(t)

	t.step(StepLegislative)
	e.legislative.Daily(t)

	if t.today.IsFirstOfMonth() {
		t.step(StepMonthly)
		e.monthly.Run(t)
	}

	t.step(StepCampaigning)
	e.elections.Campaign(t)

	t.step(StepElectionNight)
	e.elections.ElectionNight(t)

	if t.today.IsNewYear() {
		t.step(StepNewYear)
		e.elections.NewYear(t)
	}

	t.result.NewsItems = events.Dedupe(t.result.NewsItems)
	t.emit(events.New(events.EventTypeDayAdvanced, t.today, "SYSTEM_CLOCK", "", "Day advanced to "+t.today.String(), nil))
	e.metrics.RecordNews(len(t.result.NewsItems))
	e.logger.Debug("day advanced", "campaign", t.c.ID, "date", t.today.String(),
		"news", len(t.result.NewsItems), "bill_updates", len(t.result.BillUpdates), "errors", len(t.result.Errors))
	return t.c, t.result, nil
}

func validateCampaign(c *campaign.Campaign) error {
	switch {
	case c == nil:
		return ErrMissingCampaign
	case c.CurrentDate.IsZero() || !c.CurrentDate.Valid():
		return ErrMissingDate
	case c.PendingElectionID != "":
		return fmt.Errorf("%w: %s", ErrElectionPending, c.PendingElectionID)
	}
	if _, ok := c.City(); !ok {
		return ErrMissingCity
	}
	return nil
}

// isolated runs a daily step on a fork and keeps it only when it succeeds.
func (e *Engine) isolated(t *tick, name string, fn func(*tick) error) {
	sub := t.fork()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(sub)
	}()
	if err != nil {
		t.result.Errors = append(t.result.Errors, PhaseError{Phase: name, Date: t.today, At: time.Now().UTC(), Message: err.Error(), Err: err})
		e.metrics.RecordPhaseError(name)
		e.logger.Error("daily step failed", "step", name, "error", err)
		return
	}
	t.commit(sub, "")
}

// StopFunc decides whether a fast-forward should end after a day.
type StopFunc func(c *campaign.Campaign) bool

// AdvanceUntil advances day by day until stop returns true, an election
// becomes pending or ctx is cancelled. It returns the last good campaign
// together with every tick result. A cancelled context is reported as an
// error alongside the progress made.
func (e *Engine) AdvanceUntil(ctx context.Context, c *campaign.Campaign, stop StopFunc) (*campaign.Campaign, []*TickResult, error) {
	var results []*TickResult
	for day := 0; day < MaxFastForwardDays; day++ {
		if err := ctx.Err(); err != nil {
			return c, results, err
		}
		next, res, err := e.AdvanceDay(c)
		if err != nil {
			return c, results, err
		}
		c = next
		results = append(results, res)
		if c.PendingElectionID != "" || (stop != nil && stop(c)) {
			return c, results, nil
		}
	}
	return c, results, nil
}

// AdvanceToNextElection runs until the next unresolved election date.
func (e *Engine) AdvanceToNextElection(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, []*TickResult, error) {
	if err := validateCampaign(c); err != nil {
		return nil, nil, err
	}
	target, ok := NextElectionDate(c)
	return e.AdvanceUntil(ctx, c, func(cur *campaign.Campaign) bool {
		if !ok {
			target, ok = NextElectionDate(cur)
			return false
		}
		return cur.CurrentDate.OnOrAfter(target)
	})
}

// AdvanceToNextYear runs until January 1st of the following year.
func (e *Engine) AdvanceToNextYear(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, []*TickResult, error) {
	if err := validateCampaign(c); err != nil {
		return nil, nil, err
	}
	target := calendar.MustNew(c.CurrentDate.Year+1, 1, 1)
	return e.AdvanceUntil(ctx, c, func(cur *campaign.Campaign) bool {
		return cur.CurrentDate.OnOrAfter(target)
	})
}

// NextElectionDate returns the earliest unresolved election after today.
func NextElectionDate(c *campaign.Campaign) (calendar.GameDate, bool) {
	var best calendar.GameDate
	found := false
	for _, el := range c.Elections {
		if el.Resolved || !el.Date.After(c.CurrentDate) {
			continue
		}
		if !found || el.Date.Before(best) {
			best, found = el.Date, true
		}
	}
	return best, found
}
