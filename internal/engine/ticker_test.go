package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

func TestAdvanceDayValidation(t *testing.T) {
	e := newTestEngine()

	_, _, err := e.AdvanceDay(nil)
	assert.ErrorIs(t, err, ErrMissingCampaign)

	c := defaultCampaign(t, calendar.MustNew(2025, 3, 10))
	noDate := c.Clone()
	noDate.CurrentDate = calendar.GameDate{}
	_, _, err = e.AdvanceDay(noDate)
	assert.ErrorIs(t, err, ErrMissingDate)

	noCity := c.Clone()
	noCity.CityID = "atlantis"
	_, _, err = e.AdvanceDay(noCity)
	assert.ErrorIs(t, err, ErrMissingCity)

	pending := c.Clone()
	pending.PendingElectionID = "springfield_mayor"
	next, res, err := e.AdvanceDay(pending)
	assert.ErrorIs(t, err, ErrElectionPending)
	assert.Nil(t, next)
	assert.Nil(t, res)
}

func TestAdvanceDayLeavesInputUntouched(t *testing.T) {
	e := newTestEngine()
	start := calendar.MustNew(2025, 3, 10)
	c := defaultCampaign(t, start)
	st, _ := c.Politicians.State("p_player")
	st.ActionPoints = 0
	c.Politicians.SetState("p_player", st)

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)

	assert.Equal(t, start, c.CurrentDate)
	assert.Equal(t, calendar.MustNew(2025, 3, 11), next.CurrentDate)
	assert.Equal(t, next.CurrentDate, res.Date)
	before, _ := c.Politicians.State("p_player")
	after, _ := next.Politicians.State("p_player")
	assert.Equal(t, 0, before.ActionPoints)
	assert.Equal(t, 3, after.ActionPoints)
}

func TestAdvanceDayExecutionOrder(t *testing.T) {
	e := newTestEngine()
	// 2025-06-02 is a Monday.
	c := defaultCampaign(t, calendar.MustNew(2025, 6, 1))

	_, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	assert.Equal(t, []string{
		StepCalendar, StepResetResources, StepStaffTasks, StepWeeklyPolling,
		StepRandomEvent, StepOverdueVotes, StepLegislative,
		StepCampaigning, StepElectionNight,
	}, res.ExecutionOrder)

	var polls int
	for _, ev := range res.Effects {
		if ev.Type == events.EventTypePoll {
			polls++
		}
	}
	assert.Positive(t, polls)
	assert.Equal(t, events.EventTypeDayAdvanced, res.Effects[len(res.Effects)-1].Type)
}

func TestCalendarRolloverRunsMonthlyAndNewYear(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 12, 31))
	ageBefore := map[string]int{}
	for _, id := range c.Politicians.IDs() {
		st, _ := c.Politicians.State(id)
		ageBefore[id] = st.Age
	}

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	assert.Equal(t, calendar.MustNew(2026, 1, 1), next.CurrentDate)
	assert.Contains(t, res.ExecutionOrder, StepMonthly)
	assert.Contains(t, res.ExecutionOrder, "monthly:"+PhaseStatistics)
	assert.Equal(t, StepNewYear, res.ExecutionOrder[len(res.ExecutionOrder)-1])
	for _, id := range next.Politicians.IDs() {
		st, _ := next.Politicians.State(id)
		assert.Equal(t, ageBefore[id]+1, st.Age, id)
	}
}

func TestNationalBillForcedAfterAgeCeiling(t *testing.T) {
	e := newTestEngine()
	start := calendar.MustNew(2025, 3, 10)
	c := defaultCampaign(t, start)
	b, err := e.Progression().Initialize(bill.Bill{
		ID:             "b_nat",
		Name:           "Clean Energy Mandate Act",
		Level:          bill.LevelNational,
		JurisdictionID: c.CountryID,
		Policies:       []string{"clean_energy_mandate"},
		ProposerID:     "p_c1",
	}, c.PoliticalSystemID, start.AddDays(-45))
	require.NoError(t, err)
	require.Equal(t, "bill_introduced", b.CurrentStage)
	b.StageScheduledFor = start.AddDays(100)
	c.AddBill(b)

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	got, ok := next.FindBill("b_nat")
	require.True(t, ok)
	assert.Equal(t, "committee_assignment", got.CurrentStage)
	require.NotEmpty(t, got.StageHistory)
	var forced bool
	for _, rec := range got.StageHistory {
		if rec.Stage == "bill_introduced" && rec.Status == bill.RecordForced {
			forced = true
		}
	}
	assert.True(t, forced)
	require.Len(t, res.BillUpdates, 1)
	assert.Equal(t, "bill_introduced", res.BillUpdates[0].FromStage)
}

func TestOverduePendingVoteAutoResolved(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor.AddDays(PendingVoteGrace - 1)

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	got, ok := next.FindBill(b.ID)
	require.True(t, ok)
	assert.Equal(t, bill.StatusFailed, got.Status)
	require.NotNil(t, got.FinalTally)
	assert.Equal(t, 9, got.FinalTally.Nay)
	require.Len(t, next.RecentOutcomes, 1)
	assert.Equal(t, b.ID, next.RecentOutcomes[0].BillID)

	var auto, resolved bool
	for _, ev := range res.Effects {
		auto = auto || ev.Type == events.EventTypeVoteAutoResolve
		resolved = resolved || ev.Type == events.EventTypeBillResolved
	}
	assert.True(t, auto)
	assert.True(t, resolved)
}

func TestImpendingVoteQueuedForPlayer(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor.AddDays(-ImpendingVoteWindow)

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	require.Len(t, next.VoteQueue, 1)
	q := next.VoteQueue[0]
	assert.Equal(t, b.ID, q.BillID)
	assert.Equal(t, "p_player", q.VoterID)
	assert.Equal(t, b.StageScheduledFor, q.ScheduledFor)

	var requested bool
	for _, ev := range res.Effects {
		requested = requested || ev.Type == events.EventTypeVoteRequested
	}
	assert.True(t, requested)
}

type failingStats struct{ err error }

func (f failingStats) UpdateStats(collaborators.StatInput) (collaborators.StatOutput, error) {
	return collaborators.StatOutput{}, f.err
}

type panickingBudget struct{}

func (panickingBudget) UpdateBudget(collaborators.BudgetInput) (collaborators.BudgetOutput, error) {
	panic("ledger corrupted")
}

func TestMonthlyPhaseFailuresAreIsolated(t *testing.T) {
	boom := errors.New("stat service down")
	e := newTestEngine(WithCollaborators(collaborators.Set{
		Stats:  failingStats{err: boom},
		Budget: panickingBudget{},
	}))
	c := defaultCampaign(t, calendar.MustNew(2025, 2, 28))

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	require.Len(t, res.Errors, 2)

	assert.Equal(t, PhaseStatistics, res.Errors[0].Phase)
	assert.ErrorIs(t, res.Errors[0], boom)
	assert.Equal(t, PhaseBudget, res.Errors[1].Phase)
	assert.Contains(t, res.Errors[1].Message, "ledger corrupted")
	assert.False(t, res.Errors[0].At.IsZero())

	assert.Contains(t, res.ExecutionOrder, "monthly:"+PhaseStatistics+":failed")
	assert.Contains(t, res.ExecutionOrder, "monthly:"+PhasePolitical)
	assert.Contains(t, res.ExecutionOrder, "monthly:"+PhaseScheduled)
	assert.NotNil(t, res.PoliticalUpdates.ApprovalRating)

	// Failed phases leave the city statistics untouched.
	assert.JSONEq(t, string(c.Jurisdictions[c.CityID].Stats), string(next.Jurisdictions[c.CityID].Stats))
}

func TestMonthlyKeepsPoliticalValuesInRange(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 2, 28))

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	// March opens budget season.
	var budgetSeason bool
	for _, ev := range res.Events {
		budgetSeason = budgetSeason || ev.Scheduled
	}
	assert.True(t, budgetSeason)

	for id, j := range next.Jurisdictions {
		assert.InDelta(t, 100, rules.Sum(j.Popularity), 0.5, id)
	}
	for _, id := range next.Politicians.IDs() {
		st, _ := next.Politicians.State(id)
		assert.GreaterOrEqual(t, st.ApprovalRating, 0.0, id)
		assert.LessOrEqual(t, st.ApprovalRating, 100.0, id)
		assert.GreaterOrEqual(t, st.PoliticalCapital, 0.0, id)
		assert.LessOrEqual(t, st.PoliticalCapital, 100.0, id)
	}
	var processed bool
	for _, ev := range res.Effects {
		processed = processed || ev.Type == events.EventTypeMonthProcessed
	}
	assert.True(t, processed)
}

func TestElectionNightBlocksTicks(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 11, 3))

	next, res, err := e.AdvanceDay(c)
	require.NoError(t, err)
	assert.Equal(t, "springfield_mayor", next.PendingElectionID)
	var night bool
	for _, ev := range res.Effects {
		night = night || ev.Type == events.EventTypeElectionNight
	}
	assert.True(t, night)

	_, _, err = e.AdvanceDay(next)
	assert.ErrorIs(t, err, ErrElectionPending)
}

func TestElectionDay(t *testing.T) {
	assert.Equal(t, calendar.MustNew(2024, 11, 5), ElectionDay(2024))
	assert.Equal(t, calendar.MustNew(2025, 11, 4), ElectionDay(2025))
	assert.Equal(t, calendar.MustNew(2026, 11, 3), ElectionDay(2026))
}

func TestAdvanceToNextElectionStopsOnElectionNight(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 10, 1))

	next, results, err := e.AdvanceToNextElection(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, calendar.MustNew(2025, 11, 4), next.CurrentDate)
	assert.Equal(t, "springfield_mayor", next.PendingElectionID)
	assert.Len(t, results, 34)
}

func TestAdvanceToNextYear(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 12, 20))

	next, results, err := e.AdvanceToNextYear(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, calendar.MustNew(2026, 1, 1), next.CurrentDate)
	assert.Len(t, results, 12)
}

func TestAdvanceUntilHonorsCancellation(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next, results, err := e.AdvanceUntil(ctx, c, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Same(t, c, next)
}
