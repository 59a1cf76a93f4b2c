package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

type memorySaver struct {
	mu    sync.Mutex
	saves []calendar.GameDate
}

func (m *memorySaver) SaveCampaign(_ context.Context, c *campaign.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, c.CurrentDate)
	return nil
}

func TestSessionAdvanceDayAutosavesAndNotifies(t *testing.T) {
	saver := &memorySaver{}
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 3, 10)), logger.Discard(), WithSaver(saver))
	var seen []calendar.GameDate
	s.Observe(func(c *campaign.Campaign, res *TickResult) { seen = append(seen, res.Date) })

	res, err := s.AdvanceDay(context.Background())
	require.NoError(t, err)
	day := calendar.MustNew(2025, 3, 11)
	assert.Equal(t, day, res.Date)
	assert.Equal(t, day, s.Campaign().CurrentDate)
	assert.Equal(t, []calendar.GameDate{day}, saver.saves)
	assert.Equal(t, []calendar.GameDate{day}, seen)
	assert.NotEmpty(t, s.Events().GetByType(events.EventTypeDayAdvanced))
}

func TestSessionCampaignIsSnapshot(t *testing.T) {
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 3, 10)), nil)
	snap := s.Campaign()
	snap.CurrentDate = calendar.MustNew(1999, 1, 1)
	assert.Equal(t, calendar.MustNew(2025, 3, 10), s.Campaign().CurrentDate)
}

func TestSessionCastVote(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor.AddDays(-ImpendingVoteWindow)
	s := NewSession(e, c, nil)
	ctx := context.Background()

	_, err := s.CastVote(ctx, b.ID, bill.Yea)
	assert.ErrorIs(t, err, ErrNoQueuedVote)

	_, err = s.AdvanceDay(ctx)
	require.NoError(t, err)
	require.Len(t, s.Campaign().VoteQueue, 1)

	got, err := s.CastVote(ctx, b.ID, bill.Yea)
	require.NoError(t, err)
	assert.Equal(t, bill.Yea, got.VotesCast["p_player"])
	assert.Empty(t, s.Campaign().VoteQueue)
	assert.Len(t, s.Events().GetByType(events.EventTypeVoteCast), 1)

	_, err = s.CastVote(ctx, "nope", bill.Yea)
	assert.ErrorIs(t, err, ErrUnknownBill)
	_, err = s.CastVote(ctx, b.ID, bill.Choice("maybe"))
	assert.Error(t, err)
}

func TestSessionPlayerVoteCountsAtResolution(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor.AddDays(-ImpendingVoteWindow)
	s := NewSession(e, c, nil)
	ctx := context.Background()

	_, err := s.AdvanceDay(ctx)
	require.NoError(t, err)
	_, err = s.CastVote(ctx, b.ID, bill.Yea)
	require.NoError(t, err)
	for s.Campaign().CurrentDate.Before(b.StageScheduledFor) {
		_, err = s.AdvanceDay(ctx)
		require.NoError(t, err)
	}

	got, ok := s.Campaign().FindBill(b.ID)
	require.True(t, ok)
	assert.Equal(t, bill.StatusFailed, got.Status)
	require.NotNil(t, got.FinalTally)
	assert.Equal(t, bill.Tally{Yea: 1, Nay: 8}, *got.FinalTally)
}

func TestSessionResolveElection(t *testing.T) {
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 11, 3)), nil)
	ctx := context.Background()
	_, err := s.AdvanceDay(ctx)
	require.NoError(t, err)
	require.Equal(t, "springfield_mayor", s.Campaign().PendingElectionID)

	_, err = s.ResolveElection(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownElection)

	el, err := s.ResolveElection(ctx, "springfield_mayor")
	require.NoError(t, err)
	assert.True(t, el.Resolved)
	require.NotEmpty(t, el.WinnerID)

	c := s.Campaign()
	assert.Empty(t, c.PendingElectionID)
	city, _ := c.City()
	assert.Equal(t, el.WinnerID, city.ExecutiveID)
	st, _ := c.Politicians.State(el.WinnerID)
	require.NotNil(t, st.LastElectionWin)
	assert.Equal(t, calendar.MustNew(2025, 11, 4), *st.LastElectionWin)

	_, err = s.AdvanceDay(ctx)
	assert.NoError(t, err)
}

func TestSessionProposeBill(t *testing.T) {
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 3, 10)), nil)
	b, err := s.ProposeBill(context.Background(), bill.Bill{
		Name:     "Teacher Pay Raise Act",
		Level:    bill.LevelCity,
		Policies: []string{"teacher_pay"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "p_player", b.ProposerID)
	assert.Equal(t, bill.SourcePlayer, b.Source)
	assert.Equal(t, "springfield", b.JurisdictionID)
	assert.Equal(t, "proposal_submitted", b.CurrentStage)

	c := s.Campaign()
	_, ok := c.FindBill(b.ID)
	assert.True(t, ok)
	st, _ := c.Politicians.State("p_player")
	assert.Equal(t, 2, st.ActionPoints)
	assert.Len(t, s.Events().GetByType(events.EventTypeBillProposed), 1)
}

func TestSessionStaffTasksSpendActionPoints(t *testing.T) {
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 3, 10)), nil)
	ctx := context.Background()

	_, err := s.AssignStaffTask(ctx, "skywriting")
	assert.Error(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.AssignStaffTask(ctx, "media")
		require.NoError(t, err)
	}
	_, err = s.AssignStaffTask(ctx, "media")
	assert.ErrorIs(t, err, ErrNoActionPoints)
	assert.Len(t, s.Campaign().StaffTasks, 3)

	before, _ := s.Campaign().Politicians.State("p_player")
	for i := 0; i < StaffTaskKinds["media"].Days; i++ {
		_, err := s.AdvanceDay(ctx)
		require.NoError(t, err)
	}
	after, _ := s.Campaign().Politicians.State("p_player")
	assert.Empty(t, s.Campaign().StaffTasks)
	assert.InDelta(t, before.ApprovalRating+3, after.ApprovalRating, 0.001)
	assert.Len(t, s.Events().GetByType(events.EventTypeStaffTaskDone), 3)
}

func TestSessionAdvanceUntil(t *testing.T) {
	saver := &memorySaver{}
	s := NewSession(newTestEngine(), defaultCampaign(t, calendar.MustNew(2025, 3, 10)), nil, WithSaver(saver))
	target := calendar.MustNew(2025, 3, 15)

	results, err := s.AdvanceUntil(context.Background(), func(c *campaign.Campaign) bool {
		return c.CurrentDate.OnOrAfter(target)
	})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, target, s.Campaign().CurrentDate)
	assert.Equal(t, []calendar.GameDate{target}, saver.saves)
	assert.Len(t, s.Events().GetByType(events.EventTypeDayAdvanced), 5)
}
