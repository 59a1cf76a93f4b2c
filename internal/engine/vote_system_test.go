package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
)

func TestOverdueQueuedVoteKeepsRecordedChoice(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor
	c.VoteQueue = []campaign.QueuedVote{{
		ID: "q1", BillID: b.ID, Level: b.Level, Stage: b.CurrentStage,
		VoterID: "p_player", ScheduledFor: b.StageScheduledFor, Choice: bill.Yea,
	}}

	next, _, err := e.AdvanceDay(c)
	require.NoError(t, err)
	got, ok := next.FindBill(b.ID)
	require.True(t, ok)
	assert.Equal(t, bill.Yea, got.VotesCast["p_player"])
	assert.Len(t, got.VotesCast, 9)
	for id, choice := range got.VotesCast {
		if id != "p_player" {
			assert.Equal(t, bill.Nay, choice, id)
		}
	}
	require.NotNil(t, got.FinalTally)
	assert.Equal(t, 1, got.FinalTally.Yea)
	assert.Equal(t, 8, got.FinalTally.Nay)
	assert.Equal(t, bill.StatusFailed, got.Status)
	assert.Empty(t, next.VoteQueue)
}

func TestOverdueQueuedVoteOnTouchedBillStaysQueued(t *testing.T) {
	e := newTestEngine()
	c := defaultCampaign(t, calendar.MustNew(2025, 3, 2))
	b := cityBillAtVote(t, e, c)
	c.CurrentDate = b.StageScheduledFor
	queued := func(id, voter string) campaign.QueuedVote {
		return campaign.QueuedVote{ID: id, BillID: b.ID, Level: b.Level, Stage: b.CurrentStage, VoterID: voter, ScheduledFor: b.StageScheduledFor}
	}
	c.VoteQueue = []campaign.QueuedVote{queued("q1", "p_player"), queued("q2", "p_c1")}

	next, _, err := e.AdvanceDay(c)
	require.NoError(t, err)
	require.Len(t, next.VoteQueue, 1)
	assert.Equal(t, "q2", next.VoteQueue[0].ID)

	// The bill resolved, so the leftover entry is dropped the next day.
	after, _, err := e.AdvanceDay(next)
	require.NoError(t, err)
	assert.Empty(t, after.VoteQueue)
}
