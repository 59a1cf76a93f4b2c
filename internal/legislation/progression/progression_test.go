package progression

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/legislation/workflow"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

func newEngine(seed int64) *Engine {
	return New(nil, nil, random.NewSeeded(seed))
}

func newBill(id string, level bill.Level) bill.Bill {
	return bill.Bill{
		ID:         id,
		Name:       "Test " + id,
		Level:      level,
		Policies:   []string{"raise_sales_tax"},
		ProposerID: "p1",
	}
}

func ballots(n int, choice bill.Choice) map[string]bill.Choice {
	out := make(map[string]bill.Choice, n)
	for i := 0; i < n; i++ {
		out[fmt.Sprintf("m%d", i)] = choice
	}
	return out
}

func TestCityBillPassesCouncilVote(t *testing.T) {
	e := newEngine(1)
	day1 := calendar.MustNew(2024, 3, 1)
	council := Body{Size: 7}

	b, err := e.Initialize(newBill("city-1", bill.LevelCity), "presidential", day1)
	require.NoError(t, err)
	assert.Equal(t, "proposal_submitted", b.CurrentStage)
	assert.Equal(t, day1, b.ProposedOn)

	b, err = e.Advance(b, nil, council, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	assert.Equal(t, "public_comment_period", b.CurrentStage)

	b, err = e.Advance(b, nil, council, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	assert.Equal(t, "council_vote", b.CurrentStage)
	assert.Equal(t, bill.StatusPendingVote, b.Status)
	detail, ok := b.Detail.(*bill.CouncilDetail)
	require.True(t, ok)
	voteDay := detail.VoteScheduledFor
	assert.Equal(t, voteDay, b.StageScheduledFor)

	votes := map[string]bill.Choice{"a": bill.Yea, "b": bill.Yea, "c": bill.Yea, "d": bill.Yea, "e": bill.Nay}
	b, err = e.Advance(b, votes, council, "presidential", voteDay)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPassed, b.Status)
	require.NotNil(t, b.DatePassed)
	assert.Equal(t, voteDay, *b.DatePassed)
	require.NotNil(t, b.FinalTally)
	assert.Equal(t, bill.Tally{Yea: 4, Nay: 1}, *b.FinalTally)
	assert.Len(t, b.StageHistory, 3)
	for _, rec := range b.StageHistory {
		assert.Equal(t, bill.RecordPassed, rec.Status)
		assert.NotNil(t, rec.CompletedOn)
	}
}

func TestNationalBillFailsCommitteeMarkup(t *testing.T) {
	e := newEngine(2)
	today := calendar.MustNew(2024, 1, 10)
	house := Body{Size: 435}

	b, err := e.Initialize(newBill("nat-1", bill.LevelNational), "presidential", today)
	require.NoError(t, err)
	for b.CurrentStage != "committee_markup" {
		b, err = e.Advance(b, nil, house, "presidential", b.StageScheduledFor)
		require.NoError(t, err)
	}
	assert.Equal(t, bill.StatusInCommittee, b.Status)
	cd, ok := b.Detail.(*bill.CommitteeDetail)
	require.True(t, ok)
	assert.Equal(t, "finance", cd.CommitteeID)

	votes := map[string]bill.Choice{"a": bill.Yea, "b": bill.Nay, "c": bill.Nay, "d": bill.Nay, "e": bill.Abstain}
	b, err = e.Advance(b, votes, house, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusFailed, b.Status)
	assert.Equal(t, "committee_markup", b.FailureStage)
	require.NotNil(t, b.FinalTally)
	assert.Equal(t, bill.Tally{Yea: 1, Nay: 3, Abstain: 1}, *b.FinalTally)
	require.NotNil(t, b.Detail.(*bill.CommitteeDetail).Tally)
	assert.NotNil(t, b.DateFailed)
}

func TestStuckCommitteeBillIsForceAdvanced(t *testing.T) {
	e := newEngine(3)
	start := calendar.MustNew(2024, 5, 1)
	house := Body{Size: 100}

	b, _ := e.Initialize(newBill("nat-2", bill.LevelNational), "presidential", start)
	for b.CurrentStage != "committee_markup" {
		b, _ = e.Advance(b, nil, house, "presidential", b.StageScheduledFor)
	}
	entered := b.StageEnteredOn

	// No votes before the ceiling: the bill waits.
	waiting, err := e.Advance(b, nil, house, "presidential", entered.AddDays(45))
	require.NoError(t, err)
	assert.Equal(t, "committee_markup", waiting.CurrentStage)
	assert.Equal(t, bill.StatusPendingVote, waiting.Status)

	day46 := entered.AddDays(46)
	assert.True(t, e.Due(b, day46))
	forced, err := e.Advance(b, nil, house, "presidential", day46)
	require.NoError(t, err)
	assert.Equal(t, "house_floor_vote", forced.CurrentStage)
	assert.False(t, forced.Terminal())
	var markup bill.StageRecord
	for _, rec := range forced.StageHistory {
		if rec.Stage == "committee_markup" {
			markup = rec
		}
	}
	assert.Equal(t, bill.RecordForced, markup.Status)
}

func TestVoteDateIsMemoized(t *testing.T) {
	e := newEngine(4)
	b, _ := e.Initialize(newBill("c", bill.LevelCity), "unicameral", calendar.MustNew(2024, 2, 1))
	for b.CurrentStage != "council_vote" {
		b, _ = e.Advance(b, nil, Body{Size: 5}, "unicameral", b.StageScheduledFor)
	}
	fixed := b.Detail.DecisionDate()
	require.False(t, fixed.IsZero())

	again := b
	for day := b.StageEnteredOn; day.Before(fixed); day = day.Next() {
		var err error
		again, err = e.Advance(again, nil, Body{Size: 5}, "unicameral", day)
		require.NoError(t, err)
		assert.Equal(t, fixed, again.Detail.DecisionDate())
		assert.Equal(t, fixed, again.StageScheduledFor)
	}
}

func TestExecutiveVetoAndSignature(t *testing.T) {
	e := newEngine(5)
	toExecutive := func() bill.Bill {
		b, _ := e.Initialize(newBill("s", bill.LevelState), "presidential", calendar.MustNew(2024, 6, 3))
		for b.CurrentStage != "governor_action" {
			var err error
			b, err = e.Advance(b, ballots(40, bill.Yea), Body{Size: 60}, "presidential", b.StageScheduledFor)
			require.NoError(t, err)
		}
		return b
	}

	b := toExecutive()
	assert.Equal(t, bill.StatusAwaitingSignature, b.Status)
	vetoed, err := e.Advance(b, map[string]bill.Choice{"gov": bill.Nay}, Body{ExecutiveID: "gov"}, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusFailed, vetoed.Status)
	assert.Equal(t, "governor_action", vetoed.FailureStage)
	assert.Equal(t, "vetoed", vetoed.Detail.(*bill.ExecutiveDetail).Decision)

	signed, err := e.Advance(b, nil, Body{ExecutiveID: "gov"}, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPassed, signed.Status)
	assert.Equal(t, "signed", signed.Detail.(*bill.ExecutiveDetail).Decision)
}

func TestTerminalBillsAreImmutable(t *testing.T) {
	e := newEngine(6)
	today := calendar.MustNew(2024, 1, 1)
	b := newBill("t", bill.LevelCity)
	b.MarkPassed(today, nil)
	out, err := e.Advance(b, ballots(3, bill.Nay), Body{Size: 3}, "presidential", today.AddDays(100))
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPassed, out.Status)
	assert.Equal(t, b.StageHistory, out.StageHistory)
}

func TestUnknownSystemMarksError(t *testing.T) {
	e := newEngine(7)
	b, err := e.Initialize(newBill("x", bill.LevelNational), "theocracy", calendar.MustNew(2024, 1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStageConfiguration)
	assert.ErrorIs(t, err, workflow.ErrUnknownSystem)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "x", se.BillID)
	assert.Equal(t, bill.StatusError, b.Status)
	assert.NotEmpty(t, b.LastError)

	// Error bills are never retried.
	again, err := e.Advance(b, nil, Body{}, "presidential", calendar.MustNew(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, bill.StatusError, again.Status)
	assert.False(t, e.Due(b, calendar.MustNew(2025, 1, 1)))
}

func TestUnknownStageMarksError(t *testing.T) {
	e := newEngine(8)
	b := newBill("y", bill.LevelCity)
	b.CurrentStage = "senate_floor_vote"
	b.Status = bill.StatusFloorConsideration
	out, err := e.Advance(b, nil, Body{Size: 5}, "presidential", calendar.MustNew(2024, 1, 1))
	assert.ErrorIs(t, err, ErrStageConfiguration)
	assert.Equal(t, bill.StatusError, out.Status)
}

func TestMissingRequirementStallsThenRecovers(t *testing.T) {
	e := newEngine(9)
	today := calendar.MustNew(2024, 4, 1)
	b := newBill("z", bill.LevelCity)
	b.Policies = nil
	b, err := e.Initialize(b, "presidential", today)
	require.NoError(t, err)
	b, err = e.Advance(b, nil, Body{Size: 5}, "presidential", b.StageScheduledFor)
	require.NoError(t, err)
	require.Equal(t, "public_comment_period", b.CurrentStage)

	stalled, err := e.Advance(b, nil, Body{Size: 5}, "presidential", b.StageScheduledFor)
	assert.ErrorIs(t, err, ErrRequirementsNotMet)
	assert.Equal(t, bill.StatusStalled, stalled.Status)
	assert.Equal(t, "public_comment_period", stalled.CurrentStage)

	stalled.Policies = []string{"park_upgrade"}
	recovered, err := e.Advance(stalled, nil, Body{Size: 5}, "presidential", stalled.StageScheduledFor.Next())
	require.NoError(t, err)
	assert.Equal(t, "council_vote", recovered.CurrentStage)
	assert.Equal(t, bill.StatusPendingVote, recovered.Status)
}

func TestNotDueIsNoop(t *testing.T) {
	e := newEngine(10)
	today := calendar.MustNew(2024, 1, 1)
	b, _ := e.Initialize(newBill("n", bill.LevelCity), "presidential", today)
	b.StageScheduledFor = today.AddDays(5)
	out, err := e.Advance(b, nil, Body{Size: 5}, "presidential", today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, b.CurrentStage, out.CurrentStage)
	assert.Equal(t, b.StageScheduledFor, out.StageScheduledFor)
}

func TestNextStagePreview(t *testing.T) {
	e := newEngine(11)
	today := calendar.MustNew(2024, 1, 1)
	b, _ := e.Initialize(newBill("p", bill.LevelCity), "presidential", today)
	next, ok, err := e.NextStage(b, "presidential", today)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "public_comment_period", next.Stage)
	assert.Equal(t, []workflow.Requirement{workflow.RequirePolicies}, next.Requirements)
	assert.False(t, next.ScheduledFor.Before(b.StageScheduledFor))

	b.CurrentStage = "council_vote"
	_, ok, err = e.NextStage(b, "presidential", today)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Every workflow resolves within its stage count when each vote gets ballots.
func TestTerminatesWithinStageCount(t *testing.T) {
	catalog := workflow.MustDefault()
	choices := []bill.Choice{bill.Yea, bill.Nay, bill.Abstain}
	for _, system := range catalog.SystemIDs() {
		for _, level := range bill.Levels {
			w, err := catalog.Lookup(system, level)
			require.NoError(t, err)
			for seed := int64(0); seed < 25; seed++ {
				e := newEngine(seed)
				rng := random.NewSeeded(seed + 1000)
				b, err := e.Initialize(newBill("b", level), system, calendar.MustNew(2024, 1, 1))
				require.NoError(t, err)

				steps := 0
				prevScheduled := b.StageScheduledFor
				for !b.Terminal() {
					votes := map[string]bill.Choice{}
					for i := 0; i < 1+rng.Intn(9); i++ {
						votes[fmt.Sprintf("v%d", i)] = choices[rng.Intn(len(choices))]
					}
					b, err = e.Advance(b, votes, Body{Size: 9}, system, b.StageScheduledFor)
					require.NoError(t, err)
					steps++
					require.True(t, b.Status.Valid())
					require.False(t, b.StageScheduledFor.Before(prevScheduled), "schedule moved backwards")
					prevScheduled = b.StageScheduledFor
					require.LessOrEqual(t, steps, w.Len(), "%s/%s seed %d", system, level, seed)
				}
			}
		}
	}
}

func TestEveryStageResolvesInWorkflow(t *testing.T) {
	e := newEngine(12)
	catalog := workflow.MustDefault()
	for _, system := range catalog.SystemIDs() {
		b, err := e.Initialize(newBill("r", bill.LevelNational), system, calendar.MustNew(2024, 1, 1))
		require.NoError(t, err)
		for !b.Terminal() {
			_, err := e.Stage(b, system)
			require.NoError(t, err)
			b, err = e.Advance(b, ballots(9, bill.Yea), Body{Size: 9}, system, b.StageScheduledFor)
			require.NoError(t, err)
		}
		assert.Equal(t, bill.StatusPassed, b.Status, system)
	}
}
