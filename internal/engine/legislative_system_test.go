package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

func TestLegacyLifecycle(t *testing.T) {
	today := calendar.MustNew(2025, 6, 1)
	cases := []struct {
		name      string
		level     bill.Level
		status    bill.Status
		roll      float64
		want      bill.Status
		nextCheck int // days from today; 0 when terminal
	}{
		{"city review moves to vote", bill.LevelCity, bill.StatusStalled, 0, bill.StatusPendingVote, 7},
		{"city vote passes", bill.LevelCity, bill.StatusPendingVote, 0.1, bill.StatusPassed, 0},
		{"city vote fails", bill.LevelCity, bill.StatusPendingVote, 0.9, bill.StatusFailed, 0},
		{"state review enters committee", bill.LevelState, bill.StatusStalled, 0, bill.StatusInCommittee, 14},
		{"state committee reports out", bill.LevelState, bill.StatusInCommittee, 0.5, bill.StatusPendingVote, 19},
		{"state committee kills bill", bill.LevelState, bill.StatusInCommittee, 0.9, bill.StatusFailed, 0},
		{"national vote passes", bill.LevelNational, bill.StatusPendingVote, 0.2, bill.StatusPassed, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(nil, WithRandom(random.Fixed(tc.roll)))
			c := defaultCampaign(t, today)
			c.Bills = map[bill.Level][]bill.Bill{}
			c.AddBill(bill.Bill{
				ID: "legacy", Name: "Levy Renewal", Level: tc.level, JurisdictionID: c.CityID,
				Status: tc.status, PublicSupport: 54, Legacy: true, NextCheck: today,
			})
			tk := newTick(c.Clone(), today)

			e.legislative.legacyLifecycle(tk)

			got, ok := tk.c.FindBill("legacy")
			require.True(t, ok)
			assert.Equal(t, tc.want, got.Status)
			if tc.nextCheck > 0 {
				assert.Equal(t, today.AddDays(tc.nextCheck), got.NextCheck)
			}
			if got.Terminal() {
				require.Len(t, tk.result.BillUpdates, 1)
				assert.True(t, tk.touched["legacy"])
			}
		})
	}
}

func TestLegacyLifecycleWaitsForNextCheck(t *testing.T) {
	today := calendar.MustNew(2025, 6, 1)
	e := New(nil, WithRandom(random.Fixed(0)))
	c := defaultCampaign(t, today)
	c.Bills = map[bill.Level][]bill.Bill{}
	c.AddBill(bill.Bill{ID: "legacy", Level: bill.LevelCity, Status: bill.StatusPendingVote, Legacy: true, NextCheck: today.AddDays(1)})
	tk := newTick(c.Clone(), today)

	e.legislative.legacyLifecycle(tk)

	got, _ := tk.c.FindBill("legacy")
	assert.Equal(t, bill.StatusPendingVote, got.Status)
	assert.Empty(t, tk.result.BillUpdates)
}

func TestMonthlyAuthorsAndArchives(t *testing.T) {
	today := calendar.MustNew(2025, 6, 1)
	var sawTwo, sawAdvocacy bool
	for seed := int64(1); seed <= 20; seed++ {
		e := New(nil, WithRandom(random.NewSeeded(seed)))
		c := defaultCampaign(t, today)
		done := calendar.MustNew(2025, 5, 20)
		c.AddBill(bill.Bill{ID: "done", Level: bill.LevelCity, Status: bill.StatusPassed, DatePassed: &done})
		tk := newTick(c.Clone(), today)

		require.NoError(t, e.legislative.Monthly(tk), "seed %d", seed)

		legislators, advocacy := 0, 0
		for _, b := range tk.result.NewBills {
			assert.NotEmpty(t, b.CurrentStage, "seed %d: %s", seed, b.ID)
			assert.NotEqual(t, c.PlayerID, b.ProposerID)
			switch b.Source {
			case bill.SourceLegislator:
				legislators++
			case bill.SourceAdvocacy:
				advocacy++
				assert.Equal(t, bill.LevelCity, b.Level)
				assert.Equal(t, "advocacy_education", b.ProposerID)
				require.Len(t, b.Policies, 1)
				var axis string
				for _, p := range c.PolicyCatalog {
					if p.ID == b.Policies[0] {
						axis = p.Axis
					}
				}
				assert.Equal(t, "education", axis)
			}
			_, filed := tk.c.FindBill(b.ID)
			assert.True(t, filed)
		}
		assert.GreaterOrEqual(t, legislators, 1, "seed %d", seed)
		assert.LessOrEqual(t, legislators, 2, "seed %d", seed)
		assert.LessOrEqual(t, advocacy, 1, "seed %d", seed)
		sawTwo = sawTwo || legislators == 2
		sawAdvocacy = sawAdvocacy || advocacy == 1

		for _, b := range tk.c.ActiveBills() {
			assert.NotEqual(t, "done", b.ID)
		}
		var archived bool
		for _, b := range tk.c.ArchivedBills {
			archived = archived || b.ID == "done"
		}
		assert.True(t, archived, "seed %d", seed)
	}
	assert.True(t, sawTwo)
	assert.True(t, sawAdvocacy)
}
