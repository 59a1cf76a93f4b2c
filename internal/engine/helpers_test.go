package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/legislation/progression"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
	"github.com/MRamiBalles/Legislatura/internal/scenario"
)

// quiet never wins a probability roll below 0.99, so no random events,
// proposals or commentary happen and every simulated ballot is a nay.
const quiet = random.Fixed(0.99)

func newTestEngine(opts ...Option) *Engine {
	return New(logger.Discard(), append([]Option{WithRandom(quiet)}, opts...)...)
}

func defaultCampaign(t *testing.T, start calendar.GameDate) *campaign.Campaign {
	t.Helper()
	c, err := scenario.Default(scenario.Options{ID: "test", PoliticalSystem: "presidential", Start: start})
	require.NoError(t, err)
	return c
}

// cityBillAtVote files a city bill and walks it to the council vote.
func cityBillAtVote(t *testing.T, e *Engine, c *campaign.Campaign) bill.Bill {
	t.Helper()
	b, err := e.Progression().Initialize(bill.Bill{
		ID:             "b_city",
		Name:           "Park Expansion Act",
		Level:          bill.LevelCity,
		JurisdictionID: c.CityID,
		Policies:       []string{"park_expansion"},
		ProposerID:     "p_c1",
		Source:         bill.SourceLegislator,
		PublicSupport:  68,
	}, c.PoliticalSystemID, c.CurrentDate)
	require.NoError(t, err)
	for b.CurrentStage != "council_vote" {
		b, err = e.Progression().Advance(b, nil, progression.Body{}, c.PoliticalSystemID, b.StageScheduledFor)
		require.NoError(t, err)
	}
	c.AddBill(b)
	return b
}
