package baseline

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Long-run equilibria the statistics revert towards.
var equilibrium = map[string]float64{
	campaign.StatUnemployment: 5.5,
	campaign.StatGDPGrowth:    2.0,
	campaign.StatCrime:        30,
	campaign.StatPoverty:      12,
}

var equilibriumOrder = []string{
	campaign.StatUnemployment, campaign.StatGDPGrowth, campaign.StatCrime, campaign.StatPoverty,
}

// Per-axis effect of a passed policy with stance +1. Stance -1 inverts it.
var axisEffects = map[string]campaign.Delta{
	"economy":     {campaign.StatUnemployment: -0.3, campaign.StatGDPGrowth: 0.2, campaign.StatPoverty: 0.2},
	"welfare":     {campaign.StatPoverty: -0.6, campaign.StatUnemployment: 0.1},
	"security":    {campaign.StatCrime: -2.0},
	"environment": {campaign.StatGDPGrowth: -0.1, campaign.StatMood: 0.5},
	"education":   {campaign.StatPoverty: -0.2, campaign.StatGDPGrowth: 0.1},
}

// Stats nudges statistics toward equilibrium with noise and policy effects.
type Stats struct {
	rng random.Source
}

// NewStats builds the baseline statistic updater.
func NewStats(rng random.Source) *Stats {
	return &Stats{rng: rng}
}

// UpdateStats implements collaborators.StatUpdater.
func (s *Stats) UpdateStats(in collaborators.StatInput) (collaborators.StatOutput, error) {
	st := in.Jurisdiction.Stats
	if !st.Valid() {
		return collaborators.StatOutput{}, fmt.Errorf("stats of %s are not a JSON object", in.Jurisdiction.ID)
	}
	delta := campaign.Delta{}
	for _, path := range equilibriumOrder {
		eq := equilibrium[path]
		cur := st.FloatOr(path, eq)
		delta[path] = (eq-cur)*0.05 + random.Jitter(s.rng, eq*0.02)
	}

	catalog := make(map[string]bill.Policy, len(in.Catalog))
	for _, p := range in.Catalog {
		catalog[p.ID] = p
	}
	for _, b := range in.PassedBills {
		if b.JurisdictionID != in.Jurisdiction.ID {
			continue
		}
		for _, id := range b.Policies {
			p, ok := catalog[id]
			if !ok {
				continue
			}
			for path, v := range axisEffects[p.Axis] {
				delta[path] += v * p.Stance
			}
		}
	}

	// Rates never go negative.
	for _, path := range []string{campaign.StatUnemployment, campaign.StatCrime, campaign.StatPoverty} {
		cur := st.FloatOr(path, equilibrium[path])
		if cur+delta[path] < 0 {
			delta[path] = -cur
		}
	}

	u := st.FloatOr(campaign.StatUnemployment, 5.5) + delta[campaign.StatUnemployment]
	c := st.FloatOr(campaign.StatCrime, 30) + delta[campaign.StatCrime]
	p := st.FloatOr(campaign.StatPoverty, 12) + delta[campaign.StatPoverty]
	target := rules.MoodIndex(u, c, p, st.FloatOr(campaign.StatBudgetBalance, 0))
	mood := st.FloatOr(campaign.StatMood, target)
	delta[campaign.StatMood] += (target - mood) * 0.5

	var news []events.NewsItem
	if du := delta[campaign.StatUnemployment]; math.Abs(du) >= 0.3 {
		dir := "falls"
		if du > 0 {
			dir = "rises"
		}
		news = append(news, events.NewsItem{
			Headline:       fmt.Sprintf("Unemployment %s to %.1f%% in %s", dir, u, in.Jurisdiction.Name),
			Type:           events.NewsEconomy,
			Scope:          string(in.Jurisdiction.Level),
			JurisdictionID: in.Jurisdiction.ID,
			Date:           in.Date,
		})
	}
	return collaborators.StatOutput{Delta: delta, News: news}, nil
}
