package baseline

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Budget grows revenue with the economy and lets spending drift.
type Budget struct {
	rng random.Source
}

// NewBudget builds the baseline budget updater.
func NewBudget(rng random.Source) *Budget {
	return &Budget{rng: rng}
}

// UpdateBudget implements collaborators.BudgetUpdater.
func (b *Budget) UpdateBudget(in collaborators.BudgetInput) (collaborators.BudgetOutput, error) {
	st := in.Jurisdiction.Stats
	revenue := st.FloatOr(campaign.StatBudgetRevenue, 1000)
	spending := st.FloatOr(campaign.StatBudgetSpend, 1000)
	balance := st.FloatOr(campaign.StatBudgetBalance, 0)
	if revenue < 0 || spending < 0 {
		return collaborators.BudgetOutput{}, fmt.Errorf("budget of %s has negative lines", in.Jurisdiction.ID)
	}

	growth := st.FloatOr(campaign.StatGDPGrowth, 2) / 12 / 100
	drift := 0.004
	if in.Regional {
		drift = 0.002
	}
	newRevenue := revenue * (1 + growth + random.Jitter(b.rng, drift))
	newSpending := spending * (1 + drift/2 + random.Jitter(b.rng, drift))
	newBalance := newRevenue - newSpending

	out := collaborators.BudgetOutput{
		Budget: map[string]float64{"revenue": newRevenue, "spending": newSpending, "balance": newBalance},
		Delta: campaign.Delta{
			campaign.StatBudgetRevenue: newRevenue - revenue,
			campaign.StatBudgetSpend:   newSpending - spending,
			campaign.StatBudgetBalance: newBalance - balance,
		},
	}
	if newRevenue > 0 && -newBalance > newRevenue*0.05 {
		out.News = append(out.News, events.NewsItem{
			Headline:       fmt.Sprintf("%s runs a budget deficit", in.Jurisdiction.Name),
			Type:           events.NewsEconomy,
			Scope:          string(in.Jurisdiction.Level),
			JurisdictionID: in.Jurisdiction.ID,
			Date:           in.Date,
		})
	}
	return out, nil
}
