package baseline

import (
	"fmt"
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
)

// Coalitions applies event sub-effects and lets mobilization follow
// dissatisfaction.
type Coalitions struct{}

// Process implements collaborators.CoalitionEngine.
func (Coalitions) Process(in collaborators.CoalitionInput) (collaborators.CoalitionOutput, error) {
	out := make(map[string]campaign.Coalition, len(in.Coalitions))
	for id, c := range in.Coalitions {
		out[id] = c
	}
	for _, ev := range in.Events {
		for _, ce := range ev.CoalitionEvents {
			c, ok := out[ce.CoalitionID]
			if !ok {
				continue
			}
			c.Satisfaction = rules.ClampPercent(c.Satisfaction + ce.SatisfactionDelta)
			c.Mobilization = rules.ClampPercent(c.Mobilization + ce.MobilizationDelta)
			out[ce.CoalitionID] = c
		}
	}

	ids := make([]string, 0, len(out))
	for id := range out {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	shift := map[string]float64{}
	mobilized := 0
	for _, id := range ids {
		c := out[id]
		target := rules.ClampPercent(2 * abs(c.Satisfaction-50))
		c.Mobilization = rules.ClampPercent(c.Mobilization + (target-c.Mobilization)*0.1)
		out[id] = c
		if c.Mobilization >= 60 {
			mobilized++
		}
		// Mobilized, unhappy blocs punish parties that disagree with them.
		mood := (c.Satisfaction - 50) / 50
		weight := c.Size / 100 * c.Mobilization / 100
		for party, ideology := range in.Parties {
			alignment := 1 - abs(ideology[c.Axis]-c.Lean)/2
			shift[party] += mood * weight * alignment
		}
	}
	return collaborators.CoalitionOutput{
		Coalitions: out,
		Report: collaborators.CoalitionReport{
			Summary:       fmt.Sprintf("%d of %d coalitions mobilized", mobilized, len(out)),
			ApprovalShift: shift,
		},
	}, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
