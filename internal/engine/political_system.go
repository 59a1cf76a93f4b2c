package engine

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Capital terms of the monthly political pass.
const (
	MajorityBonus          = 1.0
	MinorityPenalty        = -1.0
	IncumbentElectionBonus = 3.0
	ChallengerElectionWin  = 5.0
	PopularBillBonus       = 1.0
	VeryPopularBillBonus   = 2.0
	UnpopularBillPenalty   = -1.0
	FailedBillPenalty      = -1.0

	// Popularity floor before renormalization.
	popularityFloor = 0.1
)

// CapitalChange is a capital adjustment with its audit trail.
type CapitalChange struct {
	Before  float64
	After   float64
	Delta   float64
	Reasons []string
}

// PoliticalSystem computes approval, capital and party popularity.
type PoliticalSystem struct {
	rng    random.Source
	logger *logger.Logger
}

// NewPoliticalSystem creates the political updater.
func NewPoliticalSystem(rng random.Source, log *logger.Logger) *PoliticalSystem {
	return &PoliticalSystem{rng: rng, logger: log}
}

// Update runs the monthly approval, capital and popularity pass and
// consumes the bill outcomes recorded since the last pass.
func (ps *PoliticalSystem) Update(t *tick) error {
	store := t.c.Politicians
	if store == nil {
		return fmt.Errorf("campaign has no politician store")
	}
	updates := PoliticalUpdates{
		ApprovalRating:   map[string]float64{},
		PoliticalCapital: map[string]float64{},
		CapitalReasons:   map[string][]string{},
		PartyPopularity:  map[string]map[string]float64{},
	}

	for _, id := range store.IDs() {
		st, _ := store.State(id)
		base, _ := store.Base(id)

		approval := ps.Approval(t.c, st)
		if !rules.Finite(approval) {
			ps.logger.Warn("validation warning", "warning", ValidationWarning{Field: "approvalRating", Target: id, Value: approval}.Error())
		} else {
			st.ApprovalRating = approval
			updates.ApprovalRating[id] = approval
		}

		change := ps.Capital(t.c, base, st, t.today)
		if !rules.Finite(change.After) {
			ps.logger.Warn("validation warning", "warning", ValidationWarning{Field: "politicalCapital", Target: id, Value: change.After}.Error())
		} else {
			st.PoliticalCapital = change.After
			updates.PoliticalCapital[id] = change.After
			updates.CapitalReasons[id] = change.Reasons
		}
		store.SetState(id, st)
	}

	for _, jid := range sortedKeys(t.c.Jurisdictions) {
		j := t.c.Jurisdictions[jid]
		if len(j.Popularity) == 0 {
			continue
		}
		j.Popularity = ps.Popularity(t.c, j)
		t.c.Jurisdictions[jid] = j
		updates.PartyPopularity[jid] = copyFloats(j.Popularity)
	}

	t.c.RecentOutcomes = nil
	t.result.PoliticalUpdates = updates
	return nil
}

// jurisdictionOf is the office jurisdiction, or the player's city.
func jurisdictionOf(c *campaign.Campaign, st politician.State) (campaign.Jurisdiction, bool) {
	if st.Office != nil {
		if j, ok := c.Jurisdictions[st.Office.JurisdictionID]; ok {
			return j, true
		}
	}
	return c.City()
}

// mood reads the jurisdiction mood index, deriving it when absent.
func mood(j campaign.Jurisdiction) float64 {
	s := j.Stats
	derived := rules.MoodIndex(
		s.FloatOr(campaign.StatUnemployment, 5),
		s.FloatOr(campaign.StatCrime, 30),
		s.FloatOr(campaign.StatPoverty, 12),
		s.FloatOr(campaign.StatBudgetBalance, 0),
	)
	return s.FloatOr(campaign.StatMood, derived)
}

// Approval moves incumbents fully with the mood of their jurisdiction and
// everyone else at half weight, plus noise.
func (ps *PoliticalSystem) Approval(c *campaign.Campaign, st politician.State) float64 {
	weight := 0.5
	if st.Incumbent() {
		weight = 1
	}
	delta := 0.0
	if j, ok := jurisdictionOf(c, st); ok {
		delta = float64(rules.ApprovalDelta(rules.MoodFromIndex(mood(j)))) * weight
	}
	v := st.ApprovalRating + delta + random.Jitter(ps.rng, 0.5)
	if !rules.Finite(v) {
		return v
	}
	return rules.ClampPercent(v)
}

// Capital sums the approval tier, the majority term, any recent election
// win and the performance of the politician's resolved bills.
func (ps *PoliticalSystem) Capital(c *campaign.Campaign, base politician.Base, st politician.State, today calendar.GameDate) CapitalChange {
	ch := CapitalChange{Before: st.PoliticalCapital}
	add := func(v float64, reason string) {
		if v == 0 {
			return
		}
		ch.Delta += v
		ch.Reasons = append(ch.Reasons, fmt.Sprintf("%+g %s", v, reason))
	}

	add(rules.ApprovalTierCapital(st.ApprovalRating), fmt.Sprintf("approval tier (%.0f)", st.ApprovalRating))

	if st.Incumbent() {
		if j, ok := c.Jurisdictions[st.Office.JurisdictionID]; ok && j.TotalSeats() > 0 {
			if j.MajorityParty() == base.PartyID {
				add(MajorityBonus, "majority party")
			} else {
				add(MinorityPenalty, "minority party")
			}
		}
	}

	if st.LastElectionWin != nil {
		if days := st.LastElectionWin.DaysUntil(today); days >= 0 && days <= 31 {
			if st.WonAsIncumbent {
				add(IncumbentElectionBonus, "re-election")
			} else {
				add(ChallengerElectionWin, "election victory")
			}
		}
	}

	for _, o := range c.RecentOutcomes {
		if o.ProposerID != base.ID {
			continue
		}
		switch {
		case o.Status == bill.StatusFailed:
			add(FailedBillPenalty, "failed bill "+o.BillID)
		case o.PublicSupport >= 70:
			add(VeryPopularBillBonus, "very popular bill "+o.BillID)
		case o.PublicSupport >= 50:
			add(PopularBillBonus, "popular bill "+o.BillID)
		case o.PublicSupport < 40:
			add(UnpopularBillPenalty, "unpopular bill "+o.BillID)
		}
	}

	ch.After = ch.Before + ch.Delta
	if rules.Finite(ch.After) {
		ch.After = rules.ClampPercent(ch.After)
	}
	return ch
}

// Popularity shifts each party and renormalizes the vector to 100.
func (ps *PoliticalSystem) Popularity(c *campaign.Campaign, j campaign.Jurisdiction) map[string]float64 {
	governance := governanceScore(j)
	out := make(map[string]float64, len(j.Popularity))
	for _, party := range sortedKeys(j.Popularity) {
		shift := 0.0
		if party == j.ExecutivePartyID {
			shift += (governance - 50) / 25
		} else if governance < 45 && j.SeatShare(party) < 0.5 {
			// Opposition dividend, seat minorities only.
			shift += (45 - governance) / 20
		}
		shift += j.SeatShare(party) * legislativePerformance(c, j.ID, party)
		shift += random.Jitter(ps.rng, 0.5)
		shift += 0.3 * policyAlignment(c.Parties[party].Ideology, c.Electorate)

		v := j.Popularity[party] + shift
		if !rules.Finite(v) || v < popularityFloor {
			v = popularityFloor
		}
		out[party] = v
	}
	return rules.Renormalize(out)
}

// governanceScore blends the derived and reported mood.
func governanceScore(j campaign.Jurisdiction) float64 {
	s := j.Stats
	derived := rules.MoodIndex(
		s.FloatOr(campaign.StatUnemployment, 5),
		s.FloatOr(campaign.StatCrime, 30),
		s.FloatOr(campaign.StatPoverty, 12),
		s.FloatOr(campaign.StatBudgetBalance, 0),
	)
	return (derived + s.FloatOr(campaign.StatMood, derived)) / 2
}

// legislativePerformance scores a party's recent bills in a jurisdiction:
// pass rate around one half and public support around 50.
func legislativePerformance(c *campaign.Campaign, jurisdictionID, party string) float64 {
	passed, total, support := 0, 0, 0.0
	for _, o := range c.RecentOutcomes {
		if o.JurisdictionID != jurisdictionID || c.Politicians == nil {
			continue
		}
		base, ok := c.Politicians.Base(o.ProposerID)
		if !ok || base.PartyID != party {
			continue
		}
		total++
		support += o.PublicSupport
		if o.Status == bill.StatusPassed {
			passed++
		}
	}
	if total == 0 {
		return 0
	}
	rate := float64(passed) / float64(total)
	return 1.5 * ((rate - 0.5) + (support/float64(total)-50)/100)
}

// policyAlignment is +1 when the party sits on the electorate's profile.
func policyAlignment(ideology, electorate map[string]float64) float64 {
	if len(electorate) == 0 {
		return 0
	}
	diff := 0.0
	for axis, v := range electorate {
		d := ideology[axis] - v
		if d < 0 {
			d = -d
		}
		diff += d
	}
	return rules.Clamp(1-diff/float64(len(electorate)), -1, 1)
}

func copyFloats(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
