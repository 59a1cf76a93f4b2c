package engine

import (
	"errors"
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/legislation/progression"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Lateness thresholds of the overdue-vote safety net, in days.
const (
	QueuedVoteGrace  = 1
	PendingVoteGrace = 2
)

// VoteSimulator casts party-aligned ballots for AI members.
type VoteSimulator struct {
	rng random.Source
}

// NewVoteSimulator builds a simulator over the random source.
func NewVoteSimulator(rng random.Source) *VoteSimulator {
	return &VoteSimulator{rng: rng}
}

// YeaProbability is the chance a member of partyID supports the bill.
func (v *VoteSimulator) YeaProbability(c *campaign.Campaign, b bill.Bill, partyID string, executive bool) float64 {
	p := 0.5 + (b.PublicSupport-50)/150
	if party, ok := c.Parties[partyID]; ok {
		p += 0.3 * alignment(party.Ideology, b.Policies, c.PolicyCatalog)
	}
	if c.Politicians != nil {
		if proposer, ok := c.Politicians.Base(b.ProposerID); ok && proposer.PartyID == partyID {
			p += 0.15
		}
	}
	if executive {
		p += 0.25
	}
	return rules.Clamp(p, 0.05, 0.95)
}

// Choose draws one ballot.
func (v *VoteSimulator) Choose(c *campaign.Campaign, b bill.Bill, partyID string, executive bool) bill.Choice {
	p := v.YeaProbability(c, b, partyID, executive)
	if !executive && random.Chance(v.rng, 0.04) {
		return bill.Abstain
	}
	if random.Chance(v.rng, p) {
		return bill.Yea
	}
	return bill.Nay
}

// Ballots fills every seat of the chamber except those in skip.
func (v *VoteSimulator) Ballots(c *campaign.Campaign, b bill.Bill, ch Chamber, skip map[string]bool) map[string]bill.Choice {
	out := make(map[string]bill.Choice, len(ch.Seats))
	executive := ch.Body.ExecutiveID != ""
	for _, s := range ch.Seats {
		if skip[s.VoterID] {
			continue
		}
		if _, already := b.VotesCast[s.VoterID]; already {
			continue
		}
		out[s.VoterID] = v.Choose(c, b, s.PartyID, executive)
	}
	return out
}

// alignment is +1 when a party's ideology matches every policy stance and
// -1 when it opposes all of them.
func alignment(ideology map[string]float64, policyIDs []string, catalog []bill.Policy) float64 {
	total, n := 0.0, 0
	for _, id := range policyIDs {
		for _, p := range catalog {
			if p.ID != id {
				continue
			}
			diff := ideology[p.Axis] - p.Stance
			if diff < 0 {
				diff = -diff
			}
			total += 1 - diff
			n++
			break
		}
	}
	if n == 0 {
		return 0
	}
	return rules.Clamp(total/float64(n), -1, 1)
}

// VoteSystem resolves votes that were not cast in time.
type VoteSystem struct {
	progression *progression.Engine
	sim         *VoteSimulator
	metrics     Recorder
	logger      *logger.Logger
}

// NewVoteSystem creates the overdue-vote safety net.
func NewVoteSystem(p *progression.Engine, sim *VoteSimulator, m Recorder, log *logger.Logger) *VoteSystem {
	return &VoteSystem{progression: p, sim: sim, metrics: m, logger: log}
}

// Simulator exposes the ballot simulator.
func (vs *VoteSystem) Simulator() *VoteSimulator { return vs.sim }

// ResolveOverdue auto-resolves queued votes at least one day late and any
// workflow bill pending a vote for at least two days. Each bill is touched
// at most once.
func (vs *VoteSystem) ResolveOverdue(t *tick) {
	var keep []campaign.QueuedVote
	for _, q := range t.c.VoteQueue {
		if q.ScheduledFor.DaysUntil(t.today) < QueuedVoteGrace {
			keep = append(keep, q)
			continue
		}
		b, ok := t.c.FindBill(q.BillID)
		if !ok || b.Terminal() || b.Legacy || b.CurrentStage != q.Stage {
			continue
		}
		if t.touched[b.ID] {
			// Already moved today; resolve on a later tick.
			keep = append(keep, q)
			continue
		}
		choice := q.Choice
		if !choice.Valid() {
			voter := ""
			if t.c.Politicians != nil {
				if base, ok := t.c.Politicians.Base(q.VoterID); ok {
					voter = base.PartyID
				}
			}
			choice = vs.sim.Choose(t.c, b, voter, false)
		}
		ballots := map[string]bill.Choice{q.VoterID: choice}
		vs.resolve(t, b, ballots, fmt.Sprintf("queued vote of %s on %s auto-resolved", q.VoterID, b.Name))
	}
	t.c.VoteQueue = keep

	for _, level := range bill.Levels {
		for _, b := range t.c.Bills[level] {
			if b.Legacy || b.Status != bill.StatusPendingVote || t.touched[b.ID] {
				continue
			}
			if b.StageScheduledFor.DaysUntil(t.today) < PendingVoteGrace {
				continue
			}
			vs.resolve(t, b.Clone(), nil, fmt.Sprintf("overdue vote on %s auto-resolved", b.Name))
		}
	}
}

// resolve fills the remaining seats and advances the bill once.
func (vs *VoteSystem) resolve(t *tick, b bill.Bill, ballots map[string]bill.Choice, msg string) {
	def, err := vs.progression.Stage(b, t.c.PoliticalSystemID)
	if err != nil {
		vs.apply(t, b, b, err)
		return
	}
	ch := composeChamber(t.c, b, def)
	skip := make(map[string]bool, len(ballots))
	for id := range ballots {
		skip[id] = true
	}
	all := vs.sim.Ballots(t.c, b, ch, skip)
	for id, choice := range ballots {
		all[id] = choice
	}
	after, err := vs.progression.Advance(b, all, ch.Body, t.c.PoliticalSystemID, t.today)
	t.emit(events.New(events.EventTypeVoteAutoResolve, t.today, "SYSTEM_VOTES", b.ID, msg, bill.Count(all)))
	vs.logger.Event(string(events.EventTypeVoteAutoResolve), "SYSTEM_VOTES", msg)
	vs.apply(t, b, after, err)
}

// apply stores a progressed bill and records what happened to it.
func (vs *VoteSystem) apply(t *tick, before, after bill.Bill, err error) {
	t.touched[after.ID] = true
	t.c.ReplaceBill(after)
	if err != nil {
		var se *progression.StageError
		switch {
		case errors.Is(err, progression.ErrRequirementsNotMet):
			vs.logger.Warn("bill stalled", "bill", after.ID, "stage", after.CurrentStage)
		case errors.As(err, &se):
			vs.logger.Error("bill stage configuration error", "bill", after.ID, "error", err)
		default:
			vs.logger.Error("bill advance failed", "bill", after.ID, "error", err)
		}
	}
	if !t.billUpdate(before, after, err) {
		return
	}
	t.emit(events.New(events.EventTypeBillAdvanced, t.today, after.ProposerID, after.ID,
		fmt.Sprintf("%s: %s -> %s", after.Name, before.CurrentStage, after.CurrentStage), t.result.BillUpdates[len(t.result.BillUpdates)-1]))
	if after.Terminal() && !before.Terminal() {
		vs.resolved(t, after)
	}
}

// resolved records a bill outcome for the monthly pass and announces it.
func (vs *VoteSystem) resolved(t *tick, b bill.Bill) {
	t.c.RecentOutcomes = append(t.c.RecentOutcomes, campaign.BillOutcome{
		BillID:         b.ID,
		ProposerID:     b.ProposerID,
		Level:          b.Level,
		JurisdictionID: b.JurisdictionID,
		Status:         b.Status,
		PublicSupport:  b.PublicSupport,
		ResolvedOn:     t.today,
	})
	dropQueuedVotes(t.c, b.ID)
	vs.metrics.RecordBillResolution(string(b.Level), string(b.Status))

	verb := "passes"
	if b.Status == bill.StatusFailed {
		verb = "fails"
	}
	headline := fmt.Sprintf("%s %s", b.Name, verb)
	if b.FinalTally != nil {
		headline = fmt.Sprintf("%s %s %d-%d", b.Name, verb, b.FinalTally.Yea, b.FinalTally.Nay)
	}
	t.emit(events.New(events.EventTypeBillResolved, t.today, b.ProposerID, b.ID, headline, b))
	t.news(events.NewsItem{
		Headline:       headline,
		Type:           events.NewsLegislation,
		Scope:          string(b.Level),
		JurisdictionID: b.JurisdictionID,
		RelatedID:      b.ID,
	})
}

func dropQueuedVotes(c *campaign.Campaign, billID string) {
	keep := c.VoteQueue[:0:0]
	for _, q := range c.VoteQueue {
		if q.BillID != billID {
			keep = append(keep, q)
		}
	}
	c.VoteQueue = keep
}
