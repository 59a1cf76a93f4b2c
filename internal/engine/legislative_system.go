package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/legislation/progression"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

const (
	// ImpendingVoteWindow is how many days ahead a player vote is queued.
	ImpendingVoteWindow = 3
	dailyProposalChance = 0.03
	commentaryChance    = 0.25
)

// Next-check bands of the heuristic lifecycle, in days.
var (
	legacyReviewBand    = [2]int{7, 21}
	legacyCommitteeBand = [2]int{14, 60}
	legacyVoteBand      = [2]int{7, 30}
)

// LegislativeSystem authors, advances and archives bills.
type LegislativeSystem struct {
	progression *progression.Engine
	votes       *VoteSystem
	author      collaborators.BillAuthor
	rng         random.Source
	metrics     Recorder
	logger      *logger.Logger
}

// NewLegislativeSystem creates the legislative updater.
func NewLegislativeSystem(p *progression.Engine, votes *VoteSystem, author collaborators.BillAuthor, rng random.Source, m Recorder, log *logger.Logger) *LegislativeSystem {
	return &LegislativeSystem{progression: p, votes: votes, author: author, rng: rng, metrics: m, logger: log}
}

// Daily advances due workflow bills, queues impending player votes, adds
// commentary and lets AI legislators propose bills.
func (ls *LegislativeSystem) Daily(t *tick) {
	for _, level := range bill.Levels {
		for _, b := range append([]bill.Bill(nil), t.c.Bills[level]...) {
			if b.Legacy || b.Terminal() || b.Status == bill.StatusError || t.touched[b.ID] {
				continue
			}
			ls.detectImpendingVote(t, b)
			if !ls.progression.Due(b, t.today) {
				continue
			}
			ls.advance(t, b.Clone())
		}
	}
	for _, level := range bill.Levels {
		if !random.Chance(ls.rng, dailyProposalChance) {
			continue
		}
		if actor, jurisdictionID, ok := ls.pickLegislator(t.c, level); ok {
			if err := ls.propose(t, actor, level, jurisdictionID); err != nil {
				ls.logger.Warn("bill authoring failed", "actor", actor.ID, "error", err)
			}
		}
	}
}

func (ls *LegislativeSystem) advance(t *tick, b bill.Bill) {
	def, err := ls.progression.Stage(b, t.c.PoliticalSystemID)
	if err != nil {
		after, err := ls.progression.Advance(b, nil, progression.Body{}, t.c.PoliticalSystemID, t.today)
		ls.votes.apply(t, b, after, err)
		return
	}
	ch := composeChamber(t.c, b, def)

	var ballots map[string]bill.Choice
	if def.Kind.VoteBearing() {
		forced := b.DaysInStage(t.today) > progression.AgeCeiling(b.Level)
		waiting := map[string]bool{}
		for _, q := range t.c.VoteQueue {
			if q.BillID == b.ID && q.Stage == b.CurrentStage {
				waiting[q.VoterID] = true
			}
		}
		if len(waiting) == 0 || forced {
			ballots = ls.votes.Simulator().Ballots(t.c, b, ch, nil)
			if forced {
				dropQueuedVotes(t.c, b.ID)
			}
		}
	}
	after, err := ls.progression.Advance(b, ballots, ch.Body, t.c.PoliticalSystemID, t.today)
	ls.votes.apply(t, b, after, err)
	if err == nil && after.CurrentStage != b.CurrentStage && !after.Terminal() {
		ls.comment(t, after)
	}
}

// detectImpendingVote queues a vote for the player when one of their bodies
// decides the bill within the window.
func (ls *LegislativeSystem) detectImpendingVote(t *tick, b bill.Bill) {
	if t.c.PlayerID == "" || b.Detail == nil || !b.Detail.Kind().VoteBearing() {
		return
	}
	days := t.today.DaysUntil(b.StageScheduledFor)
	if days < 0 || days > ImpendingVoteWindow {
		return
	}
	for _, q := range t.c.VoteQueue {
		if q.BillID == b.ID && q.Stage == b.CurrentStage && q.VoterID == t.c.PlayerID {
			return
		}
	}
	if _, voted := b.VotesCast[t.c.PlayerID]; voted {
		return
	}
	def, err := ls.progression.Stage(b, t.c.PoliticalSystemID)
	if err != nil {
		return
	}
	if !composeChamber(t.c, b, def).Has(t.c.PlayerID) {
		return
	}
	q := campaign.QueuedVote{
		ID:           events.NewID(),
		BillID:       b.ID,
		Level:        b.Level,
		Stage:        b.CurrentStage,
		VoterID:      t.c.PlayerID,
		ScheduledFor: b.StageScheduledFor,
	}
	t.c.VoteQueue = append(t.c.VoteQueue, q)
	msg := fmt.Sprintf("Vote on %s (%s) scheduled for %s", b.Name, b.CurrentStage, q.ScheduledFor)
	t.emit(events.New(events.EventTypeVoteRequested, t.today, "SYSTEM_VOTES", t.c.PlayerID, msg, q))
	t.notify(t.c.PlayerID, msg)
}

// comment adds a reaction from a legislator of the bill's jurisdiction.
func (ls *LegislativeSystem) comment(t *tick, b bill.Bill) {
	if t.c.Politicians == nil || !random.Chance(ls.rng, commentaryChance) {
		return
	}
	var voices []string
	for _, id := range t.c.Politicians.IDs() {
		st, _ := t.c.Politicians.State(id)
		if id == b.ProposerID || id == t.c.PlayerID || st.Office == nil || st.Office.JurisdictionID != b.JurisdictionID {
			continue
		}
		voices = append(voices, id)
	}
	id, ok := random.Pick(ls.rng, voices)
	if !ok {
		return
	}
	base, _ := t.c.Politicians.Base(id)
	verb := "criticizes"
	if ls.votes.Simulator().YeaProbability(t.c, b, base.PartyID, false) >= 0.5 {
		verb = "backs"
	}
	t.news(events.NewsItem{
		Headline:       fmt.Sprintf("%s %s %s", base.Name, verb, b.Name),
		Body:           fmt.Sprintf("The bill moves to %s.", b.CurrentStage),
		Type:           events.NewsPolitics,
		Scope:          string(b.Level),
		JurisdictionID: b.JurisdictionID,
		RelatedID:      b.ID,
	})
}

// pickLegislator draws a random non-player legislator seated at level.
func (ls *LegislativeSystem) pickLegislator(c *campaign.Campaign, level bill.Level) (collaborators.Actor, string, bool) {
	if c.Politicians == nil {
		return collaborators.Actor{}, "", false
	}
	var ids []string
	for _, id := range c.Politicians.IDs() {
		if id == c.PlayerID {
			continue
		}
		st, _ := c.Politicians.State(id)
		if st.Office == nil || st.Office.Level != level {
			continue
		}
		if st.Office.Body == politician.BodyExecutive || st.Office.Body == politician.BodyNone {
			continue
		}
		ids = append(ids, id)
	}
	id, ok := random.Pick(ls.rng, ids)
	if !ok {
		return collaborators.Actor{}, "", false
	}
	base, _ := c.Politicians.Base(id)
	st, _ := c.Politicians.State(id)
	return collaborators.Actor{
		ID:       id,
		Name:     base.Name,
		PartyID:  base.PartyID,
		Source:   bill.SourceLegislator,
		Ideology: c.Parties[base.PartyID].Ideology,
	}, st.Office.JurisdictionID, true
}

// propose asks the author for a bill and files it at stage 1.
func (ls *LegislativeSystem) propose(t *tick, actor collaborators.Actor, level bill.Level, jurisdictionID string) error {
	j, ok := t.c.Jurisdictions[jurisdictionID]
	if !ok {
		return fmt.Errorf("unknown jurisdiction %s", jurisdictionID)
	}
	b, err := ls.author.Author(collaborators.AuthorInput{
		Date:           t.today,
		Actor:          actor,
		Level:          level,
		JurisdictionID: jurisdictionID,
		Catalog:        t.c.PolicyCatalog,
		Stats:          j.Stats,
		Existing:       t.c.ActiveBills(),
	})
	if err != nil || b == nil {
		return err
	}
	filed, err := fileBill(t, ls.progression, *b)
	if errors.Is(err, progression.ErrStageConfiguration) {
		ls.logger.Error("filed bill has no valid workflow", "bill", filed.ID, "error", err)
		return nil
	}
	return err
}

// fileBill initializes a new bill and adds it to the campaign.
func fileBill(t *tick, p *progression.Engine, b bill.Bill) (bill.Bill, error) {
	if b.ID == "" {
		b.ID = events.NewID()
	}
	if !b.Level.Valid() {
		return b, fmt.Errorf("%w: bill %s has level %q", progression.ErrStageConfiguration, b.ID, b.Level)
	}
	b.Status = ""
	b.CurrentStage = ""
	init, err := p.Initialize(b, t.c.PoliticalSystemID, t.today)
	t.touched[init.ID] = true
	t.c.AddBill(init)
	t.result.NewBills = append(t.result.NewBills, init.Clone())
	msg := fmt.Sprintf("%s introduced", init.Name)
	t.emit(events.New(events.EventTypeBillProposed, t.today, init.ProposerID, init.ID, msg, init))
	t.news(events.NewsItem{
		Headline:       msg,
		Type:           events.NewsLegislation,
		Scope:          string(init.Level),
		JurisdictionID: init.JurisdictionID,
		RelatedID:      init.ID,
	})
	return init, err
}

// Monthly authors new bills, runs the heuristic lifecycle of legacy bills
// and archives resolved ones.
func (ls *LegislativeSystem) Monthly(t *tick) error {
	n := random.Between(ls.rng, 1, 2)
	for i := 0; i < n; i++ {
		level := bill.Levels[ls.rng.Intn(len(bill.Levels))]
		actor, jid, ok := ls.pickLegislator(t.c, level)
		if !ok {
			continue
		}
		if err := ls.propose(t, actor, level, jid); err != nil {
			return fmt.Errorf("legislator %s: %w", actor.ID, err)
		}
	}
	if actor, ok := ls.advocacyActor(t.c); ok {
		if err := ls.propose(t, actor, bill.LevelCity, t.c.CityID); err != nil {
			return fmt.Errorf("advocacy %s: %w", actor.ID, err)
		}
	}

	ls.legacyLifecycle(t)
	ls.archive(t)
	return nil
}

// advocacyActor synthesizes a group around the electorate's most extreme
// axis. The more extreme the axis, the likelier the group files a bill.
func (ls *LegislativeSystem) advocacyActor(c *campaign.Campaign) (collaborators.Actor, bool) {
	axis, extreme := "", 0.0
	for _, a := range sortedKeys(c.Electorate) {
		if v := math.Abs(c.Electorate[a]); v > extreme {
			axis, extreme = a, v
		}
	}
	if axis == "" || !random.Chance(ls.rng, extreme) {
		return collaborators.Actor{}, false
	}
	lean := 1.0
	if c.Electorate[axis] < 0 {
		lean = -1
	}
	return collaborators.Actor{
		ID:       "advocacy_" + axis,
		Name:     fmt.Sprintf("Citizens for %s", axis),
		Source:   bill.SourceAdvocacy,
		Ideology: map[string]float64{axis: lean},
		Focus:    axis,
	}, true
}

// legacyLifecycle moves legacy bills by weighted random outcomes. City bills
// go review -> pending_vote -> passed/failed; higher levels add committee.
func (ls *LegislativeSystem) legacyLifecycle(t *tick) {
	for _, level := range bill.Levels {
		for _, b := range append([]bill.Bill(nil), t.c.Bills[level]...) {
			if !b.Legacy || b.Terminal() || t.touched[b.ID] || t.today.Before(b.NextCheck) {
				continue
			}
			before := b.Clone()
			after := b.Clone()
			passOdds := rules.Clamp(0.5+(b.PublicSupport-50)/100, 0.1, 0.9)
			switch {
			case after.Status == bill.StatusPendingVote:
				if random.Chance(ls.rng, passOdds) {
					after.MarkPassed(t.today, nil)
				} else {
					after.MarkFailed(t.today, nil)
				}
			case level != bill.LevelCity && after.Status == bill.StatusInCommittee:
				if random.Chance(ls.rng, 0.65) {
					after.Status = bill.StatusPendingVote
					after.NextCheck = nextCheckAfter(t.today, legacyVoteBand, ls.rng)
				} else {
					after.MarkFailed(t.today, nil)
				}
			case level != bill.LevelCity:
				after.Status = bill.StatusInCommittee
				after.NextCheck = nextCheckAfter(t.today, legacyCommitteeBand, ls.rng)
			default:
				after.Status = bill.StatusPendingVote
				after.NextCheck = nextCheckAfter(t.today, legacyReviewBand, ls.rng)
			}
			ls.votes.apply(t, before, after, nil)
		}
	}
}

// archive moves resolved bills out of the active collections.
func (ls *LegislativeSystem) archive(t *tick) {
	if t.c.Bills == nil {
		return
	}
	for _, level := range bill.Levels {
		var active []bill.Bill
		for _, b := range t.c.Bills[level] {
			if b.Terminal() {
				t.c.ArchivedBills = append(t.c.ArchivedBills, b)
				continue
			}
			active = append(active, b)
		}
		t.c.Bills[level] = active
	}
}

func nextCheckAfter(today calendar.GameDate, band [2]int, rng random.Source) calendar.GameDate {
	return today.AddDays(random.Between(rng, band[0], band[1]))
}
