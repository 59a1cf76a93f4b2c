package engine

import (
	"fmt"
	"sort"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// Executive election cycles: every Period years, when year%Period == Offset.
var electionCycles = map[bill.Level]struct {
	Period, Offset int
	Office         string
}{
	bill.LevelCity:     {Period: 2, Offset: 1, Office: "Mayor"},
	bill.LevelState:    {Period: 4, Offset: 2, Office: "Governor"},
	bill.LevelNational: {Period: 4, Offset: 0, Office: "President"},
}

// ElectionResultPayload is the data for EventTypeElectionResult.
type ElectionResultPayload struct {
	ElectionID string               `json:"election_id"`
	WinnerID   string               `json:"winner_id"`
	Candidates []campaign.Candidate `json:"candidates"`
}

// ElectionSystem runs AI campaigns, election nights and the yearly cycle.
type ElectionSystem struct {
	rng    random.Source
	logger *logger.Logger
}

// NewElectionSystem creates the election routine.
func NewElectionSystem(rng random.Source, log *logger.Logger) *ElectionSystem {
	return &ElectionSystem{rng: rng, logger: log}
}

// Campaign lets every non-player candidate spend funds in the races the
// player is running in.
func (es *ElectionSystem) Campaign(t *tick) {
	for i, e := range t.c.Elections {
		if e.Resolved || e.Date.Before(t.today) || !e.HasCandidate(t.c.PlayerID) {
			continue
		}
		support := map[string]float64{}
		cands := append([]campaign.Candidate(nil), e.Candidates...)
		for k, cand := range cands {
			if cand.PoliticianID != t.c.PlayerID {
				spend := min(cand.Funds, 500+cand.Funds*0.02)
				cand.Funds -= spend
				cand.Support = max(cand.Support+spend/20000+random.Jitter(es.rng, 0.3), 0.5)
			}
			cands[k] = cand
			support[cand.PoliticianID] = cand.Support
		}
		norm := rules.Renormalize(support)
		for k := range cands {
			cands[k].Support = norm[cands[k].PoliticianID]
		}
		e.Candidates = cands
		t.c.Elections[i] = e
	}
}

// ElectionNight opens the first election held today that the player runs
// in and resolves the others immediately. It reports whether an election
// is now pending.
func (es *ElectionSystem) ElectionNight(t *tick) bool {
	pending := false
	for _, e := range append([]campaign.Election(nil), t.c.Elections...) {
		if e.Resolved || e.Date != t.today {
			continue
		}
		if e.HasCandidate(t.c.PlayerID) && !pending {
			pending = true
			t.c.PendingElectionID = e.ID
			msg := fmt.Sprintf("Election night: %s race too close to call", e.Office)
			t.emit(events.New(events.EventTypeElectionNight, t.today, "SYSTEM_ELECTIONS", e.ID, msg, e))
			t.notify(t.c.PlayerID, msg)
			t.news(events.NewsItem{Headline: msg, Type: events.NewsElection, Scope: string(e.Level), JurisdictionID: e.JurisdictionID, RelatedID: e.ID})
			continue
		}
		if _, err := es.Resolve(t, e.ID); err != nil {
			es.logger.Error("election resolution failed", "election", e.ID, "error", err)
		}
	}
	return pending
}

// Resolve decides an election: highest support wins, ties go to funds and
// then id. The winner takes the office and losing incumbents vacate it.
func (es *ElectionSystem) Resolve(t *tick, id string) (campaign.Election, error) {
	e, idx, ok := t.c.Election(id)
	if !ok {
		return campaign.Election{}, fmt.Errorf("%w: %s", ErrUnknownElection, id)
	}
	if e.Resolved {
		return e, nil
	}
	if len(e.Candidates) == 0 {
		return e, fmt.Errorf("election %s has no candidates", id)
	}
	ranked := append([]campaign.Candidate(nil), e.Candidates...)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Support != ranked[b].Support {
			return ranked[a].Support > ranked[b].Support
		}
		if ranked[a].Funds != ranked[b].Funds {
			return ranked[a].Funds > ranked[b].Funds
		}
		return ranked[a].PoliticianID < ranked[b].PoliticianID
	})
	winner := ranked[0]

	store := t.c.Politicians
	if store != nil {
		for _, cand := range e.Candidates {
			st, ok := store.State(cand.PoliticianID)
			if !ok {
				continue
			}
			if cand.PoliticianID == winner.PoliticianID {
				j := t.c.Jurisdictions[e.JurisdictionID]
				won := e.Date
				st = st.WithOffice(&politician.Office{Level: j.Level, JurisdictionID: j.ID, Body: e.Body, Title: e.Office})
				st.LastElectionWin = &won
				st.WonAsIncumbent = cand.Incumbent
			} else if cand.Incumbent {
				st = st.WithOffice(nil)
			}
			store.SetState(cand.PoliticianID, st)
		}
	}
	if e.Body == politician.BodyExecutive {
		if j, ok := t.c.Jurisdictions[e.JurisdictionID]; ok {
			j.ExecutiveID = winner.PoliticianID
			j.ExecutivePartyID = winner.PartyID
			t.c.Jurisdictions[j.ID] = j
		}
	}

	e.Resolved = true
	e.WinnerID = winner.PoliticianID
	t.c.Elections[idx] = e
	if t.c.PendingElectionID == id {
		t.c.PendingElectionID = ""
	}

	name := winner.PoliticianID
	if store != nil {
		if b, ok := store.Base(winner.PoliticianID); ok {
			name = b.Name
		}
	}
	msg := fmt.Sprintf("%s wins the %s race with %.1f%%", name, e.Office, winner.Support)
	t.emit(events.New(events.EventTypeElectionResult, t.today, "SYSTEM_ELECTIONS", e.ID, msg,
		ElectionResultPayload{ElectionID: e.ID, WinnerID: winner.PoliticianID, Candidates: e.Candidates}))
	t.news(events.NewsItem{Headline: msg, Type: events.NewsElection, Scope: string(e.Level), JurisdictionID: e.JurisdictionID, RelatedID: e.ID})
	es.logger.Event(string(events.EventTypeElectionResult), winner.PoliticianID, msg)
	return e, nil
}

// NewYear ages every politician and schedules this year's elections.
func (es *ElectionSystem) NewYear(t *tick) {
	store := t.c.Politicians
	if store != nil {
		for _, id := range store.IDs() {
			st, _ := store.State(id)
			st.Age++
			store.SetState(id, st)
		}
	}
	for _, jid := range sortedKeys(t.c.Jurisdictions) {
		j := t.c.Jurisdictions[jid]
		cycle, ok := electionCycles[j.Level]
		if !ok || t.today.Year%cycle.Period != cycle.Offset || es.scheduled(t.c, jid, t.today.Year) {
			continue
		}
		e := campaign.Election{
			ID:             events.NewID(),
			Level:          j.Level,
			JurisdictionID: jid,
			Office:         cycle.Office,
			Body:           politician.BodyExecutive,
			Date:           ElectionDay(t.today.Year),
			Candidates:     es.candidates(t.c, j),
		}
		if len(e.Candidates) == 0 {
			continue
		}
		t.c.Elections = append(t.c.Elections, e)
		t.news(events.NewsItem{
			Headline:       fmt.Sprintf("%s election set for %s", cycle.Office, e.Date),
			Type:           events.NewsElection,
			Scope:          string(j.Level),
			JurisdictionID: jid,
			RelatedID:      e.ID,
		})
	}
}

func (es *ElectionSystem) scheduled(c *campaign.Campaign, jid string, year int) bool {
	for _, e := range c.Elections {
		if e.JurisdictionID == jid && e.Body == politician.BodyExecutive && e.Date.Year == year {
			return true
		}
	}
	return false
}

// candidates are the incumbent, the most approved politician of another
// party in the jurisdiction and the player when they are based there.
func (es *ElectionSystem) candidates(c *campaign.Campaign, j campaign.Jurisdiction) []campaign.Candidate {
	store := c.Politicians
	if store == nil {
		return nil
	}
	var out []campaign.Candidate
	add := func(id string, incumbent bool, support float64) {
		for _, cand := range out {
			if cand.PoliticianID == id {
				return
			}
		}
		base, ok := store.Base(id)
		if !ok {
			return
		}
		st, _ := store.State(id)
		out = append(out, campaign.Candidate{
			PoliticianID: id,
			PartyID:      base.PartyID,
			Support:      support,
			Funds:        st.PoliticalCapital * 2000,
			Incumbent:    incumbent,
		})
	}
	if j.ExecutiveID != "" {
		add(j.ExecutiveID, true, 45)
	}
	best, bestApproval := "", -1.0
	for _, id := range store.IDs() {
		base, _ := store.Base(id)
		st, _ := store.State(id)
		if id == j.ExecutiveID || id == c.PlayerID || base.PartyID == j.ExecutivePartyID {
			continue
		}
		if st.Office != nil && st.Office.JurisdictionID != j.ID {
			continue
		}
		if st.ApprovalRating > bestApproval {
			best, bestApproval = id, st.ApprovalRating
		}
	}
	if best != "" {
		add(best, false, 40)
	}
	if st, ok := store.State(c.PlayerID); ok && st.Office != nil && st.Office.JurisdictionID == j.ID {
		add(c.PlayerID, j.ExecutiveID == c.PlayerID, 15)
	}
	if len(out) < 2 {
		return nil
	}
	support := map[string]float64{}
	for _, cand := range out {
		support[cand.PoliticianID] = cand.Support
	}
	norm := rules.Renormalize(support)
	for i := range out {
		out[i].Support = norm[out[i].PoliticianID]
	}
	return out
}

// ElectionDay is the Tuesday after the first Monday of November.
func ElectionDay(year int) calendar.GameDate {
	d := calendar.MustNew(year, 11, 2)
	for d.Weekday() != calendar.Tuesday {
		d = d.Next()
	}
	return d
}
