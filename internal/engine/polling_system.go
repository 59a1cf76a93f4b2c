package engine

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// pollMargin is the sampling noise added to published numbers.
const pollMargin = 1.5

// PollPayload is the data for EventTypePoll.
type PollPayload struct {
	JurisdictionID string             `json:"jurisdiction_id,omitempty"`
	ElectionID     string             `json:"election_id,omitempty"`
	Results        map[string]float64 `json:"results"`
	Leader         string             `json:"leader"`
}

// PollingSystem publishes weekly polls. Polls read state; they never move it.
type PollingSystem struct {
	rng    random.Source
	logger *logger.Logger
}

// NewPollingSystem creates the weekly polling routine.
func NewPollingSystem(rng random.Source, log *logger.Logger) *PollingSystem {
	return &PollingSystem{rng: rng, logger: log}
}

// Due reports a polling day.
func (ps *PollingSystem) Due(d calendar.GameDate) bool {
	return d.Weekday() == calendar.Monday
}

// Weekly publishes party polls per jurisdiction and candidate polls for
// upcoming elections the player runs in.
func (ps *PollingSystem) Weekly(t *tick) {
	for _, jid := range sortedKeys(t.c.Jurisdictions) {
		j := t.c.Jurisdictions[jid]
		if len(j.Popularity) == 0 {
			continue
		}
		results := ps.sample(j.Popularity)
		leader := leaderOf(results)
		name := leader
		if p, ok := t.c.Parties[leader]; ok {
			name = p.Name
		}
		ps.publish(t, PollPayload{JurisdictionID: jid, Results: results, Leader: leader},
			fmt.Sprintf("Poll: %s leads in %s with %.1f%%", name, j.Name, results[leader]), string(j.Level), jid)
	}

	for _, e := range t.c.Elections {
		if e.Resolved || e.Date.Before(t.today) || !e.HasCandidate(t.c.PlayerID) {
			continue
		}
		support := map[string]float64{}
		for _, cand := range e.Candidates {
			support[cand.PoliticianID] = cand.Support
		}
		results := ps.sample(support)
		leader := leaderOf(results)
		name := leader
		if t.c.Politicians != nil {
			if b, ok := t.c.Politicians.Base(leader); ok {
				name = b.Name
			}
		}
		ps.publish(t, PollPayload{JurisdictionID: e.JurisdictionID, ElectionID: e.ID, Results: results, Leader: leader},
			fmt.Sprintf("%s race: %s ahead at %.1f%%", e.Office, name, results[leader]), string(e.Level), e.JurisdictionID)
	}
}

func (ps *PollingSystem) publish(t *tick, p PollPayload, headline, scope, jid string) {
	t.emit(events.New(events.EventTypePoll, t.today, "SYSTEM_POLLSTER", jid, headline, p))
	t.news(events.NewsItem{
		Headline:       headline,
		Type:           events.NewsPoll,
		Scope:          scope,
		JurisdictionID: jid,
		RelatedID:      p.ElectionID,
	})
	ps.logger.Debug("poll published", "jurisdiction", jid, "leader", p.Leader)
}

func (ps *PollingSystem) sample(actual map[string]float64) map[string]float64 {
	noisy := make(map[string]float64, len(actual))
	for _, k := range sortedKeys(actual) {
		noisy[k] = actual[k] + random.Jitter(ps.rng, pollMargin)
	}
	return rules.Renormalize(noisy)
}

func leaderOf(results map[string]float64) string {
	best := ""
	for _, k := range sortedKeys(results) {
		if best == "" || results[k] > results[best] {
			best = k
		}
	}
	return best
}
