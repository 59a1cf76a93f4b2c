package engine

import (
	"fmt"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// MonthlyEventChance is the chance of a random world event each month.
const MonthlyEventChance = 0.3

// EventSystem generates world events, applies their stat effects and
// cascades coalition sub-events into the coalition engine.
type EventSystem struct {
	collab collaborators.Set
	rng    random.Source
	logger *logger.Logger
}

// NewEventSystem creates the event updater.
func NewEventSystem(set collaborators.Set, rng random.Source, log *logger.Logger) *EventSystem {
	return &EventSystem{collab: set, rng: rng, logger: log}
}

func eventContext(t *tick, scheduled bool) collaborators.EventContext {
	ctx := collaborators.EventContext{Date: t.today, Scheduled: scheduled}
	for _, id := range sortedKeys(t.c.Jurisdictions) {
		ctx.Jurisdictions = append(ctx.Jurisdictions, t.c.Jurisdictions[id])
	}
	return ctx
}

// Random draws at most one world event with probability chance.
func (es *EventSystem) Random(t *tick, chance float64) error {
	if !random.Chance(es.rng, chance) {
		return nil
	}
	ev, err := es.collab.Events.Generate(eventContext(t, false))
	if err != nil {
		return fmt.Errorf("generate event: %w", err)
	}
	if ev == nil {
		return nil
	}
	return es.Apply(t, *ev)
}

// Scheduled fires the administrative events fixed to today.
func (es *EventSystem) Scheduled(t *tick) error {
	evs, err := es.collab.Events.Scheduled(eventContext(t, true))
	if err != nil {
		return fmt.Errorf("scheduled events: %w", err)
	}
	for _, ev := range evs {
		if err := es.Apply(t, ev); err != nil {
			return err
		}
	}
	return nil
}

// Apply resolves an event's stat effects against its jurisdiction, writes
// the article and cascades coalition sub-events.
func (es *EventSystem) Apply(t *tick, ev events.WorldEvent) error {
	if ev.ID == "" {
		ev.ID = events.NewID()
	}
	if ev.Date.IsZero() {
		ev.Date = t.today
	}
	jid := ev.JurisdictionID
	if _, ok := t.c.Jurisdictions[jid]; !ok {
		jid = t.c.CityID
	}
	j, ok := t.c.Jurisdictions[jid]
	if !ok {
		return fmt.Errorf("event %s: no jurisdiction", ev.ID)
	}
	stats, err := ApplyEffects(j.Stats, ev.Effects)
	if err != nil {
		return fmt.Errorf("event %s: %w", ev.ID, err)
	}
	j.Stats = stats
	t.c.Jurisdictions[jid] = j

	article, err := es.collab.News.Article(ev)
	if err != nil {
		return fmt.Errorf("event %s article: %w", ev.ID, err)
	}
	t.news(article)
	if ev.Severity.High() {
		follow, err := es.collab.News.FollowUp(ev)
		if err != nil {
			return fmt.Errorf("event %s follow-up: %w", ev.ID, err)
		}
		t.news(follow)
	}
	t.result.Events = append(t.result.Events, ev)
	t.emit(events.New(events.EventTypeWorldEvent, t.today, "SYSTEM_WORLD", jid, ev.Title, ev))
	es.logger.Event(string(events.EventTypeWorldEvent), "SYSTEM_WORLD", ev.Title)

	if len(ev.CoalitionEvents) > 0 {
		return es.Mobilize(t, []events.WorldEvent{ev})
	}
	return nil
}

// ApplyEffects applies each effect to its dotted stat path.
func ApplyEffects(s campaign.Stats, effects []events.StatEffect) (campaign.Stats, error) {
	out := s
	for _, eff := range effects {
		v, err := eff.Op.Apply(out.FloatOr(eff.Path, 0), eff.Value)
		if err != nil {
			return s, err
		}
		next, err := out.With(eff.Path, v)
		if err != nil {
			return s, err
		}
		out = next
	}
	return out, nil
}

// Mobilize runs the coalition engine over evs and folds its approval shift
// into every jurisdiction's party popularity.
func (es *EventSystem) Mobilize(t *tick, evs []events.WorldEvent) error {
	parties := make(map[string]map[string]float64, len(t.c.Parties))
	for id, p := range t.c.Parties {
		parties[id] = p.Ideology
	}
	out, err := es.collab.Coalitions.Process(collaborators.CoalitionInput{
		Date:       t.today,
		Coalitions: t.c.Coalitions,
		Events:     evs,
		Electorate: t.c.Electorate,
		Parties:    parties,
	})
	if err != nil {
		return fmt.Errorf("coalitions: %w", err)
	}
	if out.Coalitions != nil {
		t.c.Coalitions = out.Coalitions
	}
	if len(out.Report.ApprovalShift) > 0 {
		for _, jid := range sortedKeys(t.c.Jurisdictions) {
			j := t.c.Jurisdictions[jid]
			if len(j.Popularity) == 0 {
				continue
			}
			pop := copyFloats(j.Popularity)
			for party, shift := range out.Report.ApprovalShift {
				if _, ok := pop[party]; ok && rules.Finite(shift) {
					pop[party] = max(pop[party]+shift, popularityFloor)
				}
			}
			j.Popularity = rules.Renormalize(pop)
			t.c.Jurisdictions[jid] = j
			if t.result.PoliticalUpdates.PartyPopularity == nil {
				t.result.PoliticalUpdates.PartyPopularity = map[string]map[string]float64{}
			}
			t.result.PoliticalUpdates.PartyPopularity[jid] = copyFloats(j.Popularity)
		}
	}
	t.news(out.Report.News...)
	if out.Report.Summary != "" {
		es.logger.Info("coalition report", "summary", out.Report.Summary)
	}
	return nil
}
