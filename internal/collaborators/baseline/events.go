package baseline

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

//go:embed events.yaml
var defaultEvents []byte

// EventTemplate is one entry of the event catalog.
type EventTemplate struct {
	ID         string                  `yaml:"id"`
	Title      string                  `yaml:"title"`
	Category   string                  `yaml:"category"`
	Severity   events.Severity         `yaml:"severity"`
	Weight     float64                 `yaml:"weight"`
	Months     []int                   `yaml:"months"`
	Effects    []events.StatEffect     `yaml:"effects"`
	Coalitions []events.CoalitionEvent `yaml:"coalitions"`
}

type eventCatalog struct {
	Random    []EventTemplate `yaml:"random"`
	Scheduled []EventTemplate `yaml:"scheduled"`
}

// Events draws world events from a YAML template catalog.
type Events struct {
	rng     random.Source
	catalog eventCatalog
}

// NewEvents parses a template catalog.
func NewEvents(rng random.Source, data []byte) (*Events, error) {
	var c eventCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("baseline: decode events: %w", err)
	}
	for _, t := range append(append([]EventTemplate(nil), c.Random...), c.Scheduled...) {
		if t.ID == "" || t.Title == "" {
			return nil, fmt.Errorf("baseline: event template needs id and title")
		}
		for _, eff := range t.Effects {
			if _, err := eff.Op.Apply(0, 0); err != nil {
				return nil, fmt.Errorf("baseline: event %s: %w", t.ID, err)
			}
		}
	}
	return &Events{rng: rng, catalog: c}, nil
}

// MustEvents loads the embedded catalog.
func MustEvents(rng random.Source) *Events {
	e, err := NewEvents(rng, defaultEvents)
	if err != nil {
		panic(err)
	}
	return e
}

// Generate implements collaborators.EventGenerator.
func (e *Events) Generate(ctx collaborators.EventContext) (*events.WorldEvent, error) {
	if len(ctx.Jurisdictions) == 0 || len(e.catalog.Random) == 0 {
		return nil, nil
	}
	weights := make([]float64, len(e.catalog.Random))
	for i, t := range e.catalog.Random {
		weights[i] = t.Weight
	}
	idx := random.Weighted(e.rng, weights)
	if idx < 0 {
		return nil, nil
	}
	target, _ := random.Pick(e.rng, ctx.Jurisdictions)
	ev := instantiate(e.catalog.Random[idx], target, ctx)
	return &ev, nil
}

// Scheduled implements collaborators.EventGenerator.
func (e *Events) Scheduled(ctx collaborators.EventContext) ([]events.WorldEvent, error) {
	if len(ctx.Jurisdictions) == 0 {
		return nil, nil
	}
	target := ctx.Jurisdictions[0]
	for _, j := range ctx.Jurisdictions {
		if j.Level == bill.LevelNational {
			target = j
			break
		}
	}
	var out []events.WorldEvent
	for _, t := range e.catalog.Scheduled {
		for _, m := range t.Months {
			if m == ctx.Date.Month {
				ev := instantiate(t, target, ctx)
				ev.Scheduled = true
				out = append(out, ev)
				break
			}
		}
	}
	return out, nil
}

func instantiate(t EventTemplate, target campaign.Jurisdiction, ctx collaborators.EventContext) events.WorldEvent {
	return events.WorldEvent{
		ID:              events.NewID(),
		Title:           t.Title,
		Description:     fmt.Sprintf("%s (%s)", t.Title, target.Name),
		Category:        t.Category,
		Severity:        t.Severity,
		Scope:           string(target.Level),
		JurisdictionID:  target.ID,
		Date:            ctx.Date,
		Effects:         append([]events.StatEffect(nil), t.Effects...),
		CoalitionEvents: append([]events.CoalitionEvent(nil), t.Coalitions...),
	}
}
