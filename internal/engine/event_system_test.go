package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/collaborators/baseline"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
	"github.com/MRamiBalles/Legislatura/internal/events"
	"github.com/MRamiBalles/Legislatura/internal/platform/logger"
)

func TestApplyEffects(t *testing.T) {
	base := campaign.Stats(`{"economy":{"unemployment":5},"budget":{"revenue":1000}}`)
	cases := []struct {
		name   string
		effect events.StatEffect
		path   string
		want   float64
	}{
		{"add", events.StatEffect{Path: "economy.unemployment", Op: events.OpAdd, Value: 0.8}, "economy.unemployment", 5.8},
		{"default op adds", events.StatEffect{Path: "economy.unemployment", Value: -1}, "economy.unemployment", 4},
		{"multiply", events.StatEffect{Path: "budget.revenue", Op: events.OpMultiply, Value: 0.9}, "budget.revenue", 900},
		{"percentage", events.StatEffect{Path: "budget.revenue", Op: events.OpPercentage, Value: 5}, "budget.revenue", 1050},
		{"missing path starts at zero", events.StatEffect{Path: "mood.index", Op: events.OpAdd, Value: -4}, "mood.index", -4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ApplyEffects(base, []events.StatEffect{tc.effect})
			require.NoError(t, err)
			got, ok := out.Float(tc.path)
			require.True(t, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	t.Run("unknown op keeps the document", func(t *testing.T) {
		out, err := ApplyEffects(base, []events.StatEffect{
			{Path: "economy.unemployment", Op: events.OpAdd, Value: 1},
			{Path: "budget.revenue", Op: "square", Value: 2},
		})
		require.Error(t, err)
		assert.Equal(t, base, out)
	})
}

// shiftingCoalitions records what it was asked to process and returns a fixed
// approval shift.
type shiftingCoalitions struct {
	got   []events.WorldEvent
	shift map[string]float64
}

func (s *shiftingCoalitions) Process(in collaborators.CoalitionInput) (collaborators.CoalitionOutput, error) {
	s.got = append(s.got, in.Events...)
	return collaborators.CoalitionOutput{
		Coalitions: in.Coalitions,
		Report: collaborators.CoalitionReport{
			ApprovalShift: s.shift,
			News:          []events.NewsItem{{Headline: "Voter blocs react", Type: events.NewsPolitics, Scope: "city"}},
		},
	}, nil
}

func layoffs(jurisdictionID string) events.WorldEvent {
	return events.WorldEvent{
		Title:           "Major employer announces layoffs",
		Description:     "Hundreds of jobs are cut.",
		Category:        "economic",
		Severity:        events.SeverityHigh,
		Scope:           "city",
		JurisdictionID:  jurisdictionID,
		Effects:         []events.StatEffect{{Path: "economy.unemployment", Op: events.OpAdd, Value: 0.8}},
		CoalitionEvents: []events.CoalitionEvent{{CoalitionID: "workers", SatisfactionDelta: -20, MobilizationDelta: 10}},
	}
}

func TestEventApplyCascadesIntoCoalitions(t *testing.T) {
	c := defaultCampaign(t, calendar.MustNew(2025, 5, 1))
	coalitions := &shiftingCoalitions{shift: map[string]float64{"civic": 10}}
	es := NewEventSystem(collaborators.Set{News: baseline.News{}, Coalitions: coalitions}, quiet, logger.Discard())
	tk := newTick(c.Clone(), c.CurrentDate)
	before := c.Jurisdictions[c.CityID]

	require.NoError(t, es.Apply(tk, layoffs(c.CityID)))

	city := tk.c.Jurisdictions[c.CityID]
	assert.InDelta(t, before.Stats.FloatOr("economy.unemployment", 0)+0.8, city.Stats.FloatOr("economy.unemployment", 0), 1e-9)

	require.Len(t, tk.result.Events, 1)
	ev := tk.result.Events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, c.CurrentDate, ev.Date)

	require.Len(t, tk.result.NewsItems, 3)
	assert.Equal(t, "Major employer announces layoffs", tk.result.NewsItems[0].Headline)
	assert.Equal(t, "Officials under pressure after: Major employer announces layoffs", tk.result.NewsItems[1].Headline)
	assert.Equal(t, ev.ID, tk.result.NewsItems[1].RelatedID)
	assert.Equal(t, "Voter blocs react", tk.result.NewsItems[2].Headline)

	require.Len(t, coalitions.got, 1)
	assert.Equal(t, ev.ID, coalitions.got[0].ID)

	assert.Greater(t, city.Popularity["civic"], before.Popularity["civic"])
	for id, j := range tk.c.Jurisdictions {
		if len(j.Popularity) > 0 {
			assert.InDelta(t, 100, rules.Sum(j.Popularity), 0.1, id)
		}
	}
	assert.Contains(t, tk.result.PoliticalUpdates.PartyPopularity, c.CityID)

	var world bool
	for _, e := range tk.result.Effects {
		world = world || e.Type == events.EventTypeWorldEvent
	}
	assert.True(t, world)
	// The input campaign is untouched.
	assert.Equal(t, before.Stats, c.Jurisdictions[c.CityID].Stats)
}

func TestEventApplyUpdatesCoalitionState(t *testing.T) {
	c := defaultCampaign(t, calendar.MustNew(2025, 5, 1))
	es := NewEventSystem(collaborators.Set{News: baseline.News{}, Coalitions: baseline.Coalitions{}}, quiet, logger.Discard())
	tk := newTick(c.Clone(), c.CurrentDate)

	// An unknown jurisdiction lands on the city.
	require.NoError(t, es.Apply(tk, layoffs("atlantis")))

	workers := tk.c.Coalitions["workers"]
	assert.InDelta(t, c.Coalitions["workers"].Satisfaction-20, workers.Satisfaction, 1e-9)
	assert.Greater(t, workers.Mobilization, c.Coalitions["workers"].Mobilization)
	for _, e := range tk.result.Effects {
		if e.Type == events.EventTypeWorldEvent {
			assert.Equal(t, c.CityID, e.TargetID)
		}
	}
	assert.Greater(t, tk.c.Jurisdictions[c.CityID].Stats.FloatOr("economy.unemployment", 0),
		c.Jurisdictions[c.CityID].Stats.FloatOr("economy.unemployment", 0))
}

func TestScheduledEventsFireInListedMonths(t *testing.T) {
	cases := []struct {
		month int
		want  []string
	}{
		{3, []string{"Budget season opens"}},
		{4, nil},
		{9, []string{"Budget season opens"}},
		{12, []string{"Fiscal year closes"}},
	}
	for _, tc := range cases {
		c := defaultCampaign(t, calendar.MustNew(2025, tc.month, 1))
		es := NewEventSystem(collaborators.Set{
			Events:     baseline.MustEvents(quiet),
			News:       baseline.News{},
			Coalitions: baseline.Coalitions{},
		}, quiet, logger.Discard())
		tk := newTick(c.Clone(), c.CurrentDate)
		require.NoError(t, es.Scheduled(tk))

		var titles []string
		for _, ev := range tk.result.Events {
			titles = append(titles, ev.Title)
			assert.True(t, ev.Scheduled)
			assert.Equal(t, "republic", ev.JurisdictionID)
		}
		assert.Equal(t, tc.want, titles, "month %d", tc.month)
		require.Len(t, tk.result.NewsItems, len(tc.want))
		for _, n := range tk.result.NewsItems {
			assert.Equal(t, events.NewsAdmin, n.Type)
		}
	}
}
