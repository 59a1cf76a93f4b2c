package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"parliamentary", "presidential", "semi_presidential", "unicameral"}, c.SystemIDs())
}

func TestLookupByLevel(t *testing.T) {
	c := MustDefault()

	city, err := c.Lookup("presidential", bill.LevelCity)
	require.NoError(t, err)
	steps := make([]string, 0, city.Len())
	for _, s := range city.Stages {
		steps = append(steps, s.Step)
		assert.NotEqual(t, bill.KindCommittee, s.Kind, "city workflow has no committees")
	}
	assert.Equal(t, []string{"proposal_submitted", "public_comment_period", "council_vote"}, steps)

	state, err := c.Lookup("parliamentary", bill.LevelState)
	require.NoError(t, err)
	assert.Equal(t, "state_legislature", state.ID)

	for _, id := range c.SystemIDs() {
		national, err := c.Lookup(id, bill.LevelNational)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, national.Index("committee_markup"), 0, id)
		assert.Equal(t, bill.KindExecutive, national.Stages[national.Len()-1].Kind, id)
	}
}

func TestLookupErrors(t *testing.T) {
	c := MustDefault()
	_, err := c.Lookup("monarchy", bill.LevelNational)
	assert.ErrorIs(t, err, ErrUnknownSystem)
	_, err = c.Lookup("presidential", bill.Level("galactic"))
	assert.ErrorIs(t, err, ErrUnknownLevel)

	city, _ := c.Lookup("presidential", bill.LevelCity)
	_, err = city.Stage("senate_floor_vote")
	assert.ErrorIs(t, err, ErrUnknownStage)
	_, _, err = city.After("nope")
	assert.ErrorIs(t, err, ErrUnknownStage)

	next, ok, err := city.After("council_vote")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, next.Step)
}

func TestStageStatus(t *testing.T) {
	c := MustDefault()
	w, _ := c.Lookup("presidential", bill.LevelNational)
	want := map[string]bill.Status{
		"bill_introduced":      bill.StatusFloorConsideration,
		"committee_assignment": bill.StatusInCommittee,
		"committee_markup":     bill.StatusInCommittee,
		"house_floor_vote":     bill.StatusFloorConsideration,
		"presidential_action":  bill.StatusAwaitingSignature,
	}
	for step, status := range want {
		s, err := w.Stage(step)
		require.NoError(t, err)
		assert.Equal(t, status, s.Status(), step)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty": ``,
		"bad kind": `
council: {id: c, stages: [{step: a, kind: magic, duration: {min: 1, max: 2}}]}
legislature: {id: l, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
systems: {x: {id: x, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}}`,
		"inverted band": `
council: {id: c, stages: [{step: a, kind: procedural, duration: {min: 5, max: 2}}]}
legislature: {id: l, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
systems: {x: {id: x, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}}`,
		"missing vote band": `
council: {id: c, stages: [{step: v, kind: council, chamber: council, duration: {min: 1, max: 2}}]}
legislature: {id: l, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
systems: {x: {id: x, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}}`,
		"executive not last": `
council: {id: c, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
legislature: {id: l, stages: [{step: e, kind: executive, duration: {min: 1, max: 2}, vote: {min: 1, max: 2}}, {step: a, kind: procedural, duration: {min: 1, max: 2}}]}
systems: {x: {id: x, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}}`,
		"unknown requirement": `
council: {id: c, stages: [{step: a, kind: procedural, requirements: [bribe], duration: {min: 1, max: 2}}]}
legislature: {id: l, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
systems: {x: {id: x, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}}`,
		"no systems": `
council: {id: c, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}
legislature: {id: l, stages: [{step: a, kind: procedural, duration: {min: 1, max: 2}}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	w, _ := MustDefault().Lookup("unicameral", bill.LevelNational)
	c := w.Clone()
	c.Stages[0].Requirements[0] = "changed"
	assert.Equal(t, RequireProposer, w.Stages[0].Requirements[0])
}
