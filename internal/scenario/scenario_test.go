package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/politician"
	"github.com/MRamiBalles/Legislatura/internal/domain/rules"
)

func TestDefaultScenario(t *testing.T) {
	c, err := Default(Options{ID: "c1", PoliticalSystem: "presidential", Start: calendar.MustNew(2025, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, "springfield", c.CityID)
	assert.Equal(t, "p_player", c.PlayerID)
	id, ok := c.Politicians.PlayerID()
	require.True(t, ok)
	assert.Equal(t, "p_player", id)

	city, ok := c.City()
	require.True(t, ok)
	assert.Equal(t, "civic", city.ExecutivePartyID)
	assert.Len(t, c.Politicians.Members("springfield", politician.BodyCouncil), 9)
	for _, jid := range []string{"springfield", "columbia", "republic"} {
		j, ok := c.Jurisdiction(jid)
		require.True(t, ok, jid)
		assert.InDelta(t, 100, rules.Sum(j.Popularity), 0.1, jid)
		assert.True(t, j.Stats.Valid())
	}

	st, ok := c.Politicians.State("p_player")
	require.True(t, ok)
	assert.Equal(t, 40, st.Age)
	assert.Equal(t, politician.MaxActionPoints, st.ActionPoints)

	require.Len(t, c.Elections, 1)
	assert.True(t, c.Elections[0].HasCandidate("p_player"))
	require.Len(t, c.Bills[bill.LevelCity], 1)
	assert.True(t, c.Bills[bill.LevelCity][0].Legacy)
}

func TestBuildRejectsUnknownParty(t *testing.T) {
	doc, err := Parse([]byte(`
city: x
player: p
parties: [{id: a, name: A}]
jurisdictions: [{id: x, name: X, level: city, seats: {b: 3}}]
politicians: [{id: p, name: P, party: a, player: true}]
`))
	require.NoError(t, err)
	_, err = doc.Build(Options{Start: calendar.MustNew(2025, 1, 1)})
	assert.ErrorContains(t, err, "unknown party b")
}

func TestBuildRequiresPlayer(t *testing.T) {
	doc, err := Parse([]byte(`
city: x
player: ghost
parties: [{id: a, name: A}]
jurisdictions: [{id: x, name: X, level: city}]
`))
	require.NoError(t, err)
	_, err = doc.Build(Options{Start: calendar.MustNew(2025, 1, 1)})
	assert.ErrorContains(t, err, "player")
}
