package politician

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
)

func seedStore() *Store {
	s := NewStore()
	s.Add(Base{ID: "p1", Name: "Ana", PartyID: "red", IsPlayer: true}, State{ApprovalRating: 50, PoliticalCapital: 40,
		Office: &Office{Level: bill.LevelCity, JurisdictionID: "city", Body: BodyCouncil, Committees: []string{"general"}}})
	s.Add(Base{ID: "p2", Name: "Luis", PartyID: "blue"}, State{ApprovalRating: 30,
		Office: &Office{Level: bill.LevelCity, JurisdictionID: "city", Body: BodyCouncil}})
	s.Add(Base{ID: "p3", Name: "Marta", PartyID: "blue"}, State{ApprovalRating: 60})
	return s
}

func TestSetStateReplacesWithoutAliasing(t *testing.T) {
	s := seedStore()
	st, ok := s.State("p1")
	require.True(t, ok)

	st.Office.Committees[0] = "mutated"
	st.ApprovalRating = 99
	fresh, _ := s.State("p1")
	assert.Equal(t, "general", fresh.Office.Committees[0], "reads are copies")
	assert.Equal(t, 50.0, fresh.ApprovalRating)

	require.True(t, s.SetState("p1", st))
	fresh, _ = s.State("p1")
	assert.Equal(t, 99.0, fresh.ApprovalRating)
	assert.False(t, s.SetState("ghost", st))
}

func TestCloneIsolation(t *testing.T) {
	s := seedStore()
	c := s.Clone()
	st, _ := c.State("p2")
	st.ApprovalRating = 1
	c.SetState("p2", st)

	orig, _ := s.State("p2")
	assert.Equal(t, 30.0, orig.ApprovalRating)
	b, _ := c.Base("p2")
	assert.Equal(t, "Luis", b.Name)
}

func TestQueries(t *testing.T) {
	s := seedStore()
	assert.Equal(t, []string{"p1", "p2", "p3"}, s.IDs())
	assert.Equal(t, []string{"p1", "p2"}, s.Members("city", BodyCouncil))
	assert.Equal(t, []string{"p1"}, s.CommitteeMembers("city", "general"))
	id, ok := s.PlayerID()
	assert.True(t, ok)
	assert.Equal(t, "p1", id)

	st, _ := s.State("p3")
	assert.False(t, st.Incumbent())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := seedStore()
	back := FromSnapshot(s.Snapshot())
	assert.Equal(t, s.IDs(), back.IDs())
	st, _ := back.State("p1")
	assert.Equal(t, "general", st.Office.Committees[0])
}
