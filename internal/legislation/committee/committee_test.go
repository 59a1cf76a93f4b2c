package committee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignByKeyword(t *testing.T) {
	c := MustDefault()
	assert.Equal(t, "finance", c.Assign([]string{"raise_sales_tax"}).ID)
	assert.Equal(t, "justice", c.Assign([]string{"police_funding", "court_reform", "school_lunch"}).ID)
	assert.Equal(t, "environment", c.Assign([]string{"Carbon_Tax_Credit", "clean_energy"}).ID)
}

func TestAssignFallsBackToGeneral(t *testing.T) {
	c := MustDefault()
	got := c.Assign([]string{"rename_city_hall"})
	assert.Equal(t, "general", got.ID)
	assert.Equal(t, 11, got.Size)
	assert.Equal(t, "general", c.Assign(nil).ID)
}

func TestAssignTieKeepsCatalogOrder(t *testing.T) {
	c := MustDefault()
	// one finance match, one health match
	assert.Equal(t, "finance", c.Assign([]string{"budget_cap", "hospital_beds"}).ID)
}

func TestParseValidation(t *testing.T) {
	_, err := Parse([]byte(`general: missing
committees: [{id: a, size: 3}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`general: a
committees: [{id: a, size: 0}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`general: a
committees: [{id: a, size: 3}, {id: a, size: 3}]`))
	assert.Error(t, err)

	c, err := Parse([]byte(`general: a
committees: [{id: a, name: A, size: 3}]`))
	require.NoError(t, err)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", got.Name)
}
