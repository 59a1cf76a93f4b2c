package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalDeltaBounded(t *testing.T) {
	for idx := -10.0; idx <= 110; idx += 2.5 {
		d := ApprovalDelta(MoodFromIndex(idx))
		assert.GreaterOrEqual(t, d, -2)
		assert.LessOrEqual(t, d, 3)
	}
	assert.Equal(t, 3, ApprovalDelta(MoodEnthusiastic))
	assert.Equal(t, -2, ApprovalDelta(MoodFurious))
	assert.Equal(t, "content", MoodFromIndex(60).String())
}

func TestRenormalizeSumsToHundred(t *testing.T) {
	cases := []map[string]float64{
		{"a": 40, "b": 40, "c": 40},
		{"a": 0.0001, "b": 99},
		{"a": -5, "b": 10},
		{"a": math.NaN(), "b": 0},
		{"a": 0, "b": 0, "c": 0},
	}
	for _, pop := range cases {
		out := Renormalize(pop)
		assert.InDelta(t, 100, Sum(out), 0.1)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
	assert.Empty(t, Renormalize(nil))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-3))
	assert.Equal(t, 100.0, ClampPercent(130))
	assert.Equal(t, 0.0, ClampPercent(math.NaN()))
	assert.Equal(t, 42.0, ClampPercent(42))
}

func TestApprovalTierCapital(t *testing.T) {
	assert.Equal(t, 3.0, ApprovalTierCapital(80))
	assert.Equal(t, 1.0, ApprovalTierCapital(45))
	assert.Equal(t, -2.0, ApprovalTierCapital(10))
}

func TestMoodIndexRespondsToGovernance(t *testing.T) {
	good := MoodIndex(3, 20, 8, 100)
	bad := MoodIndex(12, 60, 25, -2000)
	assert.Greater(t, good, bad)
	assert.LessOrEqual(t, good, 100.0)
	assert.GreaterOrEqual(t, bad, 0.0)
}
