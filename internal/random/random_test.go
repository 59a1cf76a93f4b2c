package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestChanceBounds(t *testing.T) {
	assert.False(t, Chance(Fixed(0), 0))
	assert.True(t, Chance(Fixed(0.99), 1))
	assert.True(t, Chance(Fixed(0.2), 0.3))
	assert.False(t, Chance(Fixed(0.4), 0.3))
}

func TestBetweenInclusive(t *testing.T) {
	assert.Equal(t, 7, Between(Fixed(0), 7, 60))
	assert.Equal(t, 60, Between(Fixed(0.999), 7, 60))
	assert.Equal(t, 5, Between(Fixed(0.5), 5, 5))
}

func TestWeighted(t *testing.T) {
	weights := []float64{0, 3, 1}
	assert.Equal(t, 1, Weighted(Fixed(0), weights))
	assert.Equal(t, 1, Weighted(Fixed(0.74), weights))
	assert.Equal(t, 2, Weighted(Fixed(0.76), weights))
	assert.Equal(t, -1, Weighted(Fixed(0.5), []float64{0, -1}))
}

func TestScriptedCycles(t *testing.T) {
	s := NewScripted(0.1, 0.9)
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 9, s.Intn(10))
}

func TestPick(t *testing.T) {
	v, ok := Pick(Fixed(0.5), []string{"a", "b", "c", "d"})
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = Pick[string](Fixed(0.5), nil)
	assert.False(t, ok)
}
