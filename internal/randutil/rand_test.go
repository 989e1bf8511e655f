package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeterministic(t *testing.T) {
	a, b := New(99), New(99)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestSplitDeterministic(t *testing.T) {
	left := Split(New(5), 4)
	right := Split(New(5), 4)
	assert.Len(t, left, 4)
	for i := range left {
		assert.Equal(t, left[i].Uint64(), right[i].Uint64())
	}
}

func TestBernoulli(t *testing.T) {
	rng := New(11)
	assert.False(t, Bernoulli(rng, 0))
	assert.True(t, Bernoulli(rng, 1))

	hits := 0
	for range 10000 {
		if Bernoulli(rng, 0.15) {
			hits++
		}
	}
	assert.InDelta(t, 1500, hits, 200)
}
