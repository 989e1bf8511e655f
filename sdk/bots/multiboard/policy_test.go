package multiboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/multiboard/sdk/analysis"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.InDelta(t, 0.4, p.PreflopMultiplier, 1e-9)
	assert.InDelta(t, 0.75, p.PostflopMultiplier, 1e-9)
	assert.Equal(t, 5, p.IntimidationThreshold)
	assert.InDelta(t, 0.15, p.IntimidationPenalty, 1e-9)
	assert.InDelta(t, 0.5, p.RaiseEquityFloor, 1e-9)
	assert.Equal(t, analysis.ModeUniform, p.Mode())
	assert.False(t, p.OrderByStrength)

	planner := p.PlannerPolicy()
	assert.Equal(t, 5, planner.MinPairRank)
	assert.Zero(t, planner.SwapProbability)
	assert.Equal(t, p.Iterations, planner.Iterations)

	assert.InDelta(t, 0.4, p.multiplier(StreetPreflop), 1e-9)
	assert.InDelta(t, 0.75, p.multiplier(StreetFlop), 1e-9)
	assert.InDelta(t, 0.75, p.multiplier(StreetRiver), 1e-9)
}

func TestLoadPolicy(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		p, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), p)
	})

	t.Run("partial file", func(t *testing.T) {
		p, err := LoadPolicy(writePolicy(t, `
postflop_multiplier = 0.6
iterations          = 250
sampling            = "weighted"
order_by_strength   = true

allocation {
  min_pair_rank    = 8
  swap_probability = 0.15
}
`))
		require.NoError(t, err)
		assert.InDelta(t, 0.4, p.PreflopMultiplier, 1e-9)
		assert.InDelta(t, 0.6, p.PostflopMultiplier, 1e-9)
		assert.Equal(t, 250, p.Iterations)
		assert.Equal(t, analysis.ModeRangeWeighted, p.Mode())
		assert.True(t, p.OrderByStrength)
		assert.Equal(t, 8, p.Allocation.MinPairRank)
		assert.InDelta(t, 0.15, p.Allocation.SwapProbability, 1e-9)
		assert.Equal(t, 250, p.Allocation.Iterations, "planner inherits selector iterations")
		assert.Nil(t, p.WeightBoost)
	})

	t.Run("explicit zero weight boost", func(t *testing.T) {
		p, err := LoadPolicy(writePolicy(t, `weight_boost = 0`))
		require.NoError(t, err)
		require.NotNil(t, p.WeightBoost)
		assert.Zero(t, *p.WeightBoost)
	})

	tests := []struct {
		name string
		body string
	}{
		{"syntax error", `iterations = `},
		{"unknown attribute", `bluff_frequency = 0.3`},
		{"bad sampling", `sampling = "psychic"`},
		{"negative iterations", `iterations = -5`},
		{"penalty out of range", `intimidation_penalty = 1.5`},
		{"min pair rank out of range", "allocation {\n  min_pair_rank = 15\n}"},
		{"swap probability out of range", "allocation {\n  swap_probability = 2\n}"},
		{"weight boost out of range", `weight_boost = -0.1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPolicy(writePolicy(t, tt.body))
			require.Error(t, err)
		})
	}
}
