package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
)

func hole(t *testing.T, s string) poker.Hole {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	return poker.Hole{cards[0], cards[1]}
}

func TestEquityResult(t *testing.T) {
	result := EquityResult{Wins: 300, Ties: 50, Samples: 1000}
	assert.InDelta(t, 0.3, result.WinRate(), 1e-9)
	assert.InDelta(t, 0.05, result.TieRate(), 1e-9)
	assert.InDelta(t, 0.65, result.LossRate(), 1e-9)
	assert.Equal(t, uint64(650), result.Score())
	assert.InDelta(t, 0.325, result.Equity(), 1e-9)

	lower, upper := result.ConfidenceInterval()
	assert.Less(t, lower, 0.325)
	assert.Greater(t, upper, 0.325)

	var empty EquityResult
	assert.Zero(t, empty.Equity())
	lower, upper = empty.ConfidenceInterval()
	assert.Zero(t, lower)
	assert.Zero(t, upper)
}

func TestEstimateAcesPreflop(t *testing.T) {
	t.Parallel()
	est := &Estimator{Workers: 4}
	res, err := est.Estimate(context.Background(), randutil.New(1), Request{
		Hole:       hole(t, "As Ad"),
		Iterations: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(4000), res.Samples)
	assert.Greater(t, res.Equity(), 0.80)
	assert.LessOrEqual(t, res.Equity(), 1.0)
}

func TestEstimateBounds(t *testing.T) {
	t.Parallel()
	est := &Estimator{}
	for _, h := range []string{"7c 2d", "As Kd", "9h 9s", "3c 4c"} {
		res, err := est.Estimate(context.Background(), randutil.New(2), Request{
			Hole:       hole(t, h),
			Dead:       poker.MustParseCards("Qd Qh"),
			Iterations: 300,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Equity(), 0.0, h)
		assert.LessOrEqual(t, res.Equity(), 1.0, h)
	}
}

func TestEstimateDominantHoleNeverWorse(t *testing.T) {
	t.Parallel()
	est := &Estimator{}
	board := poker.MustParseCards("Qs Js Ts 3h 4d")

	weak, err := est.Estimate(context.Background(), randutil.New(3), Request{
		Hole: hole(t, "7c 2d"), Community: board, Iterations: 500,
	})
	require.NoError(t, err)

	royal, err := est.Estimate(context.Background(), randutil.New(3), Request{
		Hole: hole(t, "As Ks"), Community: board, Iterations: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, royal.Equity())
	assert.GreaterOrEqual(t, royal.Equity(), weak.Equity())
}

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()
	est := &Estimator{Workers: 3}
	req := Request{
		Hole:       hole(t, "Jh Th"),
		Community:  poker.MustParseCards("9h 8c 2s"),
		Iterations: 600,
	}
	a, err := est.Estimate(context.Background(), randutil.New(77), req)
	require.NoError(t, err)
	b, err := est.Estimate(context.Background(), randutil.New(77), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimateErrors(t *testing.T) {
	t.Parallel()
	est := &Estimator{}
	ctx := context.Background()

	_, err := est.Estimate(ctx, randutil.New(1), Request{Hole: hole(t, "As Ad")})
	require.ErrorIs(t, err, ErrZeroIterations)

	_, err = est.Estimate(ctx, randutil.New(1), Request{
		Hole: hole(t, "As Ad"), Community: poker.MustParseCards("As 2c 3c"), Iterations: 10,
	})
	require.ErrorIs(t, err, poker.ErrCardNotFound)

	_, err = est.Estimate(ctx, randutil.New(1), Request{
		Hole: hole(t, "As Ad"), Community: poker.MustParseCards("2c 3c 4c 5c 6c 7c"), Iterations: 10,
	})
	require.ErrorIs(t, err, ErrTooManyCommunity)

	_, err = est.Estimate(ctx, randutil.New(1), Request{
		Hole: hole(t, "As Ad"), Iterations: 10, Mode: ModeRangeWeighted,
	})
	require.ErrorIs(t, err, ErrNoRangeWeights)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = est.Estimate(cancelled, randutil.New(1), Request{Hole: hole(t, "As Ad"), Iterations: 10})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEstimateDeckExhausted(t *testing.T) {
	t.Parallel()
	var dead []poker.Card
	h := hole(t, "As Ad")
	for _, c := range poker.NewDeck(randutil.New(1)).Cards() {
		if !h.Hand().HasCard(c) {
			dead = append(dead, c)
		}
	}
	dead = dead[:len(dead)-3] // three unseen cards left, seven needed

	_, err := (&Estimator{}).Estimate(context.Background(), randutil.New(1), Request{
		Hole: h, Dead: dead, Iterations: 5,
	})
	require.ErrorIs(t, err, poker.ErrDeckExhausted)
}

func TestEstimateRiverUsesCache(t *testing.T) {
	t.Parallel()
	cache := poker.NewEvalCache()
	res, err := (&Estimator{}).Estimate(context.Background(), randutil.New(5), Request{
		Hole:       hole(t, "Ah Kh"),
		Community:  poker.MustParseCards("Qh 7c 2d 9s 3h"),
		Iterations: 200,
		Cache:      cache,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(200), res.Samples)

	hits, _ := cache.Stats()
	assert.GreaterOrEqual(t, hits, uint64(199), "hero's river hand is the same every iteration")
}

func TestEstimateRangeWeighted(t *testing.T) {
	t.Parallel()
	weights := flatWeights(t, 0.5)
	ctx := context.Background()

	t.Run("flat table behaves like uniform", func(t *testing.T) {
		est := &Estimator{Weights: weights, Workers: 2}
		res, err := est.Estimate(ctx, randutil.New(9), Request{
			Hole: hole(t, "As Ad"), Iterations: 3000, Mode: ModeRangeWeighted,
		})
		require.NoError(t, err)
		assert.Greater(t, res.Equity(), 0.80)
	})

	t.Run("range filter restricts opponents", func(t *testing.T) {
		aces, err := ParseRange("AA")
		require.NoError(t, err)
		est := &Estimator{Weights: weights, Range: aces}
		res, err := est.Estimate(ctx, randutil.New(9), Request{
			Hole: hole(t, "Kh Kd"), Iterations: 2000, Mode: ModeRangeWeighted,
		})
		require.NoError(t, err)
		assert.Less(t, res.Equity(), 0.30, "kings are well behind aces")
	})

	t.Run("no eligible opponent holes", func(t *testing.T) {
		aces, err := ParseRange("AA")
		require.NoError(t, err)
		est := &Estimator{Weights: weights, Range: aces}
		_, err = est.Estimate(ctx, randutil.New(9), Request{
			Hole:       hole(t, "As Ah"),
			Dead:       poker.MustParseCards("Ad"),
			Iterations: 10,
			Mode:       ModeRangeWeighted,
		})
		require.ErrorIs(t, err, ErrNoOpponentSamples)
	})
}

func acesOnlyWeights(t *testing.T) *RangeWeights {
	t.Helper()
	aces, err := poker.ParseStartingHand("AA")
	require.NoError(t, err)
	w, err := LoadRangeWeights(strings.NewReader(tableCSV(func(sh poker.StartingHand) float64 {
		if sh == aces {
			return 1
		}
		return 0
	})))
	require.NoError(t, err)
	return w
}

func TestEstimateSkewedTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kings := hole(t, "Kh Kd")

	uniform, err := (&Estimator{}).Estimate(ctx, randutil.New(4), Request{
		Hole: kings, Iterations: 2000,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		boost float64
		below float64
	}{
		{"aces only", 0, 0.30},
		{"aces favoured", 0.01, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &Estimator{Weights: acesOnlyWeights(t), Boost: &tt.boost}
			res, err := est.Estimate(ctx, randutil.New(4), Request{
				Hole: kings, Iterations: 2000, Mode: ModeRangeWeighted,
			})
			require.NoError(t, err)
			assert.Less(t, res.Equity(), tt.below)
			assert.Less(t, res.Equity(), uniform.Equity()-0.05)
		})
	}
}

func TestOpponentDistributionWeights(t *testing.T) {
	t.Parallel()
	boost := 0.1
	est := &Estimator{Weights: acesOnlyWeights(t), Boost: &boost}
	unseen := poker.MustParseCards("As Ad Kh 7c")

	d, err := est.opponentDistribution(unseen)
	require.NoError(t, err)
	require.Len(t, d.holes, 6)

	prev := 0.0
	for i, h := range d.holes {
		step := d.cumulative[i] - prev
		prev = d.cumulative[i]
		want := boost
		if h[0].Rank() == poker.Ace && h[1].Rank() == poker.Ace {
			want = 1
		}
		assert.InDelta(t, want, step, 1e-9, "%s", h)
	}
	assert.InDelta(t, 1+5*boost, prev, 1e-9)

	est.Boost = nil
	d, err = est.opponentDistribution(unseen)
	require.NoError(t, err)
	assert.InDelta(t, 1+5*DefaultWeightBoost, d.cumulative[len(d.cumulative)-1], 1e-9)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("weighted")
	require.NoError(t, err)
	assert.Equal(t, ModeRangeWeighted, m)
	assert.Equal(t, "uniform", ModeUniform.String())
	_, err = ParseMode("bogus")
	require.Error(t, err)
}
