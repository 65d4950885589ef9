package scoring

import (
	"math"
	"testing"

	"Sentinel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyBatch(t *testing.T) {
	out := Normalize(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNormalizeIdenticalInputsHitMidpoint(t *testing.T) {
	batch := []models.InstrumentSnapshot{
		{Symbol: "BTC", PctChange24h: 2, Volume: 1000},
		{Symbol: "ETH", PctChange24h: 2, Volume: 1000},
		{Symbol: "SOL", PctChange24h: 2, Volume: 1000},
	}
	for _, s := range Normalize(batch) {
		assert.InDelta(t, 50.0, s.Strength, 1e-9, s.Symbol)
	}
}

func TestNormalizeBoundsAndOrdering(t *testing.T) {
	batch := []models.InstrumentSnapshot{
		{Symbol: "BTC", PctChange24h: 5, Volume: 1e9},
		{Symbol: "ETH", PctChange24h: -3, Volume: 1e6},
		{Symbol: "DOGE", PctChange24h: 12, Volume: 10},
		{Symbol: "BAD", PctChange24h: 0, Volume: -5},
	}
	out := Normalize(batch)
	require.Len(t, out, 4)
	for _, s := range out {
		assert.GreaterOrEqual(t, s.Strength, 0.0)
		assert.LessOrEqual(t, s.Strength, 100.0)
	}
	// DOGE has the top change but tiny volume: 60 + 40*log1p(10)/log1p(1e9).
	assert.InDelta(t, 60+40*math.Log1p(10)/math.Log1p(1e9), out[2].Strength, 1e-9)
	// BTC: change (5+3)/15, full volume.
	assert.InDelta(t, 100*(0.6*8.0/15.0+0.4), out[0].Strength, 1e-9)
	assert.Equal(t, "BTC", out[0].Symbol, "output keeps input order")

	again := Normalize(batch)
	assert.Equal(t, out, again, "deterministic for a fixed batch")
}

func TestNormalizeToleratesNonFinite(t *testing.T) {
	out := Normalize([]models.InstrumentSnapshot{
		{Symbol: "X", PctChange24h: math.NaN(), Volume: math.Inf(1)},
		{Symbol: "Y", PctChange24h: 1, Volume: 10},
	})
	require.Len(t, out, 2)
	for _, s := range out {
		assert.False(t, math.IsNaN(s.Strength))
		assert.GreaterOrEqual(t, s.Strength, 0.0)
		assert.LessOrEqual(t, s.Strength, 100.0)
	}
}

func TestVolumePercentiles(t *testing.T) {
	p := VolumePercentiles([]float64{10, 30, 20, 20})
	assert.Equal(t, []float64{0.25, 1, 0.75, 0.75}, p)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMax([]float64{1, 2, 3}))
	assert.Equal(t, []float64{0.5}, MinMax([]float64{7}))
}
