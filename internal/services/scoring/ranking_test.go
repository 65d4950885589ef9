package scoring

import (
	"testing"

	"Sentinel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlend(t *testing.T) {
	w := Weights{Strong: 0.7, News: 0.3}
	s := models.StrengthScore{Symbol: "BTC", Strength: 80}
	assert.InDelta(t, 0.7*80+0.3*50, Blend(s, 50, true, w), 1e-9)
	assert.InDelta(t, 80.0, Blend(s, 0, false, w), 1e-9)
}

func TestRankTopBottom(t *testing.T) {
	scores := []models.StrengthScore{
		{Symbol: "A", Strength: 90},
		{Symbol: "B", Strength: 20},
		{Symbol: "C", Strength: 60},
		{Symbol: "D", Strength: 60},
	}
	ranked := Rank(scores, nil, Weights{Strong: 1})
	require.Len(t, ranked, 4)
	assert.Equal(t, []string{"A", "C", "D", "B"}, symbols(ranked))

	top := Top(ranked, 2)
	assert.Equal(t, []string{"A", "C"}, symbols(top))

	bottom := Bottom(ranked, 2, 35)
	assert.Equal(t, []string{"B", "D"}, symbols(bottom))
	assert.True(t, bottom[0].ShortBias)
	assert.False(t, bottom[1].ShortBias)

	assert.Len(t, Top(ranked, 10), 4)
}

func symbols(rs []Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Symbol
	}
	return out
}
