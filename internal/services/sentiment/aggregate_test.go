package sentiment

import (
	"fmt"
	"testing"
	"time"

	"Sentinel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRecencyWeight(t *testing.T) {
	w := 24 * time.Hour
	assert.Equal(t, 1.0, RecencyWeight(now, now, w))
	assert.Equal(t, 0.0, RecencyWeight(now.Add(-w), now, w), "boundary contributes zero")
	assert.InDelta(t, 0.5, RecencyWeight(now.Add(-12*time.Hour), now, w), 1e-12)
	assert.Equal(t, 0.0, RecencyWeight(now.Add(-30*time.Hour), now, w))
	assert.Equal(t, 1.0, RecencyWeight(now.Add(time.Hour), now, w), "future counts as fresh")
	assert.Equal(t, 0.0, RecencyWeight(time.Time{}, now, w))
}

func TestPolarity(t *testing.T) {
	cases := []struct {
		title, translated string
		want              int
	}{
		{"Bitcoin ETF approved as price surges", "", 2},
		{"Exchange hacked, liquidations spike", "", -2},
		{"Bitcoin trades sideways", "", 0},
		{"比特幣ETF獲批准 價格大漲", "", 2},
		{"Bitcoin trades sideways", "比特幣暴跌", -1},
		{"SEC delays decision, ETH rallies", "", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Polarity(tc.title, tc.translated), tc.title)
	}
}

func TestRescale(t *testing.T) {
	assert.Equal(t, 50, Rescale(0, 10))
	assert.Equal(t, 100, Rescale(25, 10))
	assert.Equal(t, 0, Rescale(-25, 10))
	assert.Equal(t, 60, Rescale(2, 10))
	assert.Equal(t, 58, Rescale(1.5, 10))
	assert.Equal(t, 43, Rescale(-1.5, 10))
}

func TestAggregateScoresAndRetains(t *testing.T) {
	hs := []models.Headline{
		{Title: "Bitcoin ETF approved as price surges", Link: "a", PublishedAt: now},
		{Title: "Bitcoin ETF approved as price surges", Link: "a", PublishedAt: now},
		{Title: "Exchange hacked", Link: "b", PublishedAt: now.Add(-12 * time.Hour)},
		{Title: "Old rally", Link: "c", PublishedAt: now.Add(-24 * time.Hour)},
		{Title: "Bitcoin trades sideways", Link: "d", PublishedAt: now},
	}
	score, raw, items := Aggregate(hs, now, DefaultParams())

	// +2*1 for a (deduplicated), -1*0.5 for b, c is at the boundary.
	assert.InDelta(t, 1.5, raw, 1e-12)
	assert.Equal(t, 58, score)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Link)
	assert.Equal(t, "b", items[1].Link)
	assert.Equal(t, "d", items[2].Link)
}

func TestAggregateClampsAndCaps(t *testing.T) {
	var hs []models.Headline
	for i := 0; i < 30; i++ {
		hs = append(hs, models.Headline{
			Title:       "Bitcoin surges to record high",
			Link:        fmt.Sprintf("l%d", i),
			PublishedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	score, raw, items := Aggregate(hs, now, DefaultParams())
	assert.Equal(t, 100, score)
	assert.Equal(t, 10.0, raw)
	assert.Len(t, items, 20)
	assert.Equal(t, "l0", items[0].Link, "freshest has the highest impact")
}

func TestAggregateSourceWeightScalesPolarity(t *testing.T) {
	hs := []models.Headline{{Title: "Bitcoin rallies", Link: "x", PublishedAt: now, SourceWeight: 0.5}}
	_, raw, items := Aggregate(hs, now, DefaultParams())
	assert.InDelta(t, 0.5, raw, 1e-12)
	assert.InDelta(t, 0.5, items[0].Raw, 1e-12)
}

func TestAggregateNeutralIsMidpoint(t *testing.T) {
	score, _, _ := Aggregate([]models.Headline{{Title: "Markets open", Link: "m", PublishedAt: now}}, now, DefaultParams())
	assert.Equal(t, 50, score)
}
