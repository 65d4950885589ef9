package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "Sentinel/pkg/http"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>BTC</title>
<item><title>Bitcoin ETF inflows surge - Reuters</title><link>https://example.com/a</link>
<pubDate>Mon, 04 May 2026 09:00:00 GMT</pubDate></item>
<item><title>Exchange hack drains wallets - Some Blog</title><link>https://example.com/b</link>
<pubDate>Mon, 04 May 2026 08:00:00 GMT</pubDate></item>
<item><title>Old news - Bloomberg</title><link>https://example.com/c</link>
<pubDate>Fri, 01 May 2026 08:00:00 GMT</pubDate></item>
<item><title>Undated item</title><link>https://example.com/d</link></item>
</channel></rss>`

func TestRSSHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTC when:24h", r.URL.Query().Get("q"))
		assert.Equal(t, "US:en", r.URL.Query().Get("ceid"))
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	src := NewRSSSource(apphttp.NewClient(), srv.URL, "en-US", "US", map[string]float64{"some blog": 0.2})
	src.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }

	hs, err := src.Headlines(context.Background(), "BTC", 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, hs, 2)

	assert.Equal(t, "Bitcoin ETF inflows surge", hs[0].Title)
	assert.Equal(t, "Reuters", hs[0].Source)
	assert.Equal(t, 1.0, hs[0].SourceWeight)
	assert.Equal(t, time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC), hs[0].PublishedAt)

	assert.Equal(t, "Some Blog", hs[1].Source)
	assert.Equal(t, 0.2, hs[1].SourceWeight)
}

func TestRSSUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRSSSource(apphttp.NewClient(), srv.URL, "en-US", "US", nil).Headlines(context.Background(), "ETH", 24*time.Hour)
	require.Error(t, err)
}

func TestTrustDefaults(t *testing.T) {
	src := NewRSSSource(apphttp.NewClient(), "", "en-US", "US", nil)
	assert.Equal(t, 0.8, src.Trust("coindesk"))
	assert.Equal(t, UnknownTrust, src.Trust("Random"))
	assert.Equal(t, UnknownTrust, src.Trust(""))
}

func TestSplitSource(t *testing.T) {
	title, source := splitSource("SEC approves - spot - ETF - The Block")
	assert.Equal(t, "SEC approves - spot - ETF", title)
	assert.Equal(t, "The Block", source)

	title, source = splitSource("No outlet here")
	assert.Equal(t, "No outlet here", title)
	assert.Empty(t, source)
}
