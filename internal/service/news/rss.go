package news

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
)

// DefaultTrust weights well known outlets; anything else gets UnknownTrust.
var DefaultTrust = map[string]float64{
	"Bloomberg":       1.0,
	"Reuters":         1.0,
	"Financial Times": 0.9,
	"WSJ":             0.9,
	"CoinDesk":        0.8,
	"The Block":       0.7,
}

const UnknownTrust = 0.5

// RSSSource searches a Google News style RSS endpoint per symbol.
type RSSSource struct {
	client   *apphttp.Client
	url      string
	language string
	region   string
	trust    map[string]float64
	now      func() time.Time
}

// NewRSSSource merges overrides into DefaultTrust.
func NewRSSSource(client *apphttp.Client, url, language, region string, overrides map[string]float64) *RSSSource {
	trust := make(map[string]float64, len(DefaultTrust)+len(overrides))
	for k, v := range DefaultTrust {
		trust[strings.ToLower(k)] = v
	}
	for k, v := range overrides {
		trust[strings.ToLower(k)] = v
	}
	return &RSSSource{client: client, url: url, language: language, region: region, trust: trust, now: time.Now}
}

var _ drepo.NewsSource = (*RSSSource)(nil)

func (s *RSSSource) Name() string { return "rss" }

// Headlines returns dated items published within window, newest upstream order kept.
func (s *RSSSource) Headlines(ctx context.Context, symbol string, window time.Duration) ([]models.Headline, error) {
	hours := int(window.Hours())
	if hours < 1 {
		hours = 1
	}
	var body []byte
	err := s.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    s.url,
		QueryParams: map[string][]string{
			"q":    {fmt.Sprintf("%s when:%dh", symbol, hours)},
			"hl":   {s.language},
			"gl":   {s.region},
			"ceid": {s.region + ":" + langPrefix(s.language)},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("rss %s: %w", symbol, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rss %s parse: %w", symbol, err)
	}

	now := s.now()
	out := make([]models.Headline, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil || it.PublishedParsed == nil {
			continue
		}
		pub := it.PublishedParsed.UTC()
		if now.Sub(pub) > window {
			continue
		}
		title, source := splitSource(it.Title)
		out = append(out, models.Headline{
			Title:        title,
			Link:         it.Link,
			Source:       source,
			PublishedAt:  pub,
			SourceWeight: s.Trust(source),
		})
	}
	return out, nil
}

// Trust is the weight of a named outlet.
func (s *RSSSource) Trust(source string) float64 {
	if w, ok := s.trust[strings.ToLower(strings.TrimSpace(source))]; ok {
		return w
	}
	return UnknownTrust
}

// splitSource separates the trailing " - Outlet" that aggregated feeds append to titles.
func splitSource(title string) (string, string) {
	title = strings.TrimSpace(title)
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

func langPrefix(lang string) string {
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i]
	}
	return lang
}
