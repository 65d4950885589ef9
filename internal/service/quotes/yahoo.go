package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
)

// YahooSource reads equity quotes for the watchlist in one request.
type YahooSource struct {
	client *apphttp.Client
	url    string
	now    func() time.Time
}

func NewYahooSource(client *apphttp.Client, url string) *YahooSource {
	return &YahooSource{client: client, url: url, now: time.Now}
}

var _ drepo.MarketSource = (*YahooSource)(nil)

func (s *YahooSource) Name() string { return "yahoo" }

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        float64 `json:"regularMarketVolume"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

// Snapshot returns one entry per requested symbol, zero-filled when absent upstream.
func (s *YahooSource) Snapshot(ctx context.Context, symbols []string) (models.Batch, error) {
	if len(symbols) == 0 {
		return models.Batch{At: s.now()}, nil
	}
	var resp quoteResponse
	err := s.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         s.url,
		QueryParams: map[string][]string{"symbols": {strings.Join(symbols, ",")}},
	}, &resp)
	if err != nil {
		return models.Batch{}, fmt.Errorf("yahoo quote: %w", err)
	}
	if resp.QuoteResponse.Error != nil {
		return models.Batch{}, fmt.Errorf("yahoo quote: %v", resp.QuoteResponse.Error)
	}

	bySym := make(map[string]models.InstrumentSnapshot, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		sym := strings.ToUpper(r.Symbol)
		bySym[sym] = models.InstrumentSnapshot{
			Symbol:       sym,
			Price:        r.RegularMarketPrice,
			PctChange24h: r.RegularMarketChangePercent,
			Volume:       r.RegularMarketVolume,
		}
	}
	batch := models.Batch{At: s.now(), Snapshots: make([]models.InstrumentSnapshot, 0, len(symbols))}
	for _, sym := range symbols {
		snap, ok := bySym[strings.ToUpper(sym)]
		if !ok {
			snap = models.InstrumentSnapshot{Symbol: strings.ToUpper(sym)}
		}
		batch.Snapshots = append(batch.Snapshots, snap)
	}
	return batch, nil
}
