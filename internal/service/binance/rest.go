package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
)

// RESTSource polls the 24h ticker endpoint once per Snapshot call.
type RESTSource struct {
	client *apphttp.Client
	url    string
	quote  string
	now    func() time.Time
}

func NewRESTSource(client *apphttp.Client, url, quoteAsset string) *RESTSource {
	return &RESTSource{client: client, url: url, quote: quoteAsset, now: time.Now}
}

var _ drepo.MarketSource = (*RESTSource)(nil)

func (s *RESTSource) Name() string { return "binance_rest" }

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

func (s *RESTSource) Snapshot(ctx context.Context, symbols []string) (models.Batch, error) {
	idx := pairIndex(symbols, s.quote)
	pairs := make([]string, 0, len(idx))
	for pair := range idx {
		pairs = append(pairs, pair)
	}
	q, err := json.Marshal(pairs)
	if err != nil {
		return models.Batch{}, err
	}

	var rows []ticker24h
	err = s.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         s.url,
		QueryParams: map[string][]string{"symbols": {string(q)}},
	}, &rows)
	if err != nil {
		return models.Batch{}, fmt.Errorf("binance 24h ticker: %w", err)
	}

	bySym := make(map[string]models.InstrumentSnapshot, len(rows))
	for _, r := range rows {
		sym, ok := idx[r.Symbol]
		if !ok {
			continue
		}
		bySym[sym] = models.InstrumentSnapshot{
			Symbol:       sym,
			Price:        parseFloat(r.LastPrice),
			PctChange24h: parseFloat(r.PriceChangePercent),
			Volume:       parseFloat(r.QuoteVolume),
		}
	}
	batch := models.Batch{At: s.now(), Snapshots: make([]models.InstrumentSnapshot, 0, len(symbols))}
	for _, sym := range symbols {
		snap, ok := bySym[sym]
		if !ok {
			snap = models.InstrumentSnapshot{Symbol: sym}
		}
		batch.Snapshots = append(batch.Snapshots, snap)
	}
	return batch, nil
}
