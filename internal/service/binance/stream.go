package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// Stream implements MarketStream over the all-market mini ticker websocket.
// Only pairs of the configured symbols against the quote asset are forwarded.
type Stream struct {
	websocketURL   string
	pairs          map[string]string // BTCUSDT -> BTC
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

func NewStream(websocketURL, quoteAsset string, symbols []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) *Stream {
	return &Stream{
		websocketURL:   websocketURL,
		pairs:          pairIndex(symbols, quoteAsset),
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

var _ drepo.MarketStream = (*Stream)(nil)

func (c *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("binance.stream connected", applogger.Int("pairs", len(c.pairs)))
	return nil
}

// Subscribe is a no-op: the array stream URL already carries every pair.
func (c *Stream) Subscribe(ctx context.Context) error {
	if !c.IsConnected() {
		return errors.New("binance not connected")
	}
	return nil
}

// miniTicker is one element of the !miniTicker@arr payload. Numbers arrive as strings.
type miniTicker struct {
	Event       string `json:"e"`
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Open        string `json:"o"`
	QuoteVolume string `json:"q"`
}

// Read emits one slice of snapshots per frame.
func (c *Stream) Read(ctx context.Context) (<-chan []models.InstrumentSnapshot, <-chan error) {
	out := make(chan []models.InstrumentSnapshot, 64)
	errs := make(chan error, 1)
	done := make(chan struct{})

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn == conn && conn != nil {
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
				c.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		if conn == nil {
			errs <- errors.New("binance conn nil")
			return
		}
		for {
			if ctx.Err() != nil {
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("binance read: %w", err)
				return
			}
			snaps := c.decode(b)
			if len(snaps) == 0 {
				continue
			}
			select {
			case out <- snaps:
			default:
				// drop on backpressure; the next frame supersedes it
			}
		}
	}()

	return out, errs
}

func (c *Stream) decode(b []byte) []models.InstrumentSnapshot {
	var frame []miniTicker
	if err := json.Unmarshal(b, &frame); err != nil {
		return nil
	}
	snaps := make([]models.InstrumentSnapshot, 0, len(c.pairs))
	for _, t := range frame {
		sym, ok := c.pairs[t.Symbol]
		if !ok {
			continue
		}
		open := parseFloat(t.Open)
		last := parseFloat(t.Close)
		pct := 0.0
		if open > 0 {
			pct = (last - open) / open * 100
		}
		snaps = append(snaps, models.InstrumentSnapshot{
			Symbol:       sym,
			Price:        last,
			PctChange24h: pct,
			Volume:       parseFloat(t.QuoteVolume),
		})
	}
	return snaps
}

// Reconnect closes, waits reconnectDelay and dials again.
func (c *Stream) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Stream) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Stream) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
