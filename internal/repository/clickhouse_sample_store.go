package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Sentinel/internal/domain/models"
	pkgch "Sentinel/pkg/clickhouse"
	applogger "Sentinel/pkg/logger"
)

// CHSampleStore keeps strength history in ClickHouse.
type CHSampleStore struct {
	db       *sql.DB
	database string
	table    string
	l        *applogger.Logger
}

func NewCHSampleStore(ch *pkgch.Client, l *applogger.Logger) *CHSampleStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSampleStore{db: ch.DB(), database: ch.Database(), table: ch.Database() + ".strength_samples", l: l}
}

// Schema returns the DDL for the samples table.
func (s *CHSampleStore) Schema() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ts DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            price Float64,
            volume Float64,
            strength Float64,
            has_strength UInt8
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, ts)
        TTL toDateTime(ts) + INTERVAL 30 DAY`, s.table),
	}
}

func (s *CHSampleStore) Append(ctx context.Context, symbol string, sample models.Sample) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, strength, has_strength) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	var has uint8
	if sample.HasStrength {
		has = 1
	}
	if _, err := s.db.ExecContext(ctx, q, sample.Ts.UTC(), symbol, sample.Price, sample.Volume, sample.Strength, has); err != nil {
		s.l.Error("clickhouse samples insert error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// Latest returns up to n samples, oldest first.
func (s *CHSampleStore) Latest(ctx context.Context, symbol string, n int) ([]models.Sample, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, price, volume, strength, has_strength
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse samples query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	out := make([]models.Sample, 0, n)
	for rows.Next() {
		var (
			sm  models.Sample
			has uint8
		)
		if err := rows.Scan(&sm.Ts, &sm.Price, &sm.Volume, &sm.Strength, &has); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sm.HasStrength = has == 1
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.l.Debug("clickhouse samples ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}
