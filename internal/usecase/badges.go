package usecase

import (
	"context"
	"math"
	"regexp"
	"time"

	"Sentinel/internal/domain/models"
	applogger "Sentinel/pkg/logger"
)

const (
	riskOnHigh = 60
	riskOnLow  = 40
)

var (
	policyPositive = regexp.MustCompile(`(?i)approv|green light|eas(e|ing)|legaliz|核准|通過|批准|寬鬆|合法化`)
	policyNegative = regexp.MustCompile(`(?i)reject|delay|\bban\b|\bsue[sd]?\b|lawsuit|sanction|\bfine[sd]?\b|駁回|否決|延後|制裁|禁令|起訴|罰款`)
)

// RiskOn maps the mean equity move to 0..100 around 50; +1% average is 60.
func RiskOn(b models.Batch) int {
	if len(b.Snapshots) == 0 {
		return 50
	}
	sum := 0.0
	for _, s := range b.Snapshots {
		sum += s.PctChange24h
	}
	v := 50 + sum/float64(len(b.Snapshots))*10
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// Badges returns the last refreshed badges.
func (r *Reporter) Badges(ctx context.Context) []string {
	var out []string
	_ = r.Store.View(ctx, func(s *models.State) error {
		out = append(out, s.Badges...)
		return nil
	})
	return out
}

// RefreshBadges recomputes risk, policy and news-hot badges and stores them.
// A failing input only removes its own badge.
func (r *Reporter) RefreshBadges(ctx context.Context) ([]string, error) {
	var badges []string

	if r.Equity != nil && len(r.cfg.EquitySymbols) > 0 {
		if batch, err := r.equityBatch(ctx); err != nil {
			r.Log.Warn("badges.risk unavailable", applogger.Error(err))
		} else {
			switch v := RiskOn(batch); {
			case v >= riskOnHigh:
				badges = append(badges, "RISK-ON")
			case v <= riskOnLow:
				badges = append(badges, "RISK-OFF")
			}
		}
	}

	hot := false
	pos, neg := 0, 0
	for _, sym := range []string{"BTC", "ETH"} {
		e, err := r.Sentiment.Score(ctx, sym)
		if err != nil || e.NoData {
			continue
		}
		if e.Score >= r.cfg.HotScore {
			hot = true
		}
		for _, h := range e.Items {
			text := h.Title + " " + h.TitleTranslated
			if policyPositive.MatchString(text) {
				pos++
			}
			if policyNegative.MatchString(text) {
				neg++
			}
		}
	}
	switch {
	case pos > neg:
		badges = append(badges, "POLICY↑")
	case neg > pos:
		badges = append(badges, "POLICY↓")
	}
	if hot {
		badges = append(badges, "NEWS🔥")
	}
	if len(badges) > r.cfg.MaxBadges {
		badges = badges[:r.cfg.MaxBadges]
	}

	now := r.now()
	err := r.Store.Update(ctx, func(s *models.State) error {
		s.Badges = badges
		s.BadgesAt = now
		return nil
	})
	if err != nil {
		return badges, err
	}
	r.Log.Debug("badges.refreshed", applogger.Strings("badges", badges))
	return badges, nil
}

// BadgesAge is how long ago badges were refreshed; zero when never.
func (r *Reporter) BadgesAge(ctx context.Context) time.Duration {
	var at time.Time
	_ = r.Store.View(ctx, func(s *models.State) error {
		at = s.BadgesAt
		return nil
	})
	if at.IsZero() {
		return 0
	}
	return r.now().Sub(at)
}
