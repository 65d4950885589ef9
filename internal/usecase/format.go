package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/services/scoring"
	"Sentinel/pkg/util"
)

func formatTrend(ranked []scoring.Ranked, prefs models.Prefs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Crypto trend · top %d", len(ranked))
	for i, r := range ranked {
		icon, note := models.PhaseIdle.Icon(), models.PhaseIdle.Note()
		if r.Trend != nil {
			icon, note = r.Trend.Icon, r.Trend.Note
			if r.Trend.Insufficient {
				note = "insufficient data"
			}
		}
		fmt.Fprintf(&b, "\n%d. %s %s %.0f %s · %s", i+1, icon, r.Symbol, r.Composite, changeMark(r.PctChange24h, prefs.Scheme), note)
	}
	if len(ranked) == 0 {
		b.WriteString("\n(no symbols)")
	}
	return b.String()
}

func formatSide(title string, ranked []scoring.Ranked, prefs models.Prefs) string {
	var b strings.Builder
	b.WriteString(title)
	for i, r := range ranked {
		fmt.Fprintf(&b, "\n%d. %s %.0f %s", i+1, r.Symbol, r.Composite, changeMark(r.PctChange24h, prefs.Scheme))
		if r.Trend != nil {
			b.WriteString(" " + r.Trend.Icon)
		}
		if r.ShortBias {
			b.WriteString(" ⚠️ short bias")
		}
		if prefs.ShowPrice && r.Price > 0 {
			b.WriteString(" ($" + formatPrice(r.Price) + ")")
		}
	}
	if len(ranked) == 0 {
		b.WriteString("\n(no symbols)")
	}
	return b.String()
}

func formatEquity(ranked []scoring.Ranked, riskOn int, prefs models.Prefs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Equities · Risk-On: %d", riskOn)
	for i, r := range ranked {
		fmt.Fprintf(&b, "\n%d. %s %s", i+1, r.Symbol, changeMark(r.PctChange24h, prefs.Scheme))
		if prefs.ShowPrice && r.Price > 0 {
			b.WriteString(" ($" + formatPrice(r.Price) + ")")
		}
	}
	return b.String()
}

func formatNews(symbol string, score int, items []models.ScoredHeadline, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗞️ %s news · score %d", symbol, score)
	for _, h := range items {
		fmt.Fprintf(&b, "\n- %s 〔%s〕", headlineTitle(h), util.TimeAgo(h.PublishedAt, now))
	}
	return b.String()
}

// formatTopicNews groups headlines under their topic.
func formatTopicNews(title string, groups []topicHeadlines, now time.Time) string {
	if len(groups) == 0 {
		return title + ": no recent headlines"
	}
	var b strings.Builder
	b.WriteString(title)
	for _, g := range groups {
		b.WriteString("\n• " + g.topic)
		for _, h := range g.items {
			fmt.Fprintf(&b, "\n  - %s 〔%s〕", headlineTitle(h), util.TimeAgo(h.PublishedAt, now))
		}
	}
	return b.String()
}

func formatNewsList(title string, items []models.ScoredHeadline, now time.Time) string {
	if len(items) == 0 {
		return title + ": no recent headlines"
	}
	var b strings.Builder
	b.WriteString(title)
	for i, h := range items {
		fmt.Fprintf(&b, "\n%d. %s 〔%s〕", i+1, headlineTitle(h), util.TimeAgo(h.PublishedAt, now))
	}
	return b.String()
}

// headlineTitle prefers the translated title.
func headlineTitle(h models.ScoredHeadline) string {
	if h.TitleTranslated != "" {
		return h.TitleTranslated
	}
	return h.Title
}

// changeMark colours a percentage move by scheme.
func changeMark(pct float64, scheme models.Scheme) string {
	mark := scheme.UpMark()
	if pct < 0 {
		mark = scheme.DownMark()
	}
	return fmt.Sprintf("%s%+.2f%%", mark, pct)
}

// formatPrice groups thousands and keeps precision for sub-dollar prices.
func formatPrice(p float64) string {
	if p < 1 {
		return strconv.FormatFloat(p, 'f', 4, 64)
	}
	whole := int64(math.Round(p))
	s := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
