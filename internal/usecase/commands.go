package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/service/cache"
	"Sentinel/pkg/util"
)

const HelpText = "Commands: <SYM> long|short · +<SYM> · -<SYM> · watches · news <SYM> · strong · weak · equity · " +
	"morning|noon|evening|night · color tw|us · price on|off · crypto on|off · equity on|off · status"

var (
	watchCmd  = regexp.MustCompile(`^([a-z0-9_.\-]+)(?:\s+(long|short)|\s*(做多|做空))$`)
	extendCmd = regexp.MustCompile(`^\+\s*([a-z0-9_.\-]+)$`)
	stopCmd   = regexp.MustCompile(`^(?:-\s*|stop\s+|停止\s*)([a-z0-9_.\-]+)$`)
	newsCmd   = regexp.MustCompile(`^(?:news|新聞)\s*([a-z0-9_.\-]+)$`)
	toggleCmd = regexp.MustCompile(`^(price|crypto|equity|顯示價格|虛擬貨幣|美股)\s*(on|off|開啟|關閉)$`)
	colorCmd  = regexp.MustCompile(`^(?:color|顏色)\s*(tw|us|台股|美股)$`)
)

var phaseAliases = map[string]string{
	"morning": "morning", "早報": "morning",
	"noon": "noon", "午報": "noon",
	"evening": "evening", "晚報": "evening",
	"night": "night", "夜報": "night",
}

var summaryAliases = map[string]bool{"watches": true, "總覽": true, "監控": true, "監控列表": true, "監控清單": true}

// DigestTrigger pushes a digest outside its schedule.
type DigestTrigger interface {
	TriggerDigest(ctx context.Context, phase string) (string, error)
}

// Commands turns inbound text into replies.
type Commands struct {
	watches  *WatchManager
	reporter *Reporter
	prefs    *PrefsService
	digests  DigestTrigger
	loc      *time.Location
}

func NewCommands(watches *WatchManager, reporter *Reporter, prefs *PrefsService, digests DigestTrigger, loc *time.Location) *Commands {
	if loc == nil {
		loc = time.UTC
	}
	return &Commands{watches: watches, reporter: reporter, prefs: prefs, digests: digests, loc: loc}
}

// Execute always produces a reply; failures are rendered as text.
func (c *Commands) Execute(ctx context.Context, text string) string {
	t := strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(t)

	switch {
	case t == "":
		return HelpText
	case summaryAliases[lower]:
		s, err := c.watches.Summarize(ctx)
		if err != nil {
			return "watch summary unavailable: " + err.Error()
		}
		return s
	case lower == "status" || t == "狀態" || t == "模組狀態":
		return c.status(ctx)
	case lower == "strong" || t == "今日強勢":
		return c.side(ctx, true)
	case lower == "weak" || t == "今日弱勢":
		return c.side(ctx, false)
	case lower == "equity" || t == "美股":
		return c.equity(ctx)
	}
	if phase, ok := phaseAliases[lower]; ok {
		return c.digest(ctx, phase)
	}
	if m := watchCmd.FindStringSubmatch(lower); m != nil {
		side := models.SideLong
		if m[2] == "short" || m[3] == "做空" {
			side = models.SideShort
		}
		return c.watch(ctx, m[1], side)
	}
	if m := extendCmd.FindStringSubmatch(lower); m != nil {
		res, err := c.watches.Extend(ctx, m[1])
		if err != nil {
			return errorReply(err)
		}
		return c.watchReply(res)
	}
	if m := stopCmd.FindStringSubmatch(lower); m != nil {
		sym := util.NormalizeSymbol(m[1])
		out, err := c.watches.Stop(ctx, sym)
		if err != nil {
			return errorReply(err)
		}
		if out == models.StopNothingToStop {
			return fmt.Sprintf("%s: nothing to stop", sym)
		}
		return fmt.Sprintf("%s watch stopped", sym)
	}
	if m := newsCmd.FindStringSubmatch(lower); m != nil {
		s, err := c.reporter.News(ctx, m[1], 5)
		if err != nil {
			return errorReply(err)
		}
		return s
	}
	if m := toggleCmd.FindStringSubmatch(lower); m != nil {
		return c.toggle(ctx, m[1], m[2] == "on" || m[2] == "開啟")
	}
	if m := colorCmd.FindStringSubmatch(lower); m != nil {
		scheme := models.SchemeTW
		if m[1] == "us" || m[1] == "美股" {
			scheme = models.SchemeUS
		}
		if _, err := c.prefs.SetScheme(ctx, scheme); err != nil {
			return errorReply(err)
		}
		return fmt.Sprintf("colour scheme set to %s (up %s / down %s)", scheme, scheme.UpMark(), scheme.DownMark())
	}
	return HelpText
}

// digest pushes the phase digest to the push target; the reply only acknowledges it.
func (c *Commands) digest(ctx context.Context, phase string) string {
	if _, err := c.digests.TriggerDigest(ctx, phase); err != nil {
		return fmt.Sprintf("%s digest push failed: %v", phase, err)
	}
	return fmt.Sprintf("🪄 %s digest pushed", phase)
}

func (c *Commands) watch(ctx context.Context, symbol string, side models.Side) string {
	res, err := c.watches.Watch(ctx, symbol, side)
	if err != nil {
		return errorReply(err)
	}
	return c.watchReply(res)
}

func (c *Commands) watchReply(res models.WatchResult) string {
	until := util.ClockInZone(res.Task.Until, c.loc)
	if res.Extended {
		return fmt.Sprintf("%s watch extended until %s", res.Task.Symbol, until)
	}
	return fmt.Sprintf("%s set to %s, watching until %s", res.Task.Symbol, res.Task.Side, until)
}

func (c *Commands) side(ctx context.Context, strong bool) string {
	prefs, err := c.prefs.Get(ctx)
	if err != nil {
		return errorReply(err)
	}
	if !prefs.EnableCrypto {
		return "crypto module is off; send 'crypto on' to enable it"
	}
	rep, err := c.reporter.SideReport(ctx, prefs, strong)
	if err != nil {
		name := "weak list"
		if strong {
			name = "strong list"
		}
		if errors.Is(err, cache.ErrNoFallback) {
			return name + " generation failed: no cached data available (upstream may be rate limiting, try later)"
		}
		return fmt.Sprintf("%s generation failed: %v", name, err)
	}
	return rep.Annotated()
}

func (c *Commands) equity(ctx context.Context) string {
	prefs, err := c.prefs.Get(ctx)
	if err != nil {
		return errorReply(err)
	}
	if !prefs.EnableEquity {
		return "equity module is off; send 'equity on' to enable it"
	}
	text, err := c.reporter.EquityDetail(ctx, prefs)
	if err != nil {
		if errors.Is(err, cache.ErrNoFallback) {
			return "equity list generation failed: no cached data available (upstream may be rate limiting, try later)"
		}
		return fmt.Sprintf("equity list generation failed: %v", err)
	}
	return text
}

func (c *Commands) toggle(ctx context.Context, what string, on bool) string {
	var err error
	var label string
	switch what {
	case "price", "顯示價格":
		label = "price display"
		_, err = c.prefs.SetShowPrice(ctx, on)
	case "crypto", "虛擬貨幣":
		label = "crypto module"
		_, err = c.prefs.SetModule(ctx, ModuleCrypto, on)
	default:
		label = "equity module"
		_, err = c.prefs.SetModule(ctx, ModuleEquity, on)
	}
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("%s %s", label, onOff(on))
}

func (c *Commands) status(ctx context.Context) string {
	prefs, err := c.prefs.Get(ctx)
	if err != nil {
		return errorReply(err)
	}
	badges := c.reporter.Badges(ctx)
	badgeLine := "none"
	if len(badges) > 0 {
		badgeLine = strings.Join(badges, " ")
	}
	return fmt.Sprintf("crypto: %s\nequity: %s\nprice display: %s\ncolour scheme: %s\nbadges: %s",
		onOff(prefs.EnableCrypto), onOff(prefs.EnableEquity), onOff(prefs.ShowPrice), prefs.Scheme, badgeLine)
}

func errorReply(err error) string {
	if errors.Is(err, ErrInvalidSymbol) {
		return "invalid symbol; " + HelpText
	}
	return "request failed: " + err.Error()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
