package api

import (
	"net/http"
	"time"

	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/util"

	"github.com/labstack/echo/v4"
)

// TriggerReport composes and pushes a digest on demand.
func (h *Handler) TriggerReport(c echo.Context) error {
	req := &triggerRequest{Phase: c.QueryParam("phase")}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	text, err := h.Jobs.TriggerDigest(c.Request().Context(), req.Phase)
	if err != nil {
		h.Log.Error("admin.trigger push failed", applogger.String("phase", req.Phase), applogger.Error(err))
		return apphttp.DataResponse(c, http.StatusBadGateway, map[string]interface{}{
			"phase": req.Phase, "pushed": false, "text": text, "error": err.Error(),
		})
	}
	return apphttp.SuccessResponse(c, map[string]interface{}{"phase": req.Phase, "pushed": true, "text": text})
}

// Warm loads state and refreshes the badges.
func (h *Handler) Warm(c echo.Context) error {
	badges, err := h.Reporter.RefreshBadges(c.Request().Context())
	if err != nil {
		h.Log.Warn("admin.warm badges not stored", applogger.Error(err))
	}
	return apphttp.SuccessResponse(c, map[string]interface{}{"warmed": true, "badges": badges})
}

func (h *Handler) NewsScore(c echo.Context) error {
	req := &newsScoreRequest{}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	sym := util.NormalizeSymbol(req.Symbol)
	if !util.ValidSymbol(sym) {
		return apphttp.AppErrorResponse(c, apphttp.BadRequestErrorf("invalid symbol %q", req.Symbol))
	}
	e, err := h.Sentiment.Score(c.Request().Context(), sym)
	if err != nil {
		h.Log.Error("admin.news-score failed", applogger.String("symbol", sym), applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	return apphttp.SuccessResponse(c, map[string]interface{}{
		"symbol":     sym,
		"news_score": e.Score,
		"no_data":    e.NoData,
		"items":      len(e.Items),
	})
}

// Env reports which outbound channels are configured, without secrets.
func (h *Handler) Env(c echo.Context) error {
	prefs, err := h.Prefs.Get(c.Request().Context())
	if err != nil {
		h.Log.Error("admin.env prefs failed", applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	return apphttp.SuccessResponse(c, map[string]interface{}{
		"has_line_token":  h.HasLineToken,
		"has_push_target": h.HasPushTarget,
		"prefs":           prefs,
	})
}

func (h *Handler) ListJobs(c echo.Context) error {
	st := h.Scheduler.Statuses()
	return apphttp.ListResponse(c, st, len(st))
}

// RunJob triggers a registered job now and waits for it.
func (h *Handler) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.Scheduler.Trigger(name); err != nil {
		return apphttp.AppErrorResponse(c, apphttp.BadRequestErrorf("job %s: %v", name, err))
	}
	return apphttp.SuccessResponse(c, map[string]string{"job": name, "status": "done"})
}

// Health is unauthenticated and always 200; degraded parts are reported in the body.
func (h *Handler) Health(c echo.Context) error {
	out := map[string]interface{}{
		"ok": true,
		"ts": time.Now().Unix(),
	}
	if h.Stream != nil {
		out["stream_connected"] = h.Stream.IsConnected()
	}
	if h.Reporter != nil {
		out["badges_age_s"] = int64(h.Reporter.BadgesAge(c.Request().Context()) / time.Second)
	}
	return apphttp.SuccessResponse(c, out)
}
