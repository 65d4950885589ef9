package api

import (
	"errors"

	"Sentinel/internal/domain/models"
	"Sentinel/internal/service/cache"
	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Trend returns the crypto trend list, possibly served from cache.
func (h *Handler) Trend(c echo.Context) error {
	req := &trendRequest{}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	prefs, err := h.prefsFor(c, req.Scheme)
	if err != nil {
		h.Log.Error("prefs read failed", applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	rep, err := h.Reporter.TrendReport(c.Request().Context(), prefs)
	if err != nil {
		return h.reportError(c, "trend", err)
	}
	return apphttp.SuccessResponse(c, toReportResponse(rep))
}

// List returns the strong or weak list.
func (h *Handler) List(c echo.Context) error {
	req := &listRequest{}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	prefs, err := h.prefsFor(c, req.Scheme)
	if err != nil {
		h.Log.Error("prefs read failed", applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	rep, err := h.Reporter.SideReport(c.Request().Context(), prefs, req.Side == "strong")
	if err != nil {
		return h.reportError(c, req.Side, err)
	}
	return apphttp.SuccessResponse(c, toReportResponse(rep))
}

func (h *Handler) ListWatches(c echo.Context) error {
	sum, err := h.Watches.Snapshot(c.Request().Context())
	if err != nil {
		h.Log.Error("watches snapshot failed", applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	tasks := sum.Tasks
	if tasks == nil {
		tasks = []models.WatchTask{}
	}
	return apphttp.SuccessResponse(c, watchesResponse{Summary: h.Watches.FormatSummary(sum), Tasks: tasks})
}

func (h *Handler) News(c echo.Context) error {
	req := &newsRequest{}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	text, err := h.Reporter.News(c.Request().Context(), req.Symbol, req.K)
	if err != nil {
		return apphttp.AppErrorResponse(c, apphttp.BadRequestError("invalid symbol").WithError(err))
	}
	return apphttp.SuccessResponse(c, map[string]string{"text": text})
}

// prefsFor returns the stored prefs with an optional scheme override.
func (h *Handler) prefsFor(c echo.Context, scheme string) (models.Prefs, error) {
	prefs, err := h.Prefs.Get(c.Request().Context())
	if err != nil {
		return prefs, err
	}
	if scheme != "" {
		prefs.Scheme = models.Scheme(scheme)
	}
	return prefs, nil
}

func (h *Handler) reportError(c echo.Context, kind string, err error) error {
	h.Log.Warn("report unavailable", applogger.String("kind", kind), applogger.Error(err))
	if errors.Is(err, cache.ErrNoFallback) {
		return apphttp.AppErrorResponse(c, apphttp.UnavailableError(kind+" generation failed: no cached data available"))
	}
	return apphttp.AppErrorResponse(c, apphttp.InternalError(kind+" generation failed").WithError(err))
}
