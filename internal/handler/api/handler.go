package api

import (
	"context"
	"crypto/subtle"

	domsvc "Sentinel/internal/domain/service"
	"Sentinel/internal/service/ratelimit"
	"Sentinel/internal/usecase"
	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/scheduler"

	"github.com/labstack/echo/v4"
)

// Replier answers a LINE webhook event by its reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// RateLimitObserver counts rejected requests.
type RateLimitObserver interface {
	RateLimited(route string)
}

// Deps wires the handler. Replier and Stream may be nil.
type Deps struct {
	Commands  *usecase.Commands
	Reporter  *usecase.Reporter
	Watches   *usecase.WatchManager
	Prefs     *usecase.PrefsService
	Jobs      *usecase.Jobs
	Scheduler *scheduler.Scheduler
	Sentiment domsvc.SentimentProvider
	Replier   Replier
	Stream    interface{ IsConnected() bool }
	Limiter   *ratelimit.Limiter
	Observer  RateLimitObserver

	AdminToken    string
	LineSecret    string
	HasLineToken  bool
	HasPushTarget bool

	Log *applogger.Logger
}

// Handler serves the chat webhook, the JSON API and the admin endpoints.
type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = applogger.Nop()
	}
	return &Handler{Deps: d}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/line/webhook", h.LineWebhook)

	g := e.Group("/api")
	g.POST("/command", h.Command, h.rateLimit("/api/command"))
	g.GET("/trend", h.Trend)
	g.GET("/lists/:side", h.List)
	g.GET("/watches", h.ListWatches)
	g.GET("/news", h.News)

	a := e.Group("/admin", h.adminOnly)
	a.GET("/trigger-report", h.TriggerReport, h.rateLimit("/admin/trigger-report"))
	a.POST("/trigger-report", h.TriggerReport, h.rateLimit("/admin/trigger-report"))
	a.GET("/warm", h.Warm)
	a.GET("/news-score", h.NewsScore)
	a.GET("/env", h.Env)
	a.GET("/jobs", h.ListJobs)
	a.POST("/jobs/:name/run", h.RunJob)
}

// rateLimit rejects callers that exceed the token bucket of their route and address.
func (h *Handler) rateLimit(route string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if h.Limiter != nil && !h.Limiter.Allow(route+"|"+c.RealIP()) {
				if h.Observer != nil {
					h.Observer.RateLimited(route)
				}
				return apphttp.AppErrorResponse(c, apphttp.TooManyRequestsError("too many requests, slow down"))
			}
			return next(c)
		}
	}
}

// adminOnly requires the admin token as ?token= or X-Admin-Token.
// An unset admin token locks the group.
func (h *Handler) adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok := c.QueryParam("token")
		if tok == "" {
			tok = c.Request().Header.Get("X-Admin-Token")
		}
		if h.AdminToken == "" || subtle.ConstantTimeCompare([]byte(tok), []byte(h.AdminToken)) != 1 {
			return apphttp.AppErrorResponse(c, apphttp.UnauthorizedError("bad token"))
		}
		return next(c)
	}
}
