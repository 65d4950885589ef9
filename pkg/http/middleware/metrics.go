package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestObserver receives one observation per finished request.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, d time.Duration)
}

// Metrics records request latency and status using the matched route template
// so label cardinality stays bounded.
func Metrics(obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveRequest(route, c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
