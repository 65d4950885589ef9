package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
