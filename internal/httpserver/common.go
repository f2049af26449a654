package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/restaurant/pkg/middleware/logging"
)

// Common is the stack every route sits behind.
func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomw.Recover(),
		loggingmw.RequestLogger(logger),
		echomw.Secure(),
		echomw.CORS(),
	}
}
