package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders the dedicated 404/500 error payloads. Everything
// recoverable is handled inside the handlers as flash+redirect, so only
// unmapped routes and uncaught faults land here.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		message := "внутренняя ошибка сервера"
		if code == http.StatusNotFound {
			message = "страница не найдена"
		}

		if code >= http.StatusInternalServerError {
			log.Error("unhandled server fault", "error", err, "path", c.Request().URL.Path)
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(code); err != nil {
				log.Error("error page render failed", "error", err)
			}
			return
		}
		if err := c.JSON(code, echo.Map{"code": code, "error": message}); err != nil {
			log.Error("error page render failed", "error", err)
		}
	}
}
