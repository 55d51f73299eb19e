package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/session"
	"github.com/mkuznecov/warehouse/internal/service/users"
)

type Guard struct {
	Users *users.Service
}

func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := session.Current(c); !ok {
			session.AddFlash(c, "warning", "Для доступа необходимо войти в систему")
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}
