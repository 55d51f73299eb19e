package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/session"
)

// AdminOnly re-reads the user record on every request instead of trusting the
// admin flag cached in the session, so a demoted or deleted account loses
// access immediately.
func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		st, ok := session.Current(c)
		if !ok {
			session.AddFlash(c, "warning", "Для доступа необходимо войти в систему")
			return c.Redirect(http.StatusFound, "/login")
		}

		user, err := g.Users.FindByID(c.Request().Context(), st.UserID)
		if err != nil || !user.IsAdmin {
			session.AddFlash(c, "danger", "Требуются права администратора")
			return c.Redirect(http.StatusFound, "/")
		}
		return next(c)
	}
}
