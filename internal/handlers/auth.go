package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/logging"
	"github.com/mkuznecov/warehouse/internal/mykafka"
	"github.com/mkuznecov/warehouse/internal/service/users"
	"github.com/mkuznecov/warehouse/internal/session"
)

type AuthHandler struct {
	Users    *users.Service
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Index(c echo.Context) error {
	payload := echo.Map{
		"app":     "warehouse",
		"flashes": session.Flashes(c),
	}
	if st, ok := session.Current(c); ok {
		payload["user"] = echo.Map{
			"id":       st.UserID,
			"username": st.Username,
			"is_admin": st.IsAdmin,
		}
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"flashes": session.Flashes(c)})
}

func (h *AuthHandler) Register(c echo.Context) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")

	if username == "" || email == "" || password == "" {
		session.AddFlash(c, "danger", "Все поля обязательны для заполнения")
		return c.Redirect(http.StatusFound, "/register")
	}

	user, err := h.Users.Register(c.Request().Context(), username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateUsername), errors.Is(err, users.ErrDuplicateEmail):
			session.AddFlash(c, "danger", err.Error())
			return c.Redirect(http.StatusFound, "/register")
		default:
			return err
		}
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	session.AddFlash(c, "success", "Регистрация успешна! Войдите в систему.")
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"flashes": session.Flashes(c)})
}

func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := h.Users.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			session.AddFlash(c, "danger", "Неверное имя пользователя или пароль")
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}

	if err := session.SetCurrent(c, session.State{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}); err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	session.AddFlash(c, "success", "Вход выполнен успешно!")
	return c.Redirect(http.StatusFound, "/search")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := session.Clear(c); err != nil {
		return err
	}
	session.AddFlash(c, "info", "Вы вышли из системы")
	return c.Redirect(http.StatusFound, "/")
}
