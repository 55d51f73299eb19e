package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	contrib "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const cookieName = "warehouse_session"

// State is the full set of session keys the application recognizes. Anything
// else found in the cookie is ignored.
type State struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func init() {
	gob.Register(Flash{})
}

func Middleware(secret []byte) echo.MiddlewareFunc {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return contrib.Middleware(store)
}

func Current(c echo.Context) (State, bool) {
	s, err := contrib.Get(cookieName, c)
	if err != nil {
		return State{}, false
	}
	id, ok := s.Values["user_id"].(uint)
	if !ok || id == 0 {
		return State{}, false
	}
	username, _ := s.Values["username"].(string)
	isAdmin, _ := s.Values["is_admin"].(bool)
	return State{UserID: id, Username: username, IsAdmin: isAdmin}, true
}

func SetCurrent(c echo.Context, st State) error {
	s, err := contrib.Get(cookieName, c)
	if err != nil {
		return err
	}
	s.Values["user_id"] = st.UserID
	s.Values["username"] = st.Username
	s.Values["is_admin"] = st.IsAdmin
	return s.Save(c.Request(), c.Response())
}

// Clear drops the identity keys but keeps the cookie alive so a flash written
// in the same request still reaches the next page.
func Clear(c echo.Context) error {
	s, err := contrib.Get(cookieName, c)
	if err != nil {
		return err
	}
	delete(s.Values, "user_id")
	delete(s.Values, "username")
	delete(s.Values, "is_admin")
	return s.Save(c.Request(), c.Response())
}

func AddFlash(c echo.Context, kind, message string) {
	s, err := contrib.Get(cookieName, c)
	if err != nil {
		return
	}
	s.AddFlash(Flash{Kind: kind, Message: message})
	_ = s.Save(c.Request(), c.Response())
}

// Flashes returns and consumes the pending flash messages.
func Flashes(c echo.Context) []Flash {
	s, err := contrib.Get(cookieName, c)
	if err != nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(c.Request(), c.Response())
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}
