package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkuznecov/warehouse/internal/handlers"
	"github.com/mkuznecov/warehouse/internal/hash"
	"github.com/mkuznecov/warehouse/internal/logging"
	authmw "github.com/mkuznecov/warehouse/internal/middleware/auth"
	"github.com/mkuznecov/warehouse/internal/models"
	"github.com/mkuznecov/warehouse/internal/service/catalog"
	"github.com/mkuznecov/warehouse/internal/service/users"
	"github.com/mkuznecov/warehouse/internal/session"
	httpserver "github.com/mkuznecov/warehouse/internal/transport/http"
)

type testEnv struct {
	e       *echo.Echo
	db      *gorm.DB
	cookies map[string]*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))

	userService := &users.Service{DB: db}
	catalogService := &catalog.Service{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(logging.New("error"))
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(session.Middleware([]byte("test-secret")))

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{Users: userService},
		SearchHandler:  &handlers.SearchHandler{Catalog: catalogService},
		ProductHandler: &handlers.ProductHandler{Catalog: catalogService},
		AdminHandler:   &handlers.AdminHandler{Catalog: catalogService},
		APIHandler:     &handlers.APIHandler{Catalog: catalogService},
		Guard:          &authmw.Guard{Users: userService},
	})

	return &testEnv{e: e, db: db, cookies: make(map[string]*http.Cookie)}
}

// do issues one request, carrying session cookies across calls like a browser.
func (env *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range env.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		env.cookies[ck.Name] = ck
	}
	return rec
}

func (env *testEnv) createUser(t *testing.T, username, email, password string, admin bool) models.User {
	t.Helper()

	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{Username: username, Email: email, PasswordHash: passwordHash, IsAdmin: admin}
	require.NoError(t, env.db.Create(&user).Error)
	return user
}

func (env *testEnv) login(t *testing.T, username, password string) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/search", rec.Header().Get("Location"))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestRegister_DuplicateCreatesNoUser(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)

	rec := env.do(t, http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"email":    {"new@example.com"},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodPost, "/register", url.Values{
		"username": {"bob"},
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&user).Error)
	assert.False(t, user.IsAdmin)
}

func TestLoginLogout_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", "secret123", false)
	env.login(t, "alice", "secret123")

	var landing struct {
		User *struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			IsAdmin  bool   `json:"is_admin"`
		} `json:"user"`
	}
	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &landing)
	require.NotNil(t, landing.User)
	assert.Equal(t, user.ID, landing.User.ID)
	assert.Equal(t, "alice", landing.User.Username)
	assert.False(t, landing.User.IsAdmin)

	rec = env.do(t, http.MethodGet, "/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	landing.User = nil
	rec = env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &landing)
	assert.Nil(t, landing.User)
}

func TestLogin_BadPasswordRedirectsBack(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSearch_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/search", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSearch_CategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)

	tech := models.Category{Name: "Электроника"}
	books := models.Category{Name: "Книги"}
	require.NoError(t, env.db.Create(&tech).Error)
	require.NoError(t, env.db.Create(&books).Error)
	require.NoError(t, env.db.Create(&[]models.Product{
		{Name: "Ноутбук", Description: "d", SKU: "LAP001", CategoryID: &tech.ID},
		{Name: "Учебник", Description: "d", SKU: "BOK001", CategoryID: &books.ID},
	}).Error)

	env.login(t, "alice", "secret123")

	rec := env.do(t, http.MethodGet, "/search?category="+itoa(tech.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Products []models.Product `json:"products"`
	}
	decodeJSON(t, rec, &payload)
	require.Len(t, payload.Products, 1)
	require.NotNil(t, payload.Products[0].CategoryID)
	assert.Equal(t, tech.ID, *payload.Products[0].CategoryID)
}

func TestProductDetail_IncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)

	product := models.Product{Name: "Ноутбук", Description: "d", SKU: "LAP001"}
	require.NoError(t, env.db.Create(&product).Error)

	env.login(t, "alice", "secret123")

	for i := 1; i <= 3; i++ {
		rec := env.do(t, http.MethodGet, "/product/"+itoa(product.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			Product models.Product `json:"product"`
		}
		decodeJSON(t, rec, &payload)
		assert.Equal(t, i, payload.Product.ViewsCount)
	}

	rec := env.do(t, http.MethodGet, "/product/9999", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/search", rec.Header().Get("Location"))
}

func TestAdmin_DeniedForNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)
	env.login(t, "alice", "secret123")

	rec := env.do(t, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAdmin_DeniedForAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAdmin_StaleSessionFlagIsNotTrusted(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "boss", "boss@example.com", "secret123", true)
	env.login(t, "boss", "secret123")

	rec := env.do(t, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// demote mid-session: the next admin request must be refused
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", false).Error)

	rec = env.do(t, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAdmin_CreateProductUpdatesStats(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "boss", "boss@example.com", "secret123", true)
	env.login(t, "boss", "secret123")

	rec := env.do(t, http.MethodPost, "/admin/product/add", url.Values{
		"name":        {"Widget"},
		"description": {"a widget"},
		"sku":         {"W-1"},
		"quantity":    {"5"},
		"price":       {"9.99"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Stats catalog.Stats `json:"stats"`
	}
	decodeJSON(t, rec, &payload)
	assert.Equal(t, int64(1), payload.Stats.TotalProducts)
	assert.Equal(t, int64(5), payload.Stats.TotalQuantity)
	assert.InDelta(t, 49.95, payload.Stats.TotalValue, 0.0001)
}

func TestAdmin_DuplicateSKURedirectsBack(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "boss", "boss@example.com", "secret123", true)
	env.login(t, "boss", "secret123")

	form := url.Values{
		"name":        {"Widget"},
		"description": {"a widget"},
		"sku":         {"DUP"},
		"quantity":    {"1"},
		"price":       {"1"},
	}
	rec := env.do(t, http.MethodPost, "/admin/product/add", form)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodPost, "/admin/product/add", form)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/product/add", rec.Header().Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&models.Product{}).Where("sku = ?", "DUP").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdmin_EditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "boss", "boss@example.com", "secret123", true)
	env.login(t, "boss", "secret123")

	product := models.Product{Name: "Widget", Description: "d", SKU: "W-1", Quantity: 1, Price: 1}
	require.NoError(t, env.db.Create(&product).Error)

	rec := env.do(t, http.MethodPost, "/admin/product/edit/"+itoa(product.ID), url.Values{
		"name":        {"Widget v2"},
		"description": {"d2"},
		"sku":         {"W-2"},
		"quantity":    {"3"},
		"price":       {"2.5"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	var got models.Product
	require.NoError(t, env.db.First(&got, product.ID).Error)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, "W-2", got.SKU)
	assert.Equal(t, 3, got.Quantity)

	rec = env.do(t, http.MethodGet, "/admin/product/delete/"+itoa(product.ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	rec = env.do(t, http.MethodGet, "/admin/product/delete/"+itoa(product.ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestAPIProducts_CategorySentinel(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "secret123", false)

	tech := models.Category{Name: "Электроника"}
	require.NoError(t, env.db.Create(&tech).Error)
	require.NoError(t, env.db.Create(&[]models.Product{
		{Name: "Ноутбук", Description: "d", SKU: "LAP001", Quantity: 2, Price: 500, CategoryID: &tech.ID},
		{Name: "Сирота", Description: "d", SKU: "ORF001", Quantity: 1, Price: 10},
	}).Error)

	env.login(t, "alice", "secret123")

	rec := env.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload []struct {
		ID       uint    `json:"id"`
		Name     string  `json:"name"`
		SKU      string  `json:"sku"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	}
	decodeJSON(t, rec, &payload)
	require.Len(t, payload, 2)
	assert.Equal(t, "Электроника", payload[0].Category)
	assert.Equal(t, "Без категории", payload[1].Category)
}

func TestUnmappedRouteRenders404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/no/such/page", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var payload struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}
	decodeJSON(t, rec, &payload)
	assert.Equal(t, http.StatusNotFound, payload.Code)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
