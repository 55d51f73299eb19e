package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkuznecov/warehouse/internal/handlers"
	"github.com/mkuznecov/warehouse/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	SearchHandler  *handlers.SearchHandler
	ProductHandler *handlers.ProductHandler
	AdminHandler   *handlers.AdminHandler
	APIHandler     *handlers.APIHandler
	Guard          *auth.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(204) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(204) })

	e.GET("/", d.AuthHandler.Index)
	e.GET("/register", d.AuthHandler.RegisterForm)
	e.POST("/register", d.AuthHandler.Register)
	e.GET("/login", d.AuthHandler.LoginForm)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/logout", d.AuthHandler.Logout)

	authed := e.Group("", d.Guard.RequireLogin)
	authed.GET("/search", d.SearchHandler.Search)
	authed.GET("/product/:id", d.ProductHandler.Detail)
	authed.GET("/api/products", d.APIHandler.Products)

	admin := e.Group("/admin", d.Guard.AdminOnly)
	admin.GET("", d.AdminHandler.Dashboard)
	admin.GET("/product/add", d.AdminHandler.AddForm)
	admin.POST("/product/add", d.AdminHandler.Add)
	admin.GET("/product/edit/:id", d.AdminHandler.EditForm)
	admin.POST("/product/edit/:id", d.AdminHandler.Edit)
	admin.GET("/product/delete/:id", d.AdminHandler.Delete)
}
