package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/service/catalog"
	"github.com/mkuznecov/warehouse/internal/session"
)

type SearchHandler struct {
	Catalog *catalog.Service
}

func parseUintDefault(s string, def uint) uint {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint(v)
	}
	return def
}

func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	categoryID := parseUintDefault(c.QueryParam("category"), 0)
	sort := c.QueryParam("sort")
	if sort == "" {
		sort = "views_count"
	}

	ctx := c.Request().Context()

	products, err := h.Catalog.Search(ctx, query, categoryID, sort)
	if err != nil {
		return err
	}
	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":    products,
		"categories":  categories,
		"query":       query,
		"category_id": categoryID,
		"sort":        sort,
		"flashes":     session.Flashes(c),
	})
}
