package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/service/catalog"
	"github.com/mkuznecov/warehouse/internal/session"
)

type ProductHandler struct {
	Catalog *catalog.Service
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "страница не найдена")
	}
	return uint(id), nil
}

// Detail records one view and returns the product.
func (h *ProductHandler) Detail(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	product, err := h.Catalog.RecordView(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			session.AddFlash(c, "danger", "Товар не найден")
			return c.Redirect(http.StatusFound, "/search")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product": product,
		"flashes": session.Flashes(c),
	})
}
