package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkuznecov/warehouse/internal/service/catalog"
)

type APIHandler struct {
	Catalog *catalog.Service
}

type apiProduct struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

func (h *APIHandler) Products(c echo.Context) error {
	products, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]apiProduct, 0, len(products))
	for _, p := range products {
		category := "Без категории"
		if p.Category != nil {
			category = p.Category.Name
		}
		out = append(out, apiProduct{
			ID:       p.ID,
			Name:     p.Name,
			SKU:      p.SKU,
			Quantity: p.Quantity,
			Price:    p.Price,
			Category: category,
		})
	}
	return c.JSON(http.StatusOK, out)
}
