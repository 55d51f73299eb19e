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
	"github.com/mkuznecov/warehouse/internal/service/catalog"
	"github.com/mkuznecov/warehouse/internal/session"
)

type AdminHandler struct {
	Catalog  *catalog.Service
	Producer *mykafka.Producer
}

func (h *AdminHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func productInput(c echo.Context) catalog.ProductInput {
	return catalog.ProductInput{
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		DetailedSpecs: c.FormValue("detailed_specs"),
		SKU:           c.FormValue("sku"),
		Quantity:      c.FormValue("quantity"),
		Price:         c.FormValue("price"),
		CategoryID:    c.FormValue("category_id"),
	}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.Catalog.All(ctx)
	if err != nil {
		return err
	}
	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	stats, err := h.Catalog.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":   products,
		"categories": categories,
		"stats":      stats,
		"flashes":    session.Flashes(c),
	})
}

func (h *AdminHandler) AddForm(c echo.Context) error {
	categories, err := h.Catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"categories": categories,
		"flashes":    session.Flashes(c),
	})
}

func (h *AdminHandler) Add(c echo.Context) error {
	product, err := h.Catalog.Create(c.Request().Context(), productInput(c))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrDuplicateSKU), errors.Is(err, catalog.ErrInvalidInput):
			session.AddFlash(c, "danger", err.Error())
			return c.Redirect(http.StatusFound, "/admin/product/add")
		default:
			return err
		}
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]interface{}{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})

	session.AddFlash(c, "success", "Товар успешно добавлен")
	return c.Redirect(http.StatusFound, "/admin")
}

func (h *AdminHandler) EditForm(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	product, err := h.Catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			session.AddFlash(c, "danger", "Товар не найден")
			return c.Redirect(http.StatusFound, "/admin")
		}
		return err
	}

	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product":    product,
		"categories": categories,
		"flashes":    session.Flashes(c),
	})
}

func (h *AdminHandler) Edit(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	product, err := h.Catalog.Update(c.Request().Context(), id, productInput(c))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			session.AddFlash(c, "danger", "Товар не найден")
			return c.Redirect(http.StatusFound, "/admin")
		case errors.Is(err, catalog.ErrDuplicateSKU), errors.Is(err, catalog.ErrInvalidInput):
			session.AddFlash(c, "danger", err.Error())
			return c.Redirect(http.StatusFound, fmt.Sprintf("/admin/product/edit/%d", id))
		default:
			return err
		}
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]interface{}{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})

	session.AddFlash(c, "success", "Товар обновлен")
	return c.Redirect(http.StatusFound, "/admin")
}

func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	product, err := h.Catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			session.AddFlash(c, "danger", "Товар не найден")
			return c.Redirect(http.StatusFound, "/admin")
		}
		return err
	}

	if err := h.Catalog.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			session.AddFlash(c, "danger", "Товар не найден")
			return c.Redirect(http.StatusFound, "/admin")
		}
		return err
	}

	h.publish(c, fmt.Sprint(id), map[string]interface{}{
		"type":       "product_deleted",
		"product_id": id,
	})

	session.AddFlash(c, "success", fmt.Sprintf("Товар %q удален", product.Name))
	return c.Redirect(http.StatusFound, "/admin")
}
