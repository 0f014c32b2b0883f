package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "pujcovna/internal/log"
	"pujcovna/internal/services"
)

// CatalogHandler serves films and accessories, the stock-counted goods.
type CatalogHandler struct {
	Catalog *services.CatalogService
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func readStock(c *fiber.Ctx) (int, bool) {
	var in stockRequest
	if err := c.BodyParser(&in); err != nil || in.Stock == nil || *in.Stock < 0 {
		return 0, false
	}
	return *in.Stock, true
}

func (h *CatalogHandler) ListFilms(c *fiber.Ctx) error {
	films, err := h.Catalog.ListFilms()
	if err != nil {
		return fail(c, "film.list", err, nil)
	}
	return c.JSON(films)
}

func (h *CatalogHandler) GetFilm(c *fiber.Ctx) error {
	f, err := h.Catalog.GetFilm(c.Params("id"))
	if err != nil {
		return fail(c, "film.get", err, map[string]any{"film_id": c.Params("id")})
	}
	return c.JSON(f)
}

func (h *CatalogHandler) CreateFilm(c *fiber.Ctx) error {
	var in services.FilmInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "film.save", err)
	}
	f, err := h.Catalog.CreateFilm(in)
	if err != nil {
		return fail(c, "film.save", err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "film.save", map[string]any{"film_id": f.ID, "op": "create"})
	return c.JSON(f)
}

func (h *CatalogHandler) UpdateFilm(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.FilmInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "film.save", err)
	}
	f, err := h.Catalog.UpdateFilm(id, in)
	if err != nil {
		return fail(c, "film.save", err, map[string]any{"film_id": id})
	}
	applog.Audit(c, "film.save", map[string]any{"film_id": id, "op": "update"})
	return c.JSON(f)
}

// PUT /api/v1/films/:id/stock
func (h *CatalogHandler) SetFilmStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, ok := readStock(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stock must be a non-negative integer", "field": "stock"})
	}
	if err := h.Catalog.SetFilmStock(id, qty); err != nil {
		return fail(c, "film.stock.save", err, map[string]any{"film_id": id})
	}
	applog.Audit(c, "film.stock.save", map[string]any{"film_id": id, "stock": qty})
	return c.JSON(fiber.Map{"id": id, "stock": qty})
}

func (h *CatalogHandler) DeleteFilm(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteFilm(id); err != nil {
		return fail(c, "film.delete", err, map[string]any{"film_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, "film.delete", map[string]any{"film_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListAccessories(c *fiber.Ctx) error {
	accs, err := h.Catalog.ListAccessories()
	if err != nil {
		return fail(c, "accessory.list", err, nil)
	}
	return c.JSON(accs)
}

func (h *CatalogHandler) GetAccessory(c *fiber.Ctx) error {
	a, err := h.Catalog.GetAccessory(c.Params("id"))
	if err != nil {
		return fail(c, "accessory.get", err, map[string]any{"accessory_id": c.Params("id")})
	}
	return c.JSON(a)
}

func (h *CatalogHandler) CreateAccessory(c *fiber.Ctx) error {
	var in services.AccessoryInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "accessory.save", err)
	}
	a, err := h.Catalog.CreateAccessory(in)
	if err != nil {
		return fail(c, "accessory.save", err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "accessory.save", map[string]any{"accessory_id": a.ID, "op": "create"})
	return c.JSON(a)
}

func (h *CatalogHandler) UpdateAccessory(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.AccessoryInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "accessory.save", err)
	}
	a, err := h.Catalog.UpdateAccessory(id, in)
	if err != nil {
		return fail(c, "accessory.save", err, map[string]any{"accessory_id": id})
	}
	applog.Audit(c, "accessory.save", map[string]any{"accessory_id": id, "op": "update"})
	return c.JSON(a)
}

// PUT /api/v1/accessories/:id/stock
func (h *CatalogHandler) SetAccessoryStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty, ok := readStock(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stock must be a non-negative integer", "field": "stock"})
	}
	if err := h.Catalog.SetAccessoryStock(id, qty); err != nil {
		return fail(c, "accessory.stock.save", err, map[string]any{"accessory_id": id})
	}
	applog.Audit(c, "accessory.stock.save", map[string]any{"accessory_id": id, "stock": qty})
	return c.JSON(fiber.Map{"id": id, "stock": qty})
}

func (h *CatalogHandler) DeleteAccessory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteAccessory(id); err != nil {
		return fail(c, "accessory.delete", err, map[string]any{"accessory_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, "accessory.delete", map[string]any{"accessory_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
