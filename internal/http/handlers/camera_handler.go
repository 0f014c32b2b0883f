package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "pujcovna/internal/log"
	"pujcovna/internal/services"
	"pujcovna/internal/validate"
)

type CameraHandler struct {
	Cameras *services.CameraService
}

// GET /api/v1/cameras?status=&q=
func (h *CameraHandler) List(c *fiber.Ctx) error {
	q := ""
	if raw := c.Query("q"); raw != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
		}
	}
	cams, err := h.Cameras.List(c.Query("status"), q)
	if err != nil {
		return fail(c, "camera.list", err, nil)
	}
	return c.JSON(cams)
}

// GET /api/v1/cameras/:id
func (h *CameraHandler) Get(c *fiber.Ctx) error {
	cam, err := h.Cameras.Get(c.Params("id"))
	if err != nil {
		return fail(c, "camera.get", err, map[string]any{"camera_id": c.Params("id")})
	}
	return c.JSON(cam)
}

// POST /api/v1/cameras
func (h *CameraHandler) Create(c *fiber.Ctx) error {
	var in services.CameraInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "camera.save", err)
	}
	cam, err := h.Cameras.Create(in)
	if err != nil {
		return fail(c, "camera.save", err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "camera.save", map[string]any{"camera_id": cam.ID, "op": "create", "status": cam.Status})
	return c.JSON(cam)
}

// PUT /api/v1/cameras/:id
func (h *CameraHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.CameraInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "camera.save", err)
	}
	cam, err := h.Cameras.Update(id, in)
	if err != nil {
		return fail(c, "camera.save", err, map[string]any{"camera_id": id})
	}
	applog.Audit(c, "camera.save", map[string]any{"camera_id": id, "op": "update", "status": cam.Status, "tiers": len(cam.Tiers)})
	return c.JSON(cam)
}

// DELETE /api/v1/cameras/:id
func (h *CameraHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Cameras.Delete(id); err != nil {
		return fail(c, "camera.delete", err, map[string]any{"camera_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, "camera.delete", map[string]any{"camera_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
