package handlers

import (
	"time"

	applog "pujcovna/internal/log"
	"pujcovna/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Reservations *services.ReservationService
	Auth         *services.AuthService
	Now          func() time.Time
}

// GET /api/v1/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	d, err := h.Reservations.Dashboard(now())
	if err != nil {
		return fail(c, "dashboard.load", err, nil)
	}
	return c.JSON(d)
}

// GET /api/v1/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers()
	if err != nil {
		return fail(c, "admin.users.list", err, nil)
	}
	return c.JSON(users)
}

// POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.users.save", err)
	}
	u, err := h.Auth.CreateUser(in)
	if err != nil {
		return fail(c, "admin.users.save", err, map[string]any{"email": in.Email})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "admin.users.save", map[string]any{"target_user": u.ID, "role": u.Role})
	return c.JSON(u)
}

// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Auth.DeleteUser(id, userID(c)); err != nil {
		return fail(c, "admin.users.delete", err, map[string]any{"target_user": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, "admin.users.delete", map[string]any{"target_user": id})
	return c.SendStatus(fiber.StatusNoContent)
}
