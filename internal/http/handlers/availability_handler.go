package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pujcovna/internal/services"
	"pujcovna/internal/validate"
)

type AvailabilityHandler struct {
	Reservations *services.ReservationService
}

// GET /api/v1/availability?from=YYYY-MM-DD&to=YYYY-MM-DD&exclude=
func (h *AvailabilityHandler) Check(c *fiber.Ctx) error {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from and to are required",
		})
	}

	exclude := c.Query("exclude")
	if exclude != "" {
		if _, ok := validate.ID(exclude); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid exclude id",
				"field": "exclude",
			})
		}
	}

	cams, err := h.Reservations.AvailableCameras(from, to, exclude)
	if err != nil {
		return fail(c, "availability.check", err, map[string]any{"from": from, "to": to})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "cameras": cams})
}
