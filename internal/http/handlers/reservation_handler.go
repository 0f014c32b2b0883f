package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pujcovna/internal/domain"
	applog "pujcovna/internal/log"
	"pujcovna/internal/services"
)

type ReservationHandler struct {
	Reservations *services.ReservationService
	Invoices     *services.InvoiceService
	Shipping     *services.ShippingService
}

// GET /api/v1/reservations?status=&limit=
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 500", "field": "limit"})
		}
		limit = n
	}
	rs, err := h.Reservations.List(c.Query("status"), limit)
	if err != nil {
		return fail(c, "reservation.list", err, nil)
	}
	return c.JSON(rs)
}

// GET /api/v1/reservations/:id
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	r, err := h.Reservations.Get(c.Params("id"))
	if err != nil {
		return fail(c, "reservation.get", err, map[string]any{"reservation_id": c.Params("id")})
	}
	return c.JSON(r)
}

// POST /api/v1/reservations/quote?exclude=
func (h *ReservationHandler) Quote(c *fiber.Ctx) error {
	var in services.ReservationInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "reservation.quote", err)
	}
	q, err := h.Reservations.Quote(in, c.Query("exclude"))
	if err != nil {
		return fail(c, "reservation.quote", err, nil)
	}
	return c.JSON(q)
}

// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in services.ReservationInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "reservation.save", err)
	}
	r, err := h.Reservations.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "reservation.save", err, map[string]any{"start": in.StartDate, "end": in.EndDate})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "reservation.save", map[string]any{
		"reservation_id": r.ID, "op": "create", "start": r.StartDate, "end": r.EndDate, "total": r.TotalPrice,
	})
	return c.JSON(r)
}

// PUT /api/v1/reservations/:id
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.ReservationInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "reservation.save", err)
	}
	r, err := h.Reservations.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "reservation.save", err, map[string]any{"reservation_id": id})
	}
	applog.Audit(c, "reservation.save", map[string]any{
		"reservation_id": id, "op": "update", "start": r.StartDate, "end": r.EndDate, "status": r.Status, "total": r.TotalPrice,
	})
	return c.JSON(r)
}

type statusRequest struct {
	Status domain.ReservationStatus `json:"status"`
}

// PATCH /api/v1/reservations/:id/status
func (h *ReservationHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in statusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "reservation.status", err)
	}
	r, err := h.Reservations.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return fail(c, "reservation.status", err, map[string]any{"reservation_id": id, "status": in.Status})
	}
	applog.Audit(c, "reservation.status", map[string]any{"reservation_id": id, "status": r.Status})
	return c.JSON(r)
}

// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Reservations.Delete(id); err != nil {
		return fail(c, "reservation.delete", err, map[string]any{"reservation_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, "reservation.delete", map[string]any{"reservation_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/reservations/:id/contract.pdf
func (h *ReservationHandler) Contract(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, name, err := h.Reservations.Contract(id)
	if err != nil {
		return fail(c, "reservation.contract", err, map[string]any{"reservation_id": id})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(pdf)
}

// POST /api/v1/reservations/:id/invoice
func (h *ReservationHandler) Invoice(c *fiber.Ctx) error {
	id := c.Params("id")
	r, err := h.Invoices.Issue(c.UserContext(), id)
	if err != nil {
		return fail(c, "reservation.invoice", err, map[string]any{"reservation_id": id})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "reservation.invoice", map[string]any{"reservation_id": id, "invoice_number": r.InvoiceNumber})
	return c.JSON(r)
}

// POST /api/v1/reservations/:id/shipping-label
func (h *ReservationHandler) ShippingLabel(c *fiber.Ctx) error {
	id := c.Params("id")
	r, err := h.Shipping.CreateLabel(c.UserContext(), id)
	if err != nil {
		return fail(c, "reservation.label", err, map[string]any{"reservation_id": id})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "reservation.label", map[string]any{"reservation_id": id, "tracking": r.TrackingNumber})
	return c.JSON(r)
}
