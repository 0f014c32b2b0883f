package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pujcovna/internal/clients"
	"pujcovna/internal/domain"
	applog "pujcovna/internal/log"
	"pujcovna/internal/rental"
	"pujcovna/internal/services"
)

const friendlyError = "Something went wrong. Please try again."

// fail maps a service error to a JSON response. Client errors are logged at
// info level; anything unexpected is logged and hidden behind a generic message.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	var ve domain.ValidationError
	status, body := fiber.StatusInternalServerError, fiber.Map{"error": friendlyError}

	switch {
	case errors.As(err, &ve):
		status, body = fiber.StatusBadRequest, fiber.Map{"error": ve.Error(), "field": ve.Field}
	case rental.IsInvalidRange(err), rental.IsInvalidDuration(err):
		status, body = fiber.StatusBadRequest, fiber.Map{"error": err.Error()}
	case domain.IsNotFound(err):
		status, body = fiber.StatusNotFound, fiber.Map{"error": err.Error()}
	case domain.IsConflict(err):
		status, body = fiber.StatusConflict, fiber.Map{"error": err.Error()}
	case errors.Is(err, services.ErrNotConfigured):
		status, body = fiber.StatusServiceUnavailable, fiber.Map{"error": "integration not configured"}
	case errors.Is(err, clients.ErrUpstream):
		status, body = fiber.StatusBadGateway, fiber.Map{"error": "external service unavailable, try again later"}
	}

	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, fields)
	} else {
		f := map[string]any{"reason": err.Error()}
		for k, v := range fields {
			f[k] = v
		}
		applog.Info(c, action+".rejected", f)
	}
	return c.JSON(body)
}

func badBody(c *fiber.Ctx, action string, err error) error {
	applog.Info(c, action+".rejected", map[string]any{"reason": "invalid body"})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
}

// ErrorHandler is the last resort for errors handlers return instead of answering.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": friendlyError})
}
