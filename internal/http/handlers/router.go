package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pujcovna/internal/domain"
	applog "pujcovna/internal/log"
	"pujcovna/internal/metrics"
)

// NewApp wires middleware and routes. storage backs the rate limiters; nil
// keeps the in-memory default.
func NewApp(deps *Deps, storage fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "pujcovna",
		ErrorHandler: ErrorHandler,
	})

	// 1 MiB request body
	app.Server().MaxRequestBodySize = 1 << 20

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: `{"time":"${time}","req_id":"${locals:requestid}","status":${status},"latency":"${latency}","method":"${method}","path":"${path}"}` + "\n",
		Output: applog.Writer(),
	}))
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(metrics.Middleware())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many login attempts. Please wait and try again."})
		},
	})
	api.Post("/auth/login", loginLimiter, deps.AuthHandler.Login)

	authed := api.Group("", RequireAuth(deps.Auth))
	authed.Get("/auth/me", deps.AuthHandler.Me)

	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	})
	authed.Get("/availability", availLimiter, deps.AvailabilityHandler.Check)
	authed.Get("/dashboard", deps.AdminHandler.Dashboard)

	ch := deps.CameraHandler
	authed.Get("/cameras", ch.List)
	authed.Get("/cameras/:id", ch.Get)
	authed.Post("/cameras", ch.Create)
	authed.Put("/cameras/:id", ch.Update)
	authed.Delete("/cameras/:id", RequireRole(domain.RoleAdmin), ch.Delete)

	cat := deps.CatalogHandler
	authed.Get("/films", cat.ListFilms)
	authed.Get("/films/:id", cat.GetFilm)
	authed.Post("/films", cat.CreateFilm)
	authed.Put("/films/:id", cat.UpdateFilm)
	authed.Put("/films/:id/stock", cat.SetFilmStock)
	authed.Delete("/films/:id", RequireRole(domain.RoleAdmin), cat.DeleteFilm)
	authed.Get("/accessories", cat.ListAccessories)
	authed.Get("/accessories/:id", cat.GetAccessory)
	authed.Post("/accessories", cat.CreateAccessory)
	authed.Put("/accessories/:id", cat.UpdateAccessory)
	authed.Put("/accessories/:id/stock", cat.SetAccessoryStock)
	authed.Delete("/accessories/:id", RequireRole(domain.RoleAdmin), cat.DeleteAccessory)

	rh := deps.ReservationHandler
	authed.Get("/reservations", rh.List)
	authed.Post("/reservations/quote", rh.Quote)
	authed.Post("/reservations", rh.Create)
	authed.Get("/reservations/:id", rh.Get)
	authed.Put("/reservations/:id", rh.Update)
	authed.Patch("/reservations/:id/status", rh.UpdateStatus)
	authed.Delete("/reservations/:id", RequireRole(domain.RoleAdmin), rh.Delete)
	authed.Get("/reservations/:id/contract.pdf", rh.Contract)
	authed.Post("/reservations/:id/invoice", rh.Invoice)
	authed.Post("/reservations/:id/shipping-label", rh.ShippingLabel)

	admin := authed.Group("/admin", RequireRole(domain.RoleAdmin))
	admin.Get("/users", deps.AdminHandler.Users)
	admin.Post("/users", deps.AdminHandler.CreateUser)
	admin.Delete("/users/:id", deps.AdminHandler.DeleteUser)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
