package handlers

import (
	"pujcovna/internal/config"
	"pujcovna/internal/events"
	"pujcovna/internal/repos"
	"pujcovna/internal/services"

	"github.com/jmoiron/sqlx"
)

// Integrations carries the optional outbound adapters; nil fields stay unconfigured.
type Integrations struct {
	Publisher events.Publisher
	Invoicer  services.Invoicer
	Labels    services.LabelCreator
}

type Deps struct {
	AuthHandler         *AuthHandler
	CameraHandler       *CameraHandler
	CatalogHandler      *CatalogHandler
	ReservationHandler  *ReservationHandler
	AvailabilityHandler *AvailabilityHandler
	AdminHandler        *AdminHandler

	Auth         *services.AuthService
	Reservations *services.ReservationService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, in Integrations) *Deps {
	camRepo := repos.NewCameraRepo(db)
	filmRepo := repos.NewFilmRepo(db)
	accRepo := repos.NewAccessoryRepo(db)
	resRepo := repos.NewReservationRepo(db)

	cameraSvc := services.NewCameraService(camRepo)
	catalogSvc := services.NewCatalogService(filmRepo, accRepo)
	resSvc := services.NewReservationService(resRepo, camRepo, filmRepo, accRepo, in.Publisher, cfg.Currency)
	invoiceSvc := services.NewInvoiceService(resRepo, in.Invoicer, cfg.Currency, cfg.InvoicingDueDays)
	shipSvc := services.NewShippingService(resRepo, in.Labels, cfg.ShippingDefaultWeightG)

	return &Deps{
		AuthHandler:         &AuthHandler{Auth: auth},
		CameraHandler:       &CameraHandler{Cameras: cameraSvc},
		CatalogHandler:      &CatalogHandler{Catalog: catalogSvc},
		ReservationHandler:  &ReservationHandler{Reservations: resSvc, Invoices: invoiceSvc, Shipping: shipSvc},
		AvailabilityHandler: &AvailabilityHandler{Reservations: resSvc},
		AdminHandler:        &AdminHandler{Reservations: resSvc, Auth: auth},
		Auth:                auth,
		Reservations:        resSvc,
	}
}
