package services

import (
	"context"
	"errors"
	"time"

	"pujcovna/internal/clients"
	"pujcovna/internal/domain"
	"pujcovna/internal/rental"
	"pujcovna/internal/repos"
)

// ErrNotConfigured is returned when an external integration has no credentials.
var ErrNotConfigured = errors.New("integration not configured")

type Invoicer interface {
	CreateInvoice(ctx context.Context, req clients.InvoiceRequest) (clients.Invoice, error)
}

type InvoiceService struct {
	Reservations *repos.ReservationRepo
	Client       Invoicer
	Currency     string
	DueDays      int
	Now          func() time.Time
}

func NewInvoiceService(res *repos.ReservationRepo, client Invoicer, currency string, dueDays int) *InvoiceService {
	return &InvoiceService{Reservations: res, Client: client, Currency: currency, DueDays: dueDays, Now: time.Now}
}

// Issue creates the invoice for a reservation once; a second call conflicts.
func (s *InvoiceService) Issue(ctx context.Context, id string) (domain.Reservation, error) {
	if s.Client == nil {
		return domain.Reservation{}, ErrNotConfigured
	}
	r, err := s.Reservations.Get(id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.InvoiceID != "" {
		return domain.Reservation{}, domain.ConflictError{Resource: "invoice", Msg: "reservation already invoiced as " + r.InvoiceNumber}
	}
	if r.Status == domain.StatusNew || r.Status == domain.StatusCanceled {
		return domain.Reservation{}, domain.ConflictError{Resource: "invoice", Msg: "only confirmed reservations can be invoiced"}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	issued := now().UTC()
	req := clients.InvoiceRequest{
		ExternalID:    r.ID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Street:        r.Street,
		City:          r.City,
		Zip:           r.Zip,
		Currency:      s.Currency,
		IssuedOn:      issued.Format(rental.DateLayout),
		DueOn:         issued.AddDate(0, 0, s.DueDays).Format(rental.DateLayout),
	}
	for _, it := range r.Items {
		req.Lines = append(req.Lines, clients.InvoiceLine{
			Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.TotalPrice,
		})
	}

	inv, err := s.Client.CreateInvoice(ctx, req)
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := s.Reservations.SetInvoice(r.ID, inv.ID, inv.Number); err != nil {
		return domain.Reservation{}, err
	}
	return s.Reservations.Get(r.ID)
}
