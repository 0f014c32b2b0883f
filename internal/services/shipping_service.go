package services

import (
	"context"

	"pujcovna/internal/clients"
	"pujcovna/internal/domain"
	"pujcovna/internal/repos"
)

type LabelCreator interface {
	CreateLabel(ctx context.Context, req clients.LabelRequest) (clients.Label, error)
}

type ShippingService struct {
	Reservations   *repos.ReservationRepo
	Client         LabelCreator
	DefaultWeightG int
}

func NewShippingService(res *repos.ReservationRepo, client LabelCreator, weightG int) *ShippingService {
	return &ShippingService{Reservations: res, Client: client, DefaultWeightG: weightG}
}

// CreateLabel books a parcel for a shipped reservation and stores the tracking data.
func (s *ShippingService) CreateLabel(ctx context.Context, id string) (domain.Reservation, error) {
	if s.Client == nil {
		return domain.Reservation{}, ErrNotConfigured
	}
	r, err := s.Reservations.Get(id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.DeliveryMethod != domain.DeliveryShipping {
		return domain.Reservation{}, domain.ValidationError{Field: "delivery_method", Msg: "reservation is picked up, not shipped"}
	}
	if r.Street == "" || r.City == "" || r.Zip == "" {
		return domain.Reservation{}, domain.ValidationError{Field: "street", Msg: "shipping address is incomplete"}
	}
	if r.Status == domain.StatusCanceled {
		return domain.Reservation{}, domain.ConflictError{Resource: "shipment", Msg: "reservation is canceled"}
	}
	if r.TrackingNumber != "" {
		return domain.Reservation{}, domain.ConflictError{Resource: "shipment", Msg: "label already created: " + r.TrackingNumber}
	}

	cameras := len(r.CameraIDs())
	if cameras == 0 {
		cameras = 1
	}
	label, err := s.Client.CreateLabel(ctx, clients.LabelRequest{
		Reference: r.ID,
		Recipient: clients.Recipient{
			Name:   r.CustomerName,
			Email:  r.CustomerEmail,
			Phone:  r.CustomerPhone,
			Street: r.Street,
			City:   r.City,
			Zip:    r.Zip,
		},
		WeightGrams: s.DefaultWeightG * cameras,
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := s.Reservations.SetShipment(r.ID, label.TrackingNumber, label.LabelURL); err != nil {
		return domain.Reservation{}, err
	}
	return s.Reservations.Get(r.ID)
}
