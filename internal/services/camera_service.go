package services

import (
	"fmt"

	"pujcovna/internal/domain"
	"pujcovna/internal/repos"
	"pujcovna/internal/validate"

	"github.com/google/uuid"
)

type CameraInput struct {
	Name        string               `json:"name"`
	Brand       string               `json:"brand"`
	Description string               `json:"description"`
	SerialNo    string               `json:"serial_no"`
	Deposit     int64                `json:"deposit"`
	Status      domain.CameraStatus  `json:"status"`
	Tiers       []domain.PricingTier `json:"pricing_tiers"`
}

type CameraService struct {
	Cameras *repos.CameraRepo
}

func NewCameraService(cameras *repos.CameraRepo) *CameraService {
	return &CameraService{Cameras: cameras}
}

func (s *CameraService) List(status, q string) ([]domain.Camera, error) {
	if status != "" && !domain.CameraStatus(status).Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "must be draft or active"}
	}
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			return nil, domain.ValidationError{Field: "q", Msg: "invalid search query"}
		}
	}
	return s.Cameras.List(status, q)
}

func (s *CameraService) Get(id string) (domain.Camera, error) {
	return s.Cameras.Get(id)
}

func (s *CameraService) Create(in CameraInput) (domain.Camera, error) {
	c, err := cameraFromInput(in)
	if err != nil {
		return domain.Camera{}, err
	}
	c.ID = uuid.NewString()
	if err := s.Cameras.Create(&c); err != nil {
		return domain.Camera{}, err
	}
	return s.Cameras.Get(c.ID)
}

// Update replaces the camera and all of its pricing tiers.
func (s *CameraService) Update(id string, in CameraInput) (domain.Camera, error) {
	c, err := cameraFromInput(in)
	if err != nil {
		return domain.Camera{}, err
	}
	c.ID = id
	if err := s.Cameras.Update(&c); err != nil {
		return domain.Camera{}, err
	}
	return s.Cameras.Get(id)
}

func (s *CameraService) Delete(id string) error {
	open, err := s.Cameras.HasOpenReservations(id)
	if err != nil {
		return err
	}
	if open {
		return domain.ConflictError{Resource: "camera", Msg: "camera is part of an open reservation"}
	}
	return s.Cameras.Delete(id)
}

func cameraFromInput(in CameraInput) (domain.Camera, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Camera{}, domain.ValidationError{Field: "name", Msg: "required, at most 120 characters"}
	}
	brand, ok := validate.Optional(in.Brand, 60)
	if !ok {
		return domain.Camera{}, domain.ValidationError{Field: "brand", Msg: "at most 60 characters"}
	}
	desc, ok := validate.Optional(in.Description, 2000)
	if !ok {
		return domain.Camera{}, domain.ValidationError{Field: "description", Msg: "at most 2000 characters"}
	}
	serial, ok := validate.Optional(in.SerialNo, 60)
	if !ok {
		return domain.Camera{}, domain.ValidationError{Field: "serial_no", Msg: "at most 60 characters"}
	}
	if in.Deposit < 0 {
		return domain.Camera{}, domain.ValidationError{Field: "deposit", Msg: "must not be negative"}
	}
	status := in.Status
	if status == "" {
		status = domain.CameraDraft
	}
	if !status.Valid() {
		return domain.Camera{}, domain.ValidationError{Field: "status", Msg: "must be draft or active"}
	}
	if err := validateTiers(in.Tiers); err != nil {
		return domain.Camera{}, err
	}
	return domain.Camera{
		Name:        name,
		Brand:       brand,
		Description: desc,
		SerialNo:    serial,
		Deposit:     in.Deposit,
		Status:      status,
		Tiers:       in.Tiers,
	}, nil
}

func validateTiers(tiers []domain.PricingTier) error {
	for i, t := range tiers {
		field := fmt.Sprintf("pricing_tiers[%d]", i)
		if t.MinimumDays < 1 {
			return domain.ValidationError{Field: field, Msg: "minimum_days must be at least 1"}
		}
		if t.PricePerDay < 0 {
			return domain.ValidationError{Field: field, Msg: "price_per_day must not be negative"}
		}
	}
	return nil
}
