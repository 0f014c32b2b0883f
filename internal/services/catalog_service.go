package services

import (
	"pujcovna/internal/domain"
	"pujcovna/internal/repos"
	"pujcovna/internal/validate"

	"github.com/google/uuid"
)

type FilmInput struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	ISO    int    `json:"iso"`
	Price  int64  `json:"price"`
	Stock  int    `json:"stock"`
}

type AccessoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

// CatalogService manages the consumables and add-ons sold alongside rentals.
type CatalogService struct {
	Films       *repos.FilmRepo
	Accessories *repos.AccessoryRepo
}

func NewCatalogService(films *repos.FilmRepo, accs *repos.AccessoryRepo) *CatalogService {
	return &CatalogService{Films: films, Accessories: accs}
}

func (s *CatalogService) ListFilms() ([]domain.Film, error) { return s.Films.List() }

func (s *CatalogService) GetFilm(id string) (domain.Film, error) { return s.Films.Get(id) }

func (s *CatalogService) CreateFilm(in FilmInput) (domain.Film, error) {
	f, err := filmFromInput(in)
	if err != nil {
		return domain.Film{}, err
	}
	f.ID = uuid.NewString()
	if err := s.Films.Create(&f); err != nil {
		return domain.Film{}, err
	}
	return s.Films.Get(f.ID)
}

func (s *CatalogService) UpdateFilm(id string, in FilmInput) (domain.Film, error) {
	f, err := filmFromInput(in)
	if err != nil {
		return domain.Film{}, err
	}
	f.ID = id
	if err := s.Films.Update(&f); err != nil {
		return domain.Film{}, err
	}
	return s.Films.Get(id)
}

func (s *CatalogService) DeleteFilm(id string) error { return s.Films.Delete(id) }

func (s *CatalogService) SetFilmStock(id string, qty int) error {
	if qty < 0 {
		return domain.ValidationError{Field: "stock", Msg: "must not be negative"}
	}
	return s.Films.SetStock(id, qty)
}

func (s *CatalogService) ListAccessories() ([]domain.Accessory, error) { return s.Accessories.List() }

func (s *CatalogService) GetAccessory(id string) (domain.Accessory, error) {
	return s.Accessories.Get(id)
}

func (s *CatalogService) CreateAccessory(in AccessoryInput) (domain.Accessory, error) {
	a, err := accessoryFromInput(in)
	if err != nil {
		return domain.Accessory{}, err
	}
	a.ID = uuid.NewString()
	if err := s.Accessories.Create(&a); err != nil {
		return domain.Accessory{}, err
	}
	return s.Accessories.Get(a.ID)
}

func (s *CatalogService) UpdateAccessory(id string, in AccessoryInput) (domain.Accessory, error) {
	a, err := accessoryFromInput(in)
	if err != nil {
		return domain.Accessory{}, err
	}
	a.ID = id
	if err := s.Accessories.Update(&a); err != nil {
		return domain.Accessory{}, err
	}
	return s.Accessories.Get(id)
}

func (s *CatalogService) DeleteAccessory(id string) error { return s.Accessories.Delete(id) }

func (s *CatalogService) SetAccessoryStock(id string, qty int) error {
	if qty < 0 {
		return domain.ValidationError{Field: "stock", Msg: "must not be negative"}
	}
	return s.Accessories.SetStock(id, qty)
}

func filmFromInput(in FilmInput) (domain.Film, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Film{}, domain.ValidationError{Field: "name", Msg: "required, at most 120 characters"}
	}
	format, ok := validate.Optional(in.Format, 20)
	if !ok {
		return domain.Film{}, domain.ValidationError{Field: "format", Msg: "at most 20 characters"}
	}
	if in.ISO < 0 {
		return domain.Film{}, domain.ValidationError{Field: "iso", Msg: "must not be negative"}
	}
	if in.Price < 0 {
		return domain.Film{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if in.Stock < 0 {
		return domain.Film{}, domain.ValidationError{Field: "stock", Msg: "must not be negative"}
	}
	return domain.Film{Name: name, Format: format, ISO: in.ISO, Price: in.Price, Stock: in.Stock}, nil
}

func accessoryFromInput(in AccessoryInput) (domain.Accessory, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Accessory{}, domain.ValidationError{Field: "name", Msg: "required, at most 120 characters"}
	}
	desc, ok := validate.Optional(in.Description, 2000)
	if !ok {
		return domain.Accessory{}, domain.ValidationError{Field: "description", Msg: "at most 2000 characters"}
	}
	if in.Price < 0 {
		return domain.Accessory{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if in.Stock < 0 {
		return domain.Accessory{}, domain.ValidationError{Field: "stock", Msg: "must not be negative"}
	}
	return domain.Accessory{Name: name, Description: desc, Price: in.Price, Stock: in.Stock}, nil
}
