package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/domain"
	"pujcovna/internal/rental"
	"pujcovna/internal/repos"
	"pujcovna/internal/services"
)

func TestCameraService_ValidatesTiers(t *testing.T) {
	svc := services.NewCameraService(repos.NewCameraRepo(memdb(t)))

	cases := map[string][]domain.PricingTier{
		"zero minimum":   {{MinimumDays: 0, PricePerDay: 100}},
		"negative price": {{MinimumDays: 1, PricePerDay: -1}},
	}
	for name, tiers := range cases {
		_, err := svc.Create(services.CameraInput{Name: "Leica M6", Tiers: tiers})
		assert.True(t, domain.IsValidation(err), name)
	}

	_, err := svc.Create(services.CameraInput{Name: "Leica M6", Deposit: -5})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Create(services.CameraInput{Name: "Leica M6", Status: "retired"})
	assert.True(t, domain.IsValidation(err))
}

func TestCameraService_DuplicateTiersPriceByFirstListed(t *testing.T) {
	svc := services.NewCameraService(repos.NewCameraRepo(memdb(t)))

	c, err := svc.Create(services.CameraInput{
		Name:  "Leica M6",
		Tiers: []domain.PricingTier{{MinimumDays: 2, PricePerDay: 100}, {MinimumDays: 2, PricePerDay: 90}},
	})
	require.NoError(t, err)

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	require.Len(t, got.Tiers, 2)

	price, err := rental.PriceForDuration(got.Tiers, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(300), price)
}

func TestCameraService_CreateUpdate(t *testing.T) {
	svc := services.NewCameraService(repos.NewCameraRepo(memdb(t)))

	c, err := svc.Create(services.CameraInput{
		Name: "Leica M6", Brand: "Leica", Deposit: 2000000,
		Tiers: []domain.PricingTier{{MinimumDays: 1, PricePerDay: 90000}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CameraDraft, c.Status, "status defaults to draft")
	require.Len(t, c.Tiers, 1)

	c, err = svc.Update(c.ID, services.CameraInput{
		Name: "Leica M6 TTL", Status: domain.CameraActive,
		Tiers: []domain.PricingTier{{MinimumDays: 1, PricePerDay: 90000}, {MinimumDays: 4, PricePerDay: 70000}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Leica M6 TTL", c.Name)
	assert.Len(t, c.Tiers, 2)

	_, err = svc.Update("missing", services.CameraInput{Name: "x"})
	assert.True(t, domain.IsNotFound(err))
}

func TestCameraService_DeleteRefusedWhileBooked(t *testing.T) {
	rsvc, _, db := newReservationService(t)
	svc := services.NewCameraService(repos.NewCameraRepo(db))

	res, err := rsvc.Create(context.Background(), input("2025-06-10", "2025-06-12", camera("canon-ae1")))
	require.NoError(t, err)

	err = svc.Delete("canon-ae1")
	assert.True(t, domain.IsConflict(err))

	_, err = rsvc.UpdateStatus(context.Background(), res.ID, domain.StatusCanceled)
	require.NoError(t, err)
	require.NoError(t, svc.Delete("canon-ae1"))
}

func TestCatalogService_Films(t *testing.T) {
	db := memdb(t)
	svc := services.NewCatalogService(repos.NewFilmRepo(db), repos.NewAccessoryRepo(db))

	f, err := svc.CreateFilm(services.FilmInput{Name: "Fomapan 100", Format: "35mm", ISO: 100, Price: 15000, Stock: 4})
	require.NoError(t, err)
	require.NoError(t, svc.SetFilmStock(f.ID, 10))
	f, err = svc.GetFilm(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.Stock)

	_, err = svc.CreateFilm(services.FilmInput{Name: "", Price: 1})
	assert.True(t, domain.IsValidation(err))
	assert.True(t, domain.IsValidation(svc.SetAccessoryStock("strap-leather", -1)))

	films, err := svc.ListFilms()
	require.NoError(t, err)
	assert.Len(t, films, 4)
}
