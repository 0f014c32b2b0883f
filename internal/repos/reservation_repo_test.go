package repos_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/domain"
	"pujcovna/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleReservation(id, start, end string, status domain.ReservationStatus, cameras ...string) *domain.Reservation {
	r := &domain.Reservation{
		ID:             id,
		CustomerName:   "Jana Novakova",
		CustomerEmail:  "jana@example.com",
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		DeliveryMethod: domain.DeliveryPickup,
	}
	for _, c := range cameras {
		r.Items = append(r.Items, domain.ReservationItem{
			Kind: domain.KindCamera, ItemID: c, Name: c, Quantity: 1, UnitPrice: 100, TotalPrice: 100,
		})
	}
	return r
}

func TestReservationRepo_CreateGetUpdate(t *testing.T) {
	db := memdb(t)
	repo := repos.NewReservationRepo(db)

	res := sampleReservation("r-1", "2025-06-01", "2025-06-03", domain.StatusNew, "cam-a", "cam-b")
	res.Items = append(res.Items, domain.ReservationItem{
		Kind: domain.KindFilm, ItemID: "portra-400", Name: "Portra", Quantity: 2, UnitPrice: 42000, TotalPrice: 84000,
	})
	require.NoError(t, repo.Create(res))

	got, err := repo.Get("r-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.StartDate)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "cam-a", got.Items[0].ItemID)
	assert.Equal(t, domain.KindFilm, got.Items[2].Kind)
	assert.Equal(t, []string{"cam-a", "cam-b"}, got.CameraIDs())

	// items are replaced, not merged
	got.Items = got.Items[1:2]
	got.EndDate = "2025-06-05"
	require.NoError(t, repo.Update(&got))

	again, err := repo.Get("r-1")
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, "cam-b", again.Items[0].ItemID)
	assert.Equal(t, "2025-06-05", again.EndDate)
	assert.NotEmpty(t, again.UpdatedAt)
}

func TestReservationRepo_NotFound(t *testing.T) {
	repo := repos.NewReservationRepo(memdb(t))

	_, err := repo.Get("missing")
	assert.True(t, domain.IsNotFound(err))

	err = repo.Update(sampleReservation("missing", "2025-01-01", "2025-01-02", domain.StatusNew))
	assert.True(t, domain.IsNotFound(err))

	assert.True(t, domain.IsNotFound(repo.UpdateStatus("missing", domain.StatusConfirmed)))
	assert.True(t, domain.IsNotFound(repo.Delete("missing")))
}

func TestReservationRepo_BookingsOverlapping(t *testing.T) {
	repo := repos.NewReservationRepo(memdb(t))
	require.NoError(t, repo.Create(sampleReservation("r-1", "2025-06-01", "2025-06-05", domain.StatusConfirmed, "cam-a")))
	require.NoError(t, repo.Create(sampleReservation("r-2", "2025-06-05", "2025-06-07", domain.StatusCanceled, "cam-b")))
	require.NoError(t, repo.Create(sampleReservation("r-3", "2025-06-08", "2025-06-09", domain.StatusNew, "cam-c")))

	rows, err := repo.BookingsOverlapping("2025-06-05", "2025-06-05")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r-1", rows[0].ReservationID)
	assert.Equal(t, "cam-a", rows[0].CameraID)
	assert.Equal(t, "canceled", rows[1].Status)

	rows, err = repo.BookingsOverlapping("2025-07-01", "2025-07-10")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReservationRepo_DashboardQueries(t *testing.T) {
	repo := repos.NewReservationRepo(memdb(t))
	require.NoError(t, repo.Create(sampleReservation("r-1", "2025-06-02", "2025-06-04", domain.StatusConfirmed, "cam-a")))
	require.NoError(t, repo.Create(sampleReservation("r-2", "2025-06-03", "2025-06-20", domain.StatusNew, "cam-b")))
	require.NoError(t, repo.Create(sampleReservation("r-3", "2025-05-20", "2025-06-01", domain.StatusActive, "cam-c")))

	counts, err := repo.StatusCounts()
	require.NoError(t, err)
	assert.Len(t, counts, 3)

	starting, err := repo.StartingBetween("2025-06-01", "2025-06-07", domain.StatusConfirmed, domain.StatusReadyForDispatch)
	require.NoError(t, err)
	require.Len(t, starting, 1)
	assert.Equal(t, "r-1", starting[0].ID)

	ending, err := repo.EndingBetween("2025-06-01", "2025-06-03", domain.StatusActive)
	require.NoError(t, err)
	require.Len(t, ending, 1)
	assert.Equal(t, "r-3", ending[0].ID)
}

func TestReservationRepo_SetInvoiceAndShipment(t *testing.T) {
	repo := repos.NewReservationRepo(memdb(t))
	require.NoError(t, repo.Create(sampleReservation("r-1", "2025-06-02", "2025-06-04", domain.StatusConfirmed, "cam-a")))

	require.NoError(t, repo.SetInvoice("r-1", "inv-9", "2025-0009"))
	require.NoError(t, repo.SetShipment("r-1", "TRK123", "https://labels.example/TRK123.pdf"))

	got, err := repo.Get("r-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-0009", got.InvoiceNumber)
	assert.Equal(t, "TRK123", got.TrackingNumber)
}

func TestReservationRepo_CreateRollsBackOnItemFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := repos.NewReservationRepo(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM reservation_items").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reservation_items").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = repo.Create(sampleReservation("r-1", "2025-06-01", "2025-06-02", domain.StatusNew, "cam-a"))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_UpdateMissingRollsBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := repos.NewReservationRepo(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Update(sampleReservation("gone", "2025-06-01", "2025-06-02", domain.StatusNew))
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
