package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pujcovna/internal/domain"
)

type ReservationRepo struct{ db *sqlx.DB }

func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, customer_name, customer_email, customer_phone, street, city, zip,
	start_date, end_date, status, delivery_method, note, total_price, deposit_total,
	invoice_id, invoice_number, tracking_number, label_url, created_at, updated_at`

// BookingRow is one camera line of a reservation; several rows share a reservation id.
type BookingRow struct {
	ReservationID string `db:"reservation_id"`
	StartDate     string `db:"start_date"`
	EndDate       string `db:"end_date"`
	Status        string `db:"status"`
	CameraID      string `db:"camera_id"`
}

// Create inserts the header and its items in one transaction.
func (r *ReservationRepo) Create(res *domain.Reservation) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO reservations
	    (id, customer_name, customer_email, customer_phone, street, city, zip,
	     start_date, end_date, status, delivery_method, note, total_price, deposit_total, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, res.ID, res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Street, res.City, res.Zip,
		res.StartDate, res.EndDate, string(res.Status), string(res.DeliveryMethod), res.Note, res.TotalPrice, res.DepositTotal); err != nil {
		return err
	}
	if err := replaceItems(tx, res.ID, res.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the editable header fields and replaces every item.
// Invoice and shipment references are left alone.
func (r *ReservationRepo) Update(res *domain.Reservation) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.Exec(`
	  UPDATE reservations
	  SET customer_name = ?, customer_email = ?, customer_phone = ?, street = ?, city = ?, zip = ?,
	      start_date = ?, end_date = ?, status = ?, delivery_method = ?, note = ?,
	      total_price = ?, deposit_total = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Street, res.City, res.Zip,
		res.StartDate, res.EndDate, string(res.Status), string(res.DeliveryMethod), res.Note,
		res.TotalPrice, res.DepositTotal, res.ID)
	if err != nil {
		return err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "reservation"}
	}
	if err := replaceItems(tx, res.ID, res.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceItems(tx *sqlx.Tx, reservationID string, items []domain.ReservationItem) error {
	if _, err := tx.Exec(`DELETE FROM reservation_items WHERE reservation_id = ?`, reservationID); err != nil {
		return err
	}
	for i, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO reservation_items(reservation_id, position, kind, item_id, name, quantity, unit_price, total_price)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, reservationID, i, string(it.Kind), it.ItemID, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReservationRepo) Get(id string) (domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.Get(&res, `SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, domain.NotFoundError{Resource: "reservation", Err: err}
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := r.db.Select(&res.Items, `
		SELECT reservation_id, position, kind, item_id, name, quantity, unit_price, total_price
		FROM reservation_items
		WHERE reservation_id = ?
		ORDER BY position
	`, id); err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

// List returns headers only, newest first. status "" means all.
func (r *ReservationRepo) List(status string, limit int) ([]domain.Reservation, error) {
	if limit <= 0 {
		limit = 100
	}
	where := `1 = 1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	args = append(args, limit)
	var out []domain.Reservation
	err := r.db.Select(&out, `
		SELECT `+reservationCols+`
		FROM reservations
		WHERE `+where+`
		ORDER BY datetime(created_at) DESC, id
		LIMIT ?
	`, args...)
	return out, err
}

func (r *ReservationRepo) UpdateStatus(id string, status domain.ReservationStatus) error {
	res, err := r.db.Exec(`UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, string(status), id)
	return affectedOrNotFound(res, err, "reservation")
}

func (r *ReservationRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM reservations WHERE id = ?`, id)
	return affectedOrNotFound(res, err, "reservation")
}

// BookingsOverlapping returns the camera lines of every reservation whose
// period touches [start, end], canceled ones included.
func (r *ReservationRepo) BookingsOverlapping(start, end string) ([]BookingRow, error) {
	var out []BookingRow
	err := r.db.Select(&out, `
		SELECT r.id AS reservation_id, r.start_date, r.end_date, r.status, i.item_id AS camera_id
		FROM reservations r
		JOIN reservation_items i ON i.reservation_id = r.id AND i.kind = 'camera'
		WHERE r.start_date <= ? AND r.end_date >= ?
		ORDER BY r.id, i.position
	`, end, start)
	return out, err
}

func (r *ReservationRepo) SetInvoice(id, invoiceID, number string) error {
	res, err := r.db.Exec(`
		UPDATE reservations SET invoice_id = ?, invoice_number = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, invoiceID, number, id)
	return affectedOrNotFound(res, err, "reservation")
}

func (r *ReservationRepo) SetShipment(id, tracking, labelURL string) error {
	res, err := r.db.Exec(`
		UPDATE reservations SET tracking_number = ?, label_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, tracking, labelURL, id)
	return affectedOrNotFound(res, err, "reservation")
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"n" json:"count"`
}

func (r *ReservationRepo) StatusCounts() ([]StatusCount, error) {
	var out []StatusCount
	err := r.db.Select(&out, `SELECT status, COUNT(*) AS n FROM reservations GROUP BY status ORDER BY status`)
	return out, err
}

// StartingBetween lists reservations in one of statuses whose start date is in [from, to].
func (r *ReservationRepo) StartingBetween(from, to string, statuses ...domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.between("start_date", from, to, statuses)
}

// EndingBetween lists reservations in one of statuses whose end date is in [from, to].
func (r *ReservationRepo) EndingBetween(from, to string, statuses ...domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.between("end_date", from, to, statuses)
}

func (r *ReservationRepo) between(col, from, to string, statuses []domain.ReservationStatus) ([]domain.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	query, args, err := sqlx.In(`
		SELECT `+reservationCols+`
		FROM reservations
		WHERE `+col+` BETWEEN ? AND ? AND status IN (?)
		ORDER BY `+col+`, id`, from, to, names)
	if err != nil {
		return nil, err
	}
	var out []domain.Reservation
	err = r.db.Select(&out, r.db.Rebind(query), args...)
	return out, err
}
