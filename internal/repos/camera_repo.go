package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pujcovna/internal/domain"
)

type CameraRepo struct{ db *sqlx.DB }

func NewCameraRepo(db *sqlx.DB) *CameraRepo { return &CameraRepo{db: db} }

const cameraCols = `id, name, brand, description, serial_no, deposit, status, created_at, updated_at`

// List returns cameras ordered by name with their tiers. status "" means all.
func (r *CameraRepo) List(status string, q string) ([]domain.Camera, error) {
	where := `1 = 1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(brand) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	var out []domain.Camera
	if err := r.db.Select(&out, `SELECT `+cameraCols+` FROM cameras WHERE `+where+` ORDER BY LOWER(name)`, args...); err != nil {
		return nil, err
	}
	if err := r.attachTiers(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActive is the bookable fleet.
func (r *CameraRepo) ListActive() ([]domain.Camera, error) {
	return r.List(string(domain.CameraActive), "")
}

func (r *CameraRepo) Get(id string) (domain.Camera, error) {
	var c domain.Camera
	err := r.db.Get(&c, `SELECT `+cameraCols+` FROM cameras WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Camera{}, domain.NotFoundError{Resource: "camera", Err: err}
	}
	if err != nil {
		return domain.Camera{}, err
	}
	if err := r.db.Select(&c.Tiers, `
		SELECT camera_id, minimum_days, price_per_day
		FROM camera_pricing_tiers
		WHERE camera_id = ?
		ORDER BY minimum_days, rowid`, id); err != nil {
		return domain.Camera{}, err
	}
	return c, nil
}

func (r *CameraRepo) attachTiers(cams []domain.Camera) error {
	if len(cams) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cams))
	for _, c := range cams {
		ids = append(ids, c.ID)
	}
	query, args, err := sqlx.In(`
		SELECT camera_id, minimum_days, price_per_day
		FROM camera_pricing_tiers
		WHERE camera_id IN (?)
		ORDER BY camera_id, minimum_days, rowid`, ids)
	if err != nil {
		return err
	}
	var tiers []domain.PricingTier
	if err := r.db.Select(&tiers, r.db.Rebind(query), args...); err != nil {
		return err
	}
	byCam := make(map[string][]domain.PricingTier, len(cams))
	for _, t := range tiers {
		byCam[t.CameraID] = append(byCam[t.CameraID], t)
	}
	for i := range cams {
		cams[i].Tiers = byCam[cams[i].ID]
	}
	return nil
}

// Create inserts the camera and its tiers in one transaction.
func (r *CameraRepo) Create(c *domain.Camera) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO cameras(id, name, brand, description, serial_no, deposit, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ID, c.Name, c.Brand, c.Description, c.SerialNo, c.Deposit, string(c.Status)); err != nil {
		return err
	}
	if err := replaceTiers(tx, c.ID, c.Tiers); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the camera row and replaces every tier.
func (r *CameraRepo) Update(c *domain.Camera) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE cameras
		SET name = ?, brand = ?, description = ?, serial_no = ?, deposit = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.Brand, c.Description, c.SerialNo, c.Deposit, string(c.Status), c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "camera"}
	}
	if err := replaceTiers(tx, c.ID, c.Tiers); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceTiers(tx *sqlx.Tx, cameraID string, tiers []domain.PricingTier) error {
	if _, err := tx.Exec(`DELETE FROM camera_pricing_tiers WHERE camera_id = ?`, cameraID); err != nil {
		return err
	}
	for _, t := range tiers {
		if _, err := tx.Exec(`
			INSERT INTO camera_pricing_tiers(camera_id, minimum_days, price_per_day)
			VALUES (?, ?, ?)
		`, cameraID, t.MinimumDays, t.PricePerDay); err != nil {
			return err
		}
	}
	return nil
}

func (r *CameraRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM cameras WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "camera"}
	}
	return nil
}

// HasOpenReservations reports whether a non-canceled reservation still lists the camera.
func (r *CameraRepo) HasOpenReservations(id string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
		SELECT COUNT(*)
		FROM reservation_items i
		JOIN reservations r ON r.id = i.reservation_id
		WHERE i.kind = 'camera' AND i.item_id = ? AND r.status != 'canceled'
	`, id)
	return n > 0, err
}
