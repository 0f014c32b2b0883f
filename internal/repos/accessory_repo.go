package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pujcovna/internal/domain"
)

type AccessoryRepo struct{ db *sqlx.DB }

func NewAccessoryRepo(db *sqlx.DB) *AccessoryRepo { return &AccessoryRepo{db: db} }

func (r *AccessoryRepo) List() ([]domain.Accessory, error) {
	var out []domain.Accessory
	err := r.db.Select(&out, `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM accessories
		ORDER BY LOWER(name)`)
	return out, err
}

func (r *AccessoryRepo) Get(id string) (domain.Accessory, error) {
	var a domain.Accessory
	err := r.db.Get(&a, `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM accessories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Accessory{}, domain.NotFoundError{Resource: "accessory", Err: err}
	}
	return a, err
}

func (r *AccessoryRepo) Create(a *domain.Accessory) error {
	_, err := r.db.Exec(`
		INSERT INTO accessories(id, name, description, price, stock, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, a.ID, a.Name, a.Description, a.Price, a.Stock)
	return err
}

func (r *AccessoryRepo) Update(a *domain.Accessory) error {
	res, err := r.db.Exec(`
		UPDATE accessories
		SET name = ?, description = ?, price = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, a.Name, a.Description, a.Price, a.Stock, a.ID)
	return affectedOrNotFound(res, err, "accessory")
}

func (r *AccessoryRepo) SetStock(id string, qty int) error {
	res, err := r.db.Exec(`UPDATE accessories SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, qty, id)
	return affectedOrNotFound(res, err, "accessory")
}

func (r *AccessoryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM accessories WHERE id = ?`, id)
	return affectedOrNotFound(res, err, "accessory")
}
