package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pujcovna/internal/domain"
)

type FilmRepo struct{ db *sqlx.DB }

func NewFilmRepo(db *sqlx.DB) *FilmRepo { return &FilmRepo{db: db} }

func (r *FilmRepo) List() ([]domain.Film, error) {
	var out []domain.Film
	err := r.db.Select(&out, `
		SELECT id, name, format, iso, price, stock, created_at, updated_at
		FROM films
		ORDER BY LOWER(name)`)
	return out, err
}

func (r *FilmRepo) Get(id string) (domain.Film, error) {
	var f domain.Film
	err := r.db.Get(&f, `
		SELECT id, name, format, iso, price, stock, created_at, updated_at
		FROM films WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Film{}, domain.NotFoundError{Resource: "film", Err: err}
	}
	return f, err
}

func (r *FilmRepo) Create(f *domain.Film) error {
	_, err := r.db.Exec(`
		INSERT INTO films(id, name, format, iso, price, stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, f.ID, f.Name, f.Format, f.ISO, f.Price, f.Stock)
	return err
}

func (r *FilmRepo) Update(f *domain.Film) error {
	res, err := r.db.Exec(`
		UPDATE films
		SET name = ?, format = ?, iso = ?, price = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, f.Name, f.Format, f.ISO, f.Price, f.Stock, f.ID)
	return affectedOrNotFound(res, err, "film")
}

// SetStock overwrites the on-hand quantity.
func (r *FilmRepo) SetStock(id string, qty int) error {
	res, err := r.db.Exec(`UPDATE films SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, qty, id)
	return affectedOrNotFound(res, err, "film")
}

func (r *FilmRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM films WHERE id = ?`, id)
	return affectedOrNotFound(res, err, "film")
}

func affectedOrNotFound(res sql.Result, err error, resource string) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
