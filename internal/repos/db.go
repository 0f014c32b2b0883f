package repos

import (
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "pujcovna/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite: one writer, and ":memory:" is per connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure staff accounts exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Cameras
CREATE TABLE IF NOT EXISTS cameras(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  serial_no TEXT NOT NULL DEFAULT '',
  deposit INTEGER NOT NULL DEFAULT 0 CHECK (deposit >= 0),
  status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','active')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cameras_status ON cameras(status);
CREATE INDEX IF NOT EXISTS idx_cameras_name   ON cameras(LOWER(name));

-- Pricing tiers (replaced wholesale on every camera save)
CREATE TABLE IF NOT EXISTS camera_pricing_tiers(
  camera_id TEXT NOT NULL REFERENCES cameras(id) ON DELETE CASCADE,
  minimum_days INTEGER NOT NULL CHECK (minimum_days >= 1),
  price_per_day INTEGER NOT NULL CHECK (price_per_day >= 0)
);
CREATE INDEX IF NOT EXISTS idx_tiers_camera ON camera_pricing_tiers(camera_id);

-- Films
CREATE TABLE IF NOT EXISTS films(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  format TEXT NOT NULL DEFAULT '',
  iso INTEGER NOT NULL DEFAULT 0,
  price INTEGER NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);

-- Accessories
CREATE TABLE IF NOT EXISTS accessories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);

-- Reservations
CREATE TABLE IF NOT EXISTS reservations(
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL DEFAULT '',
  street TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  zip TEXT NOT NULL DEFAULT '',
  start_date TEXT NOT NULL,       -- YYYY-MM-DD inclusive
  end_date TEXT NOT NULL,         -- YYYY-MM-DD inclusive
  status TEXT NOT NULL DEFAULT 'new' CHECK (status IN
    ('new','confirmed','ready_for_dispatch','active','returned','completed','canceled')),
  delivery_method TEXT NOT NULL DEFAULT 'pickup' CHECK (delivery_method IN ('pickup','shipping')),
  note TEXT NOT NULL DEFAULT '',
  total_price INTEGER NOT NULL DEFAULT 0,
  deposit_total INTEGER NOT NULL DEFAULT 0,
  invoice_id TEXT NOT NULL DEFAULT '',
  invoice_number TEXT NOT NULL DEFAULT '',
  tracking_number TEXT NOT NULL DEFAULT '',
  label_url TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT '',
  CHECK (start_date <= end_date)
);
CREATE INDEX IF NOT EXISTS idx_reservations_dates  ON reservations(start_date, end_date);
CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status);

CREATE TABLE IF NOT EXISTS reservation_items(
  reservation_id TEXT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('camera','film','accessory')),
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price INTEGER NOT NULL,
  total_price INTEGER NOT NULL,
  PRIMARY KEY (reservation_id, position)
);
CREATE INDEX IF NOT EXISTS idx_reservation_items_item ON reservation_items(kind, item_id);

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('STAFF','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a small catalogue if there are no cameras yet.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM cameras`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.WithFields(nil).Info("[seed] inserting demo cameras/films/accessories")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO cameras(id,name,brand,description,serial_no,deposit,status) VALUES
	  ('olympus-mju-ii','Olympus mju-II','Olympus','35mm compact, 35mm f/2.8','OLY-1001',300000,'active'),
	  ('canon-ae1','Canon AE-1 Program','Canon','35mm SLR with FD 50mm f/1.8','CAN-2044',500000,'active'),
	  ('mamiya-rb67','Mamiya RB67','Mamiya','Medium format 6x7 with 90mm','MAM-0007',1200000,'draft')`)

	tx.MustExec(`INSERT INTO camera_pricing_tiers(camera_id,minimum_days,price_per_day) VALUES
	  ('olympus-mju-ii',1,25000),('olympus-mju-ii',3,20000),('olympus-mju-ii',7,15000),
	  ('canon-ae1',1,30000),('canon-ae1',5,22000),
	  ('mamiya-rb67',2,60000)`)

	tx.MustExec(`INSERT INTO films(id,name,format,iso,price,stock) VALUES
	  ('portra-400','Kodak Portra 400','35mm',400,42000,20),
	  ('hp5-plus','Ilford HP5 Plus','35mm',400,22000,35),
	  ('ektar-120','Kodak Ektar 100','120',100,38000,10)`)

	tx.MustExec(`INSERT INTO accessories(id,name,description,price,stock) VALUES
	  ('strap-leather','Leather strap','Brown leather neck strap',5000,6),
	  ('flash-sb','Compact flash','Hot-shoe flash with batteries',15000,3)`)

	return tx.Commit()
}

// seedUsers ensures one STAFF and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-staff", "staff@pujcovna.test", "Staff", "STAFF", "Passw0rd!"),
		mk("u-admin", "admin@pujcovna.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
