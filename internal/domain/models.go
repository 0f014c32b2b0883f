package domain

// Money amounts are integer minor units (haléře / cents).

type CameraStatus string

const (
	CameraDraft  CameraStatus = "draft"
	CameraActive CameraStatus = "active"
)

func (s CameraStatus) Valid() bool { return s == CameraDraft || s == CameraActive }

type Camera struct {
	ID          string        `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Brand       string        `db:"brand" json:"brand"`
	Description string        `db:"description" json:"description"`
	SerialNo    string        `db:"serial_no" json:"serial_no"`
	Deposit     int64         `db:"deposit" json:"deposit"`
	Status      CameraStatus  `db:"status" json:"status"` // draft | active
	CreatedAt   string        `db:"created_at" json:"created_at"`
	UpdatedAt   string        `db:"updated_at" json:"updated_at"`
	Tiers       []PricingTier `db:"-" json:"pricing_tiers"`
}

// PricingTier is a volume-discount band: stays of at least MinimumDays pay PricePerDay.
type PricingTier struct {
	CameraID    string `db:"camera_id" json:"-"`
	MinimumDays int    `db:"minimum_days" json:"minimum_days"`
	PricePerDay int64  `db:"price_per_day" json:"price_per_day"`
}

type Film struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Format    string `db:"format" json:"format"` // 35mm | 120 | instax ...
	ISO       int    `db:"iso" json:"iso"`
	Price     int64  `db:"price" json:"price"`
	Stock     int    `db:"stock" json:"stock"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

type Accessory struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Price       int64  `db:"price" json:"price"`
	Stock       int    `db:"stock" json:"stock"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at"`
}

type ReservationStatus string

const (
	StatusNew              ReservationStatus = "new"
	StatusConfirmed        ReservationStatus = "confirmed"
	StatusReadyForDispatch ReservationStatus = "ready_for_dispatch"
	StatusActive           ReservationStatus = "active"
	StatusReturned         ReservationStatus = "returned"
	StatusCompleted        ReservationStatus = "completed"
	StatusCanceled         ReservationStatus = "canceled"
)

var ReservationStatuses = []ReservationStatus{
	StatusNew, StatusConfirmed, StatusReadyForDispatch, StatusActive,
	StatusReturned, StatusCompleted, StatusCanceled,
}

func (s ReservationStatus) Valid() bool {
	for _, v := range ReservationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "shipping"
)

type ItemKind string

const (
	KindCamera    ItemKind = "camera"
	KindFilm      ItemKind = "film"
	KindAccessory ItemKind = "accessory"
)

type Reservation struct {
	ID             string            `db:"id" json:"id"`
	CustomerName   string            `db:"customer_name" json:"customer_name"`
	CustomerEmail  string            `db:"customer_email" json:"customer_email"`
	CustomerPhone  string            `db:"customer_phone" json:"customer_phone"`
	Street         string            `db:"street" json:"street"`
	City           string            `db:"city" json:"city"`
	Zip            string            `db:"zip" json:"zip"`
	StartDate      string            `db:"start_date" json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate        string            `db:"end_date" json:"end_date"`     // YYYY-MM-DD, inclusive
	Status         ReservationStatus `db:"status" json:"status"`
	DeliveryMethod DeliveryMethod    `db:"delivery_method" json:"delivery_method"`
	Note           string            `db:"note" json:"note"`
	TotalPrice     int64             `db:"total_price" json:"total_price"`
	DepositTotal   int64             `db:"deposit_total" json:"deposit_total"`
	InvoiceID      string            `db:"invoice_id" json:"invoice_id,omitempty"`
	InvoiceNumber  string            `db:"invoice_number" json:"invoice_number,omitempty"`
	TrackingNumber string            `db:"tracking_number" json:"tracking_number,omitempty"`
	LabelURL       string            `db:"label_url" json:"label_url,omitempty"`
	CreatedAt      string            `db:"created_at" json:"created_at"`
	UpdatedAt      string            `db:"updated_at" json:"updated_at"`
	Items          []ReservationItem `db:"-" json:"items"`
}

// CameraIDs returns the ids of the camera lines in item order.
func (r Reservation) CameraIDs() []string {
	var ids []string
	for _, it := range r.Items {
		if it.Kind == KindCamera {
			ids = append(ids, it.ItemID)
		}
	}
	return ids
}

type ReservationItem struct {
	ReservationID string   `db:"reservation_id" json:"-"`
	Position      int      `db:"position" json:"-"`
	Kind          ItemKind `db:"kind" json:"kind"`
	ItemID        string   `db:"item_id" json:"item_id"`
	Name          string   `db:"name" json:"name"`
	Quantity      int      `db:"quantity" json:"quantity"`
	UnitPrice     int64    `db:"unit_price" json:"unit_price"`
	TotalPrice    int64    `db:"total_price" json:"total_price"`
}
