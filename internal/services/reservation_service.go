package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pujcovna/internal/docs"
	"pujcovna/internal/domain"
	"pujcovna/internal/events"
	applog "pujcovna/internal/log"
	"pujcovna/internal/metrics"
	"pujcovna/internal/rental"
	"pujcovna/internal/repos"
	"pujcovna/internal/validate"

	"github.com/google/uuid"
)

type ItemInput struct {
	Kind     domain.ItemKind `json:"kind"`
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
}

type ReservationInput struct {
	CustomerName   string                   `json:"customer_name"`
	CustomerEmail  string                   `json:"customer_email"`
	CustomerPhone  string                   `json:"customer_phone"`
	Street         string                   `json:"street"`
	City           string                   `json:"city"`
	Zip            string                   `json:"zip"`
	StartDate      string                   `json:"start_date"`
	EndDate        string                   `json:"end_date"`
	Status         domain.ReservationStatus `json:"status"`
	DeliveryMethod domain.DeliveryMethod    `json:"delivery_method"`
	Note           string                   `json:"note"`
	Items          []ItemInput              `json:"items"`
}

// Quote is a priced preview of a reservation that is not stored.
type Quote struct {
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	Days         int                      `json:"days"`
	Items        []domain.ReservationItem `json:"items"`
	TotalPrice   int64                    `json:"total_price"`
	DepositTotal int64                    `json:"deposit_total"`
	Unavailable  []string                 `json:"unavailable_camera_ids"`
}

// AvailableCamera is an active camera free for the whole range, priced for it.
type AvailableCamera struct {
	domain.Camera
	Days  int   `json:"days"`
	Price int64 `json:"price_for_range"`
}

type Dashboard struct {
	Today            string               `json:"today"`
	StatusCounts     map[string]int       `json:"status_counts"`
	UpcomingDispatch []domain.Reservation `json:"upcoming_dispatch"`
	ReturnsDue       []domain.Reservation `json:"returns_due"`
}

const (
	dispatchWindowDays = 7
	returnWindowDays   = 3
)

type ReservationService struct {
	Reservations *repos.ReservationRepo
	Cameras      *repos.CameraRepo
	Films        *repos.FilmRepo
	Accessories  *repos.AccessoryRepo
	Events       events.Publisher
	Currency     string
	Now          func() time.Time

	// availability check and write must not interleave
	writeMu sync.Mutex
}

func NewReservationService(res *repos.ReservationRepo, cams *repos.CameraRepo, films *repos.FilmRepo,
	accs *repos.AccessoryRepo, pub events.Publisher, currency string) *ReservationService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ReservationService{
		Reservations: res,
		Cameras:      cams,
		Films:        films,
		Accessories:  accs,
		Events:       pub,
		Currency:     currency,
		Now:          time.Now,
	}
}

// bookings loads every reservation that touches r, grouped per reservation.
func (s *ReservationService) bookings(r rental.DateRange) ([]rental.Booking, error) {
	rows, err := s.Reservations.BookingsOverlapping(r.StartString(), r.EndString())
	if err != nil {
		return nil, err
	}
	var out []rental.Booking
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.ReservationID]
		if !ok {
			br, err := rental.ParseDateRange(row.StartDate, row.EndDate)
			if err != nil {
				return nil, fmt.Errorf("reservation %s: %w", row.ReservationID, err)
			}
			out = append(out, rental.Booking{
				ID:     row.ReservationID,
				Range:  br,
				Status: domain.ReservationStatus(row.Status),
			})
			i = len(out) - 1
			index[row.ReservationID] = i
		}
		out[i].CameraIDs = append(out[i].CameraIDs, row.CameraID)
	}
	return out, nil
}

// AvailableCameras lists active cameras free for [start, end], ignoring the
// reservation excludeID (used while editing it).
func (s *ReservationService) AvailableCameras(start, end, excludeID string) ([]AvailableCamera, error) {
	r, err := rental.ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	cams, err := s.Cameras.ListActive()
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings(r)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cams))
	byID := make(map[string]domain.Camera, len(cams))
	for _, c := range cams {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}
	free, err := rental.FindAvailableCameras(ids, bookings, r, excludeID)
	if err != nil {
		return nil, err
	}
	days := r.Days()
	out := make([]AvailableCamera, 0, len(free))
	for _, id := range free {
		c := byID[id]
		price, err := rental.PriceForDuration(c.Tiers, days)
		if err != nil {
			return nil, err
		}
		out = append(out, AvailableCamera{Camera: c, Days: days, Price: price})
	}
	return out, nil
}

// Quote prices in without saving. Booked cameras are reported, not rejected.
func (s *ReservationService) Quote(in ReservationInput, excludeID string) (Quote, error) {
	r, err := rental.ParseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return Quote{}, err
	}
	items, total, deposit, err := s.priceItems(in.Items, r)
	if err != nil {
		return Quote{}, err
	}
	taken, err := s.occupied(r, cameraIDs(items), excludeID)
	if err != nil {
		return Quote{}, err
	}
	unavailable := make([]string, 0, len(taken))
	for _, id := range cameraIDs(items) {
		if _, ok := taken[id]; ok {
			unavailable = append(unavailable, id)
		}
	}
	return Quote{
		StartDate:    r.StartString(),
		EndDate:      r.EndString(),
		Days:         r.Days(),
		Items:        items,
		TotalPrice:   total,
		DepositTotal: deposit,
		Unavailable:  unavailable,
	}, nil
}

// occupied returns the subset of ids held by another booking, mapped to the
// holding reservation.
func (s *ReservationService) occupied(r rental.DateRange, ids []string, excludeID string) (map[string]string, error) {
	out := map[string]string{}
	if len(ids) == 0 {
		return out, nil
	}
	bookings, err := s.bookings(r)
	if err != nil {
		return nil, err
	}
	holders := rental.OccupiedCameras(bookings, r, excludeID)
	for _, id := range ids {
		if holder, ok := holders[id]; ok {
			out[id] = holder
		}
	}
	return out, nil
}

func (s *ReservationService) ensureAvailable(r rental.DateRange, ids []string, excludeID string) error {
	taken, err := s.occupied(r, ids, excludeID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if holder, ok := taken[id]; ok {
			metrics.ReservationConflicts.Inc()
			return domain.ConflictError{
				Resource: "reservation",
				Msg:      fmt.Sprintf("camera %s is already booked by reservation %s for %s", id, holder, r),
			}
		}
	}
	return nil
}

func cameraIDs(items []domain.ReservationItem) []string {
	var ids []string
	for _, it := range items {
		if it.Kind == domain.KindCamera {
			ids = append(ids, it.ItemID)
		}
	}
	return ids
}

// priceItems resolves and prices every line. Camera lines are priced through
// the tier table for the whole range; films and accessories per unit.
func (s *ReservationService) priceItems(in []ItemInput, r rental.DateRange) ([]domain.ReservationItem, int64, int64, error) {
	if len(in) == 0 {
		return nil, 0, 0, domain.ValidationError{Field: "items", Msg: "at least one item is required"}
	}
	days := r.Days()
	items := make([]domain.ReservationItem, 0, len(in))
	var total, deposit int64
	seenCam := map[string]struct{}{}

	for i, it := range in {
		field := fmt.Sprintf("items[%d]", i)
		id, ok := validate.ID(it.ItemID)
		if !ok {
			return nil, 0, 0, domain.ValidationError{Field: field, Msg: "invalid item_id"}
		}
		var line domain.ReservationItem
		switch it.Kind {
		case domain.KindCamera:
			if _, dup := seenCam[id]; dup {
				return nil, 0, 0, domain.ValidationError{Field: field, Msg: "camera listed twice"}
			}
			seenCam[id] = struct{}{}
			cam, err := s.Cameras.Get(id)
			if domain.IsNotFound(err) {
				return nil, 0, 0, domain.ValidationError{Field: field, Msg: "unknown camera " + id}
			}
			if err != nil {
				return nil, 0, 0, err
			}
			if cam.Status != domain.CameraActive {
				return nil, 0, 0, domain.ValidationError{Field: field, Msg: "camera " + id + " is not bookable"}
			}
			price, err := rental.PriceForDuration(cam.Tiers, days)
			if err != nil {
				return nil, 0, 0, err
			}
			line = domain.ReservationItem{
				Kind: domain.KindCamera, ItemID: id, Name: cam.Name,
				Quantity: 1, UnitPrice: price / int64(days), TotalPrice: price,
			}
			deposit += cam.Deposit
		case domain.KindFilm, domain.KindAccessory:
			if it.Quantity < 1 {
				return nil, 0, 0, domain.ValidationError{Field: field, Msg: "quantity must be at least 1"}
			}
			name, unit, err := s.unitPrice(it.Kind, id)
			if domain.IsNotFound(err) {
				return nil, 0, 0, domain.ValidationError{Field: field, Msg: fmt.Sprintf("unknown %s %s", it.Kind, id)}
			}
			if err != nil {
				return nil, 0, 0, err
			}
			line = domain.ReservationItem{
				Kind: it.Kind, ItemID: id, Name: name,
				Quantity: it.Quantity, UnitPrice: unit, TotalPrice: unit * int64(it.Quantity),
			}
		default:
			return nil, 0, 0, domain.ValidationError{Field: field, Msg: "kind must be camera, film or accessory"}
		}
		total += line.TotalPrice
		items = append(items, line)
	}
	return items, total, deposit, nil
}

func (s *ReservationService) unitPrice(kind domain.ItemKind, id string) (string, int64, error) {
	if kind == domain.KindFilm {
		f, err := s.Films.Get(id)
		return f.Name, f.Price, err
	}
	a, err := s.Accessories.Get(id)
	return a.Name, a.Price, err
}

// build validates the customer part of in and prices the items.
func (s *ReservationService) build(in ReservationInput) (domain.Reservation, rental.DateRange, error) {
	var res domain.Reservation
	var ok bool
	if res.CustomerName, ok = validate.Name(in.CustomerName); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "customer_name", Msg: "required, at most 120 characters"}
	}
	if res.CustomerEmail, ok = validate.Email(in.CustomerEmail); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "customer_email", Msg: "invalid email"}
	}
	if res.CustomerPhone, ok = validate.Phone(in.CustomerPhone); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "customer_phone", Msg: "invalid phone number"}
	}
	if res.Note, ok = validate.Optional(in.Note, 2000); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "note", Msg: "at most 2000 characters"}
	}

	res.DeliveryMethod = in.DeliveryMethod
	if res.DeliveryMethod == "" {
		res.DeliveryMethod = domain.DeliveryPickup
	}
	if res.DeliveryMethod != domain.DeliveryPickup && res.DeliveryMethod != domain.DeliveryShipping {
		return res, rental.DateRange{}, domain.ValidationError{Field: "delivery_method", Msg: "must be pickup or shipping"}
	}
	if res.Street, ok = validate.Optional(in.Street, 200); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "street", Msg: "at most 200 characters"}
	}
	if res.City, ok = validate.Optional(in.City, 100); !ok {
		return res, rental.DateRange{}, domain.ValidationError{Field: "city", Msg: "at most 100 characters"}
	}
	if in.Zip != "" {
		if res.Zip, ok = validate.Zip(in.Zip); !ok {
			return res, rental.DateRange{}, domain.ValidationError{Field: "zip", Msg: "expected five digits"}
		}
	}
	if res.DeliveryMethod == domain.DeliveryShipping && (res.Street == "" || res.City == "" || res.Zip == "") {
		return res, rental.DateRange{}, domain.ValidationError{Field: "street", Msg: "shipping needs street, city and zip"}
	}

	if in.Status != "" && !in.Status.Valid() {
		return res, rental.DateRange{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	res.Status = in.Status

	r, err := rental.ParseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return res, rental.DateRange{}, err
	}
	res.StartDate, res.EndDate = r.StartString(), r.EndString()

	items, total, deposit, err := s.priceItems(in.Items, r)
	if err != nil {
		return res, rental.DateRange{}, err
	}
	res.Items, res.TotalPrice, res.DepositTotal = items, total, deposit
	return res, r, nil
}

func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (domain.Reservation, error) {
	res, r, err := s.build(in)
	if err != nil {
		return domain.Reservation{}, err
	}
	if res.Status == "" {
		res.Status = domain.StatusNew
	}
	res.ID = uuid.NewString()

	s.writeMu.Lock()
	if res.Status != domain.StatusCanceled {
		if err := s.ensureAvailable(r, res.CameraIDs(), ""); err != nil {
			s.writeMu.Unlock()
			return domain.Reservation{}, err
		}
	}
	err = s.Reservations.Create(&res)
	s.writeMu.Unlock()
	if err != nil {
		return domain.Reservation{}, err
	}

	metrics.ReservationsTotal.WithLabelValues(string(res.Status)).Inc()
	saved, err := s.Reservations.Get(res.ID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if saved.Status == domain.StatusConfirmed {
		s.publishConfirmed(ctx, saved)
	}
	return saved, nil
}

// Update replaces the reservation, re-pricing every line. An empty status
// keeps the current one.
func (s *ReservationService) Update(ctx context.Context, id string, in ReservationInput) (domain.Reservation, error) {
	res, r, err := s.build(in)
	if err != nil {
		return domain.Reservation{}, err
	}
	res.ID = id

	s.writeMu.Lock()
	current, err := s.Reservations.Get(id)
	if err != nil {
		s.writeMu.Unlock()
		return domain.Reservation{}, err
	}
	if res.Status == "" {
		res.Status = current.Status
	}
	if res.Status != domain.StatusCanceled {
		if err := s.ensureAvailable(r, res.CameraIDs(), id); err != nil {
			s.writeMu.Unlock()
			return domain.Reservation{}, err
		}
	}
	err = s.Reservations.Update(&res)
	s.writeMu.Unlock()
	if err != nil {
		return domain.Reservation{}, err
	}

	saved, err := s.Reservations.Get(id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if current.Status != saved.Status {
		metrics.ReservationsTotal.WithLabelValues(string(saved.Status)).Inc()
		if saved.Status == domain.StatusConfirmed {
			s.publishConfirmed(ctx, saved)
		}
	}
	return saved, nil
}

// UpdateStatus moves a reservation to status. Leaving canceled re-checks
// that its cameras are still free.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, error) {
	if !status.Valid() {
		return domain.Reservation{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}

	s.writeMu.Lock()
	current, err := s.Reservations.Get(id)
	if err != nil {
		s.writeMu.Unlock()
		return domain.Reservation{}, err
	}
	if current.Status == status {
		s.writeMu.Unlock()
		return current, nil
	}
	if current.Status == domain.StatusCanceled {
		r, err := rental.ParseDateRange(current.StartDate, current.EndDate)
		if err == nil {
			err = s.ensureAvailable(r, current.CameraIDs(), id)
		}
		if err != nil {
			s.writeMu.Unlock()
			return domain.Reservation{}, err
		}
	}
	err = s.Reservations.UpdateStatus(id, status)
	s.writeMu.Unlock()
	if err != nil {
		return domain.Reservation{}, err
	}

	metrics.ReservationsTotal.WithLabelValues(string(status)).Inc()
	current.Status = status
	if status == domain.StatusConfirmed {
		s.publishConfirmed(ctx, current)
	}
	return s.Reservations.Get(id)
}

// publishConfirmed never fails the caller; the broker is best effort.
func (s *ReservationService) publishConfirmed(ctx context.Context, r domain.Reservation) {
	ev := events.ReservationConfirmed{
		ReservationID: r.ID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		TotalPrice:    r.TotalPrice,
		DepositTotal:  r.DepositTotal,
		Currency:      s.Currency,
		ConfirmedAt:   s.now(),
	}
	if err := s.Events.PublishReservationConfirmed(ctx, ev); err != nil {
		applog.WithFields(map[string]any{"reservation_id": r.ID}).WithError(err).Warn("reservation.confirmed.publish_failed")
	}
}

func (s *ReservationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *ReservationService) Get(id string) (domain.Reservation, error) {
	return s.Reservations.Get(id)
}

func (s *ReservationService) List(status string, limit int) ([]domain.Reservation, error) {
	if status != "" && !domain.ReservationStatus(status).Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	return s.Reservations.List(status, limit)
}

func (s *ReservationService) Delete(id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Reservations.Delete(id)
}

// Contract renders the rental contract PDF and its file name.
func (s *ReservationService) Contract(id string) ([]byte, string, error) {
	r, err := s.Reservations.Get(id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := docs.BuildContract(r, s.Currency)
	if err != nil {
		return nil, "", err
	}
	return pdf, docs.ContractFilename(r), nil
}

// Dashboard summarises the work for the days ahead of today.
func (s *ReservationService) Dashboard(today time.Time) (Dashboard, error) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from := day.Format(rental.DateLayout)

	counts, err := s.Reservations.StatusCounts()
	if err != nil {
		return Dashboard{}, err
	}
	byStatus := make(map[string]int, len(domain.ReservationStatuses))
	for _, st := range domain.ReservationStatuses {
		byStatus[string(st)] = 0
	}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}

	dispatch, err := s.Reservations.StartingBetween(from, day.AddDate(0, 0, dispatchWindowDays).Format(rental.DateLayout),
		domain.StatusConfirmed, domain.StatusReadyForDispatch)
	if err != nil {
		return Dashboard{}, err
	}
	returns, err := s.Reservations.EndingBetween(from, day.AddDate(0, 0, returnWindowDays).Format(rental.DateLayout),
		domain.StatusActive)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Today:            from,
		StatusCounts:     byStatus,
		UpcomingDispatch: nonNil(dispatch),
		ReturnsDue:       nonNil(returns),
	}, nil
}

func nonNil(rs []domain.Reservation) []domain.Reservation {
	if rs == nil {
		return []domain.Reservation{}
	}
	return rs
}
