package rental

import "pujcovna/internal/domain"

// Booking is the slice of a reservation that matters for availability.
type Booking struct {
	ID        string
	Range     DateRange
	Status    domain.ReservationStatus
	CameraIDs []string
}

// FindAvailableCameras returns the cameras from cameraIDs that no
// overlapping, non-canceled booking holds during r. excludeBookingID (if
// not empty) is ignored so a reservation being edited does not conflict
// with itself. Result order follows cameraIDs.
func FindAvailableCameras(cameraIDs []string, bookings []Booking, r DateRange, excludeBookingID string) ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	occupied := OccupiedCameras(bookings, r, excludeBookingID)

	out := make([]string, 0, len(cameraIDs))
	seen := make(map[string]struct{}, len(cameraIDs))
	for _, id := range cameraIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, taken := occupied[id]; !taken {
			out = append(out, id)
		}
	}
	return out, nil
}

// OccupiedCameras maps every camera held by a booking that conflicts with r
// to the id of the first such booking.
func OccupiedCameras(bookings []Booking, r DateRange, excludeBookingID string) map[string]string {
	occupied := make(map[string]string)
	for _, b := range bookings {
		if b.Status == domain.StatusCanceled {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if !b.Range.Overlaps(r) {
			continue
		}
		for _, id := range b.CameraIDs {
			if _, ok := occupied[id]; !ok {
				occupied[id] = b.ID
			}
		}
	}
	return occupied
}
