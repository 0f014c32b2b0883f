// Package rental holds the reservation rules shared by every workflow that
// books cameras: inclusive date ranges, availability and tiered pricing.
// Everything here is pure and works on data the caller already fetched.
package rental

import (
	"strings"
	"time"

	"pujcovna/internal/domain"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar dates. A reservation occupies
// every day from Start through End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to UTC calendar dates and validates order.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: calendarDate(start), End: calendarDate(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD dates.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, domain.ValidationError{Field: "start_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, domain.ValidationError{Field: "end_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	return NewDateRange(s, e)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Days counts the calendar days covered, both ends included.
func (r DateRange) Days() int {
	return int(calendarDate(r.End).Sub(calendarDate(r.Start))/(24*time.Hour)) + 1
}

// Overlaps reports whether the two ranges share at least one day. Touching
// ends (one range ends the day the other starts) count as overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return !o.Start.After(r.End) && !o.End.Before(r.Start)
}

func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }
func (r DateRange) EndString() string   { return r.End.Format(DateLayout) }

func (r DateRange) String() string {
	return r.StartString() + ".." + r.EndString()
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
