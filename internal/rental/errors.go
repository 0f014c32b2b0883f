package rental

import (
	"errors"
	"fmt"
	"time"
)

// InvalidRangeError is returned when a date range starts after it ends.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

// InvalidDurationError is returned for rental durations shorter than one day.
type InvalidDurationError struct {
	Days int
}

func (e InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid rental duration: %d days (must be at least 1)", e.Days)
}

func IsInvalidRange(err error) bool {
	var target InvalidRangeError
	return errors.As(err, &target)
}

func IsInvalidDuration(err error) bool {
	var target InvalidDurationError
	return errors.As(err, &target)
}
