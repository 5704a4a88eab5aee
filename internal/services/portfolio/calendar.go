package portfolio

import (
	"time"

	"github.com/pkg/errors"
)

// Rebalance periods are weekly and end on Friday, because the price inputs
// are Friday closes. A trade disclosed on day D belongs to the period whose
// Friday is the first Friday on or after D.

// PeriodEnd returns the Friday that closes the period containing date.
func PeriodEnd(date time.Time) time.Time {
	d := date.Truncate(24 * time.Hour)
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// PeriodStart returns the first day of the period ending on end (the
// preceding Saturday).
func PeriodStart(end time.Time) time.Time {
	return end.AddDate(0, 0, -6)
}

// PeriodEnds returns every period-end Friday covering [from, to], in order.
// The sequence is gap-free: weeks with no trades still get a period.
func PeriodEnds(from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, errors.Errorf("period range end %s before start %s",
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	var ends []time.Time
	for end := PeriodEnd(from); !end.After(PeriodEnd(to)); end = end.AddDate(0, 0, 7) {
		ends = append(ends, end)
	}
	return ends, nil
}
