package domain

import (
	"time"
)

// DateLayout is the calendar date format accepted in query strings.
const DateLayout = "2006-01-02"

// Period is an optional, inclusive range of calendar days in UTC.
// A nil bound means the range is open on that side.
type Period struct {
	From *time.Time
	To   *time.Time
}

// ParsePeriod parses YYYY-MM-DD bounds; empty strings leave a side open.
func ParsePeriod(from, to string) (Period, error) {
	var p Period

	if from != "" {
		d, err := time.ParseInLocation(DateLayout, from, time.UTC)
		if err != nil {
			return Period{}, NewDomainError(ErrInvalidDate, "expected YYYY-MM-DD", from)
		}
		p.From = &d
	}

	if to != "" {
		d, err := time.ParseInLocation(DateLayout, to, time.UTC)
		if err != nil {
			return Period{}, NewDomainError(ErrInvalidDate, "expected YYYY-MM-DD", to)
		}
		p.To = &d
	}

	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return Period{}, NewDomainError(ErrInvalidDate, "date_to is before date_from", "")
	}

	return p, nil
}

// Start returns the first instant included in the period (00:00:00 of From).
func (p Period) Start() (time.Time, bool) {
	if p.From == nil {
		return time.Time{}, false
	}
	return startOfDay(*p.From), true
}

// End returns the first instant after the period: midnight following To.
// A timestamp t is inside the period when t < End, so 23:59:59.999 of To
// is still included.
func (p Period) End() (time.Time, bool) {
	if p.To == nil {
		return time.Time{}, false
	}
	return startOfDay(*p.To).AddDate(0, 0, 1), true
}

// IsOpen returns true when neither bound is set.
func (p Period) IsOpen() bool {
	return p.From == nil && p.To == nil
}

// Label renders the period for humans, e.g. "05/01/2024 - 31/01/2024".
func (p Period) Label() string {
	const layout = "02/01/2006"
	switch {
	case p.IsOpen():
		return "All history"
	case p.From == nil:
		return "Until " + p.To.Format(layout)
	case p.To == nil:
		return "Since " + p.From.Format(layout)
	default:
		return p.From.Format(layout) + " - " + p.To.Format(layout)
	}
}

// Slug renders the period for file names, e.g. "2024-01-05_2024-01-31".
func (p Period) Slug() string {
	from, to := "start", "now"
	if p.From != nil {
		from = p.From.Format(DateLayout)
	}
	if p.To != nil {
		to = p.To.Format(DateLayout)
	}
	return from + "_" + to
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
