package orders

import (
	"fmt"
	"strings"
	"time"
)

// Period restricts the listing to orders created within a trailing window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

var periodOrder = []Period{PeriodAll, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// Statuses lists the order statuses the backend filters on. The empty string
// means any status.
var Statuses = []string{"", "Submitted", "AwaitingValidation", "Confirmed", "Paid", "Shipped", "Cancelled"}

// ParsePeriod accepts a period name, case-insensitively. Empty means all.
func ParsePeriod(value string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(value)))
	if p == "" {
		return PeriodAll, nil
	}
	if !p.valid() {
		return "", fmt.Errorf("unknown period %q (want day, week, month, year or all)", value)
	}
	return p, nil
}

func (p Period) valid() bool {
	for _, known := range periodOrder {
		if p == known {
			return true
		}
	}
	return false
}

// Range returns the created-at window ending at now. Both bounds are zero for
// PeriodAll.
func (p Period) Range(now time.Time) (from, to time.Time) {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1), now
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now
	case PeriodMonth:
		return now.AddDate(0, -1, 0), now
	case PeriodYear:
		return now.AddDate(-1, 0, 0), now
	default:
		return time.Time{}, time.Time{}
	}
}

// Next returns the period after p, wrapping around.
func (p Period) Next() Period {
	for i, known := range periodOrder {
		if p == known {
			return periodOrder[(i+1)%len(periodOrder)]
		}
	}
	return PeriodAll
}

// Filter selects which buyer orders List fetches.
type Filter struct {
	Status string // empty means any status
	Period Period
}

// NextStatus returns the filter with the status after f.Status, wrapping
// around.
func (f Filter) NextStatus() Filter {
	for i, s := range Statuses {
		if strings.EqualFold(s, f.Status) {
			f.Status = Statuses[(i+1)%len(Statuses)]
			return f
		}
	}
	f.Status = ""
	return f
}

// NextPeriod returns the filter with the period after f.Period.
func (f Filter) NextPeriod() Filter {
	f.Period = f.Period.Next()
	return f
}

func (f Filter) normalize() (Filter, error) {
	p, err := ParsePeriod(string(f.Period))
	if err != nil {
		return Filter{}, err
	}
	f.Period = p
	f.Status = strings.TrimSpace(f.Status)
	return f, nil
}
