package models

import (
	"fmt"
	"time"
)

// Period is a (year, month) traversal unit in the activity log.
// Traversal runs over periods in descending order, newest first.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// TrashPeriod is the synthetic period used for the trash sweep that runs
// after the regular periods are exhausted.
var TrashPeriod = Period{}

// IsZero reports whether the period is unset (or the trash sentinel).
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Before reports whether p is chronologically before other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Prev returns the period one month earlier.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Reference returns the date against which relative display dates inside
// this period are resolved: the last day of the month, clamped to now so a
// current-month period never resolves into the future.
func (p Period) Reference(now time.Time) time.Time {
	if p.IsZero() {
		return now
	}
	endOfMonth := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
	if endOfMonth.After(now) {
		return now
	}
	return endOfMonth
}

func (p Period) String() string {
	if p.IsZero() {
		return "trash"
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Locator is an opaque, page-load-scoped reference to the on-page control
// that deletes an item. It is only valid for the page it was extracted from
// and must never be persisted.
type Locator struct {
	Href     string
	Selector string
}

// Item is one deletable entry extracted from an activity log page. ID is the
// remote-assigned identity key; DisplayDate is the calendar date parsed from
// the rendered date text.
type Item struct {
	ID          string
	Kind        string
	DisplayDate time.Time
	DateText    string
	Locator     Locator
}

// DateRange is an inclusive calendar date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the range is well formed.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range requires both start and end")
	}
	if truncate(r.End).Before(truncate(r.Start)) {
		return fmt.Errorf("date range start %s is after end %s",
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	return nil
}

// Contains reports whether t falls inside the range. Comparison is by
// calendar date only; any time-of-day component is ignored.
func (r DateRange) Contains(t time.Time) bool {
	d := truncate(t)
	return !d.Before(truncate(r.Start)) && !d.After(truncate(r.End))
}

// BeforeStart reports whether t is strictly before the range start, again
// comparing calendar dates only.
func (r DateRange) BeforeStart(t time.Time) bool {
	return truncate(t).Before(truncate(r.Start))
}

// Periods returns the (year, month) periods covering the range in
// descending order, newest first.
func (r DateRange) Periods() []Period {
	var periods []Period
	first := Period{Year: r.Start.Year(), Month: int(r.Start.Month())}
	p := Period{Year: r.End.Year(), Month: int(r.End.Month())}
	for !p.Before(first) {
		periods = append(periods, p)
		p = p.Prev()
	}
	return periods
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
