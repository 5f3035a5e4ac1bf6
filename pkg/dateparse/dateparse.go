// Package dateparse turns the date text rendered next to activity log items
// into calendar dates. The remote surface is inconsistent: exact dates
// ("November 3, 2020"), year-less dates ("November 3"), and relative terms
// ("2 years ago", "Yesterday") all appear. Relative and year-less forms are
// resolved against a caller-supplied reference date, preferring the past.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	errs "fbsweep/pkg/errors"
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	timeSuffixRe   = regexp.MustCompile(`(?i)\s+at\s+\d{1,2}:\d{2}\s*(am|pm)?\s*$`)
	relativeRe     = regexp.MustCompile(`(?i)^(\d+)\s+(year|month|week|day|hour)s?\s+ago$`)
	monthDayYearRe = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2}),\s*(\d{4})$`)
	monthDayRe     = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2})$`)
	isoRe          = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// Parse resolves a display date string to a calendar date (midnight UTC).
// Time-of-day suffixes are parsed and discarded; comparisons downstream are
// by calendar date only.
func Parse(text string, reference time.Time) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, errs.New(errs.ErrorTypeParsing, "empty date text")
	}
	s = timeSuffixRe.ReplaceAllString(s, "")
	lower := strings.ToLower(s)

	switch lower {
	case "today", "just now":
		return dateOnly(reference), nil
	case "yesterday":
		return dateOnly(reference.AddDate(0, 0, -1)), nil
	}

	if m := relativeRe.FindStringSubmatch(lower); m != nil {
		return relative(m, reference)
	}
	if m := isoRe.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return mkDate(year, time.Month(month), day)
	}
	if m := monthDayYearRe.FindStringSubmatch(lower); m != nil {
		month, ok := months[m[1]]
		if !ok {
			return time.Time{}, errs.New(errs.ErrorTypeParsing, "unknown month %q in %q", m[1], text)
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return mkDate(year, month, day)
	}
	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		month, ok := months[m[1]]
		if !ok {
			return time.Time{}, errs.New(errs.ErrorTypeParsing, "unknown month %q in %q", m[1], text)
		}
		day, _ := strconv.Atoi(m[2])
		// No year: use the reference year, rolling back one year when that
		// would land in the future (the log never shows future dates).
		parsed, err := mkDate(reference.Year(), month, day)
		if err != nil {
			return time.Time{}, err
		}
		if parsed.After(dateOnly(reference)) {
			parsed = parsed.AddDate(-1, 0, 0)
		}
		return parsed, nil
	}

	return time.Time{}, errs.New(errs.ErrorTypeParsing, "unparseable date text %q", text)
}

func relative(m []string, reference time.Time) (time.Time, error) {
	n, _ := strconv.Atoi(m[1])
	ref := dateOnly(reference)
	switch strings.ToLower(m[2]) {
	case "year":
		return ref.AddDate(-n, 0, 0), nil
	case "month":
		return ref.AddDate(0, -n, 0), nil
	case "week":
		return ref.AddDate(0, 0, -7*n), nil
	case "day":
		return ref.AddDate(0, 0, -n), nil
	case "hour":
		return dateOnly(reference.Add(-time.Duration(n) * time.Hour)), nil
	}
	return time.Time{}, errs.New(errs.ErrorTypeParsing, "unknown relative unit %q", m[2])
}

func mkDate(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. February 30), which would silently
	// accept garbage; reject anything that did not round-trip.
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, errs.New(errs.ErrorTypeParsing, "invalid calendar date %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
