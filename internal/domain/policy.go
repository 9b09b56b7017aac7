package domain

import (
	"fmt"
	"strings"
	"time"
)

// YearRange selects how the end year of a request is interpreted.
type YearRange int

const (
	// ExclusiveEndYear covers StartYear up to, but not including, EndYear.
	ExclusiveEndYear YearRange = iota
	// InclusiveEndYear covers StartYear through EndYear.
	InclusiveEndYear
)

func (y YearRange) String() string {
	switch y {
	case ExclusiveEndYear:
		return "exclusive"
	case InclusiveEndYear:
		return "inclusive"
	default:
		return fmt.Sprintf("YearRange(%d)", int(y))
	}
}

// DateCheck selects how day/month combinations beyond the month length are handled.
type DateCheck int

const (
	// TrustSourceBounds relies on the grid leaving impossible dates blank;
	// any that carry a value are excluded when the date is built.
	TrustSourceBounds DateCheck = iota
	// StrictCalendarCheck drops day 31 of 30-day months and days past 29 of
	// February before dates are built.
	StrictCalendarCheck
)

func (d DateCheck) String() string {
	switch d {
	case TrustSourceBounds:
		return "trust-source-bounds"
	case StrictCalendarCheck:
		return "strict"
	default:
		return fmt.Sprintf("DateCheck(%d)", int(d))
	}
}

// DatePolicy combines the year range and date check of a normalization.
type DatePolicy struct {
	Years YearRange `json:"year_range"`
	Dates DateCheck `json:"date_check"`
}

// DefaultPolicy is the exclusive-end, trust-source-bounds policy.
func DefaultPolicy() DatePolicy {
	return DatePolicy{Years: ExclusiveEndYear, Dates: TrustSourceBounds}
}

// BoundedPolicy is the inclusive-end policy with explicit month bounds.
func BoundedPolicy() DatePolicy {
	return DatePolicy{Years: InclusiveEndYear, Dates: StrictCalendarCheck}
}

func (p DatePolicy) String() string {
	return p.Years.String() + "/" + p.Dates.String()
}

// MarshalText implements encoding.TextMarshaler.
func (y YearRange) MarshalText() ([]byte, error) { return []byte(y.String()), nil }

// MarshalText implements encoding.TextMarshaler.
func (d DateCheck) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// YearCount returns how many years the policy assigns between start and end.
func (p DatePolicy) YearCount(start, end int) int {
	n := end - start
	if p.Years == InclusiveEndYear {
		n++
	}
	return n
}

// ParseYearRange accepts "exclusive" or "inclusive". Empty selects exclusive.
func ParseYearRange(s string) (YearRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclusive":
		return ExclusiveEndYear, nil
	case "inclusive":
		return InclusiveEndYear, nil
	default:
		return 0, fmt.Errorf("unknown year range %q", s)
	}
}

// ParseDateCheck accepts "trust-source-bounds" (or "trust") and "strict".
// Empty selects trust-source-bounds.
func ParseDateCheck(s string) (DateCheck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trust", "trust-source-bounds":
		return TrustSourceBounds, nil
	case "strict":
		return StrictCalendarCheck, nil
	default:
		return 0, fmt.Errorf("unknown date check %q", s)
	}
}

// ParsePolicy builds a DatePolicy from its two textual halves.
func ParsePolicy(yearRange, dateCheck string) (DatePolicy, error) {
	years, err := ParseYearRange(yearRange)
	if err != nil {
		return DatePolicy{}, err
	}
	dates, err := ParseDateCheck(dateCheck)
	if err != nil {
		return DatePolicy{}, err
	}
	return DatePolicy{Years: years, Dates: dates}, nil
}

// withinMonthBounds applies the explicit bounds filter: day 31 is rejected in
// April, June, September and November, days past 29 in February. Leap years
// are left to date construction.
func withinMonthBounds(month time.Month, day int) bool {
	switch month {
	case time.April, time.June, time.September, time.November:
		return day <= 30
	case time.February:
		return day <= 29
	default:
		return true
	}
}

// calendarDate builds the UTC date for year/month/day, reporting false when
// the combination does not exist instead of normalizing it into the next month.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
