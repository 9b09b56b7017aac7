package domain

import (
	"strings"
	"time"
)

// MonthsPerRow is the number of month columns following the day label.
const MonthsPerRow = 12

// RowsPerYear is the number of data rows each year occupies in a grid,
// independent of the real month lengths.
const RowsPerYear = 31

// RawGridRow is one row of a day-by-month grid as read from the source file.
type RawGridRow struct {
	Line   int // 1-based source line, 0 when unknown
	Day    string
	Months [MonthsPerRow]string
}

// NewRawGridRow builds a row from positional cells: day label first, then
// months 01..12. Missing trailing cells are left empty and extra cells ignored.
func NewRawGridRow(line int, cells []string) RawGridRow {
	row := RawGridRow{Line: line}
	if len(cells) > 0 {
		row.Day = strings.TrimSpace(cells[0])
	}
	for i := 0; i < MonthsPerRow && i+1 < len(cells); i++ {
		row.Months[i] = strings.TrimSpace(cells[i+1])
	}
	return row
}

// Column returns the cell at grid column i (0 is the day label, 1..12 the
// months). Out-of-range columns read as empty.
func (r RawGridRow) Column(i int) string {
	switch {
	case i == 0:
		return r.Day
	case i >= 1 && i <= MonthsPerRow:
		return r.Months[i-1]
	default:
		return ""
	}
}

// IsEmpty reports whether every cell of the row is blank.
func (r RawGridRow) IsEmpty() bool {
	if strings.TrimSpace(r.Day) != "" {
		return false
	}
	for _, v := range r.Months {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Record is one dated observation of the normalized series.
type Record struct {
	Date  time.Time
	Value float64
}

// DateString formats the record date as YYYY-MM-DD.
func (r Record) DateString() string {
	return r.Date.Format(time.DateOnly)
}

// NormalizeRequest carries the per-grid parameters of a normalization.
type NormalizeRequest struct {
	Variable    string // label attached to the measurement, e.g. "rainfall"
	VariableTag string // sub-header tag marking noise rows, e.g. "PLUVI"; empty disables the filter
	StartYear   int
	EndYear     int
}

// Stats summarizes what a normalization kept and dropped.
type Stats struct {
	RowsRead    int `json:"rows_read"`
	NoiseRows   int `json:"noise_rows"`
	DataRows    int `json:"data_rows"`
	Records     int `json:"records"`
	Empty       int `json:"empty"`
	Missing     int `json:"missing"`
	OutOfBounds int `json:"out_of_bounds"`
	InvalidDate int `json:"invalid_date"`
}

// Exclusions returns the excluded cell counts keyed by reason.
func (s Stats) Exclusions() map[string]int {
	return map[string]int{
		"empty":         s.Empty,
		"missing":       s.Missing,
		"out_of_bounds": s.OutOfBounds,
		"invalid_date":  s.InvalidDate,
	}
}

// Series is the tidy (date, value) output of a normalization, in
// chronological order with at most one record per date.
type Series struct {
	Variable string
	Policy   DatePolicy
	Records  []Record
	Stats    Stats

	// InvalidDates lists the non-empty cells excluded because their date
	// could not be built, in grid order. Each wraps ErrInvalidDate.
	InvalidDates []*CellError
}
