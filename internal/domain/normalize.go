package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Options configures a Normalizer.
type Options struct {
	Tokens TokenConfig
	Policy DatePolicy
}

// Normalizer reshapes day-by-month grids into dated series. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	tokens      TokenConfig
	policy      DatePolicy
	noise       map[string]struct{}
	missing     map[string]struct{}
	substitutes map[string]float64
}

// NewNormalizer builds a Normalizer from opts.
func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		tokens:      opts.Tokens,
		policy:      opts.Policy,
		noise:       make(map[string]struct{}, len(opts.Tokens.NoiseLabels)),
		missing:     make(map[string]struct{}, len(opts.Tokens.Missing)),
		substitutes: make(map[string]float64, len(opts.Tokens.Substitutes)),
	}
	for _, l := range opts.Tokens.NoiseLabels {
		n.noise[strings.TrimSpace(l)] = struct{}{}
	}
	for _, m := range opts.Tokens.Missing {
		n.missing[strings.TrimSpace(m)] = struct{}{}
	}
	for k, v := range opts.Tokens.Substitutes {
		n.substitutes[strings.TrimSpace(k)] = v
	}
	return n
}

// Policy returns the date policy the normalizer applies.
func (n *Normalizer) Policy() DatePolicy { return n.policy }

// candidate is one (year, month, day) cell of the reshaped grid.
type candidate struct {
	line  int
	year  int
	month time.Month
	day   string
	token string
}

// Normalize filters noise rows, assigns years by position, reshapes the grid
// into one candidate per month cell and returns the dated records.
func (n *Normalizer) Normalize(rows []RawGridRow, req NormalizeRequest) (Series, error) {
	series := Series{Variable: req.Variable, Policy: n.policy}
	series.Stats.RowsRead = len(rows)

	data := n.filterRows(rows, req.VariableTag)
	series.Stats.DataRows = len(data)
	series.Stats.NoiseRows = len(rows) - len(data)

	years := n.policy.YearCount(req.StartYear, req.EndYear)
	if years <= 0 {
		return Series{}, fmt.Errorf("%w: no years between %d and %d (%s)",
			ErrShapeMismatch, req.StartYear, req.EndYear, n.policy.Years)
	}
	if want := RowsPerYear * years; len(data) != want {
		return Series{}, fmt.Errorf("%w: %d data rows, want %d for %d years from %d",
			ErrShapeMismatch, len(data), want, years, req.StartYear)
	}

	records := make([]Record, 0, len(data)*MonthsPerRow)
	seen := make(map[time.Time]struct{}, len(data)*MonthsPerRow)
	for _, c := range reshape(data, req.StartYear) {
		rec, ok, err := n.resolve(c, &series)
		if err != nil {
			return Series{}, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[rec.Date]; dup {
			return Series{}, c.cellError(ErrDuplicateDate)
		}
		seen[rec.Date] = struct{}{}
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, b Record) int { return a.Date.Compare(b.Date) })

	series.Records = records
	series.Stats.Records = len(records)
	return series, nil
}

// filterRows drops empty rows, rows labelled with a noise token and the
// station/variable sub-header rows. Order is preserved. A row with a blank
// day label but data in it is kept and takes its slot in the year.
func (n *Normalizer) filterRows(rows []RawGridRow, variableTag string) []RawGridRow {
	variableTag = strings.TrimSpace(variableTag)
	out := make([]RawGridRow, 0, len(rows))
	for _, r := range rows {
		if r.IsEmpty() {
			continue
		}
		if _, ok := n.noise[strings.TrimSpace(r.Day)]; ok {
			continue
		}
		if variableTag != "" && strings.TrimSpace(r.Column(n.tokens.VariableTagColumn)) == variableTag {
			continue
		}
		if n.tokens.StationMarker != "" && strings.TrimSpace(r.Column(n.tokens.StationColumn)) == n.tokens.StationMarker {
			continue
		}
		out = append(out, r)
	}
	return out
}

// reshape assigns 31 consecutive rows to each year from startYear and emits
// one candidate per month cell.
func reshape(rows []RawGridRow, startYear int) []candidate {
	out := make([]candidate, 0, len(rows)*MonthsPerRow)
	for i, r := range rows {
		year := startYear + i/RowsPerYear
		for m, token := range r.Months {
			out = append(out, candidate{
				line:  r.Line,
				year:  year,
				month: time.Month(m + 1),
				day:   r.Day,
				token: token,
			})
		}
	}
	return out
}

// cellError locates err at the candidate's cell.
func (c candidate) cellError(err error) *CellError {
	return &CellError{
		Line:  c.line,
		Year:  c.year,
		Month: int(c.month),
		Day:   c.day,
		Token: c.token,
		Err:   err,
	}
}

// resolve turns one candidate into a record. ok is false when the cell is
// excluded; the reason is counted in series.Stats.
func (n *Normalizer) resolve(c candidate, series *Series) (Record, bool, error) {
	stats := &series.Stats
	token := strings.TrimSpace(c.token)
	if token == "" {
		stats.Empty++
		return Record{}, false, nil
	}
	if _, ok := n.missing[token]; ok {
		stats.Missing++
		return Record{}, false, nil
	}

	day, err := strconv.Atoi(strings.TrimSpace(c.day))
	if err != nil {
		stats.InvalidDate++
		series.InvalidDates = append(series.InvalidDates, c.cellError(ErrInvalidDate))
		return Record{}, false, nil
	}
	if n.policy.Dates == StrictCalendarCheck && !withinMonthBounds(c.month, day) {
		stats.OutOfBounds++
		return Record{}, false, nil
	}
	date, ok := calendarDate(c.year, c.month, day)
	if !ok {
		stats.InvalidDate++
		series.InvalidDates = append(series.InvalidDates, c.cellError(ErrInvalidDate))
		return Record{}, false, nil
	}

	value, err := n.coerce(token)
	if err != nil {
		return Record{}, false, c.cellError(err)
	}
	return Record{Date: date, Value: value}, true, nil
}

// coerce maps trace placeholders to their substitute and parses the rest.
func (n *Normalizer) coerce(token string) (float64, error) {
	if v, ok := n.substitutes[token]; ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrUnparseableValue
	}
	return v, nil
}
