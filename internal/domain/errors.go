package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch reports a grid whose surviving rows do not fill exactly
	// 31 rows per requested year.
	ErrShapeMismatch = errors.New("grid shape mismatch")

	// ErrUnparseableValue reports a cell token that is neither numeric nor a
	// known missing or trace marker.
	ErrUnparseableValue = errors.New("unparseable value")

	// ErrInvalidDate marks a cell whose day/month/year is not a calendar date.
	// Normalize excludes such cells; each one is reported in
	// Series.InvalidDates as a *CellError wrapping it.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDuplicateDate reports two grid cells that resolve to the same date.
	ErrDuplicateDate = errors.New("duplicate date")

	// ErrInvalidJob reports a grid job message that cannot be processed.
	ErrInvalidJob = errors.New("invalid grid job")
)

// CellError locates a failure at a single grid cell.
type CellError struct {
	Line  int
	Year  int
	Month int
	Day   string
	Token string
	Err   error
}

func (e *CellError) Error() string {
	loc := fmt.Sprintf("year %d month %02d day %q", e.Year, e.Month, e.Day)
	if e.Line > 0 {
		loc = fmt.Sprintf("line %d, %s", e.Line, loc)
	}
	return fmt.Sprintf("%s: %v: %q", loc, e.Err, e.Token)
}

func (e *CellError) Unwrap() error { return e.Err }
