// Package domain models daily climate archives kept as day-by-month grids and
// their normalization into dated series.
//
// # Data Source
//
// Station archives (rainfall, temperature, ...) from the Ouagadougou synoptic
// station are exported from spreadsheets as delimited text, one sheet per
// variable, typically ISO-8859-1 encoded. Each year is a block of rows:
//
//	<title>,,,,OUAG,PLUVI,,,,,,,     station sub-header (tag and station code)
//	JRS,JAN,FEV,MAR,...,DEC         column header
//	1,0,.,TR,...                    day 1 for months 01..12
//	...
//	31,0,,0,...                     day 31 (cells empty where the month is shorter)
//	DEC,...                         ten-day subtotals
//	MOIS,...                        monthly totals
//	TOTAL,...                       yearly total
//
// # Grid Conventions
//
// Column 0 holds the day label, columns 1..12 the months January..December.
// There is no year column. Every year occupies exactly 31 data rows regardless
// of the true month lengths, so years are assigned by position: the first 31
// surviving rows belong to the start year, the next 31 to the following year,
// and so on.
//
// Noise rows are identified by their day label (DEC, MOIS, TOTAL, DATE, JRS),
// by the variable tag in the sub-header (e.g. "PLUVI" in column 5) or by the
// station code (e.g. "OUAG" in column 4). They are removed before years are
// assigned and never count toward the 31-row quota.
//
// Cell tokens:
//
//	""    no observation, dropped
//	"**"  missing, dropped
//	"."   trace, recorded as 0
//	"TR"  trace, recorded as 0
//
// Any other token must parse as a number; anything else means the noise list
// is incomplete and normalization fails with [ErrUnparseableValue].
//
// # Date Policies
//
// Two export variants exist. One treats the end year as exclusive and trusts
// that impossible dates (31 April, 30 February) are left blank; the other treats
// the end year as inclusive and filters month bounds explicitly. Both are
// expressed as a [DatePolicy]. Under either policy a cell whose date does not
// exist in the calendar is excluded rather than shifted into the next month.
package domain
