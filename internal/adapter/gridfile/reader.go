package gridfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the encoding of the station spreadsheet exports.
const DefaultEncoding = "iso-8859-1"

var encodings = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"utf-8":        unicode.UTF8BOM,
	"utf8":         unicode.UTF8BOM,
}

// ErrUnknownEncoding is returned for encoding names the reader does not support.
var ErrUnknownEncoding = errors.New("unknown encoding")

// LookupEncoding resolves an encoding name. Empty selects DefaultEncoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultEncoding
	}
	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode reads a delimited day-by-month grid from r. Rows may have any number
// of fields; only the day label and the twelve month columns are kept.
func Decode(r io.Reader, encodingName string) ([]domain.RawGridRow, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var rows []domain.RawGridRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read grid: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, domain.NewRawGridRow(line, record))
	}
	return rows, nil
}
