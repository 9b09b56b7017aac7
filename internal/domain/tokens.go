package domain

// TokenConfig describes the noise markers and cell encodings of a station
// archive format.
type TokenConfig struct {
	// NoiseLabels are day labels of header, subtotal and total rows.
	NoiseLabels []string

	// VariableTagColumn is the grid column holding the variable tag of the
	// sub-header row. Rows whose cell there equals the request's VariableTag
	// are dropped.
	VariableTagColumn int

	// StationColumn and StationMarker identify the station sub-header row.
	// An empty marker disables the filter.
	StationColumn int
	StationMarker string

	// Missing tokens mark absent observations; the cell is dropped.
	Missing []string

	// Substitutes map placeholder tokens (trace amounts) to numeric values.
	Substitutes map[string]float64
}

// DefaultTokens returns the token set of the Ouagadougou archive exports.
func DefaultTokens() TokenConfig {
	return TokenConfig{
		NoiseLabels:       []string{"DEC", "MOIS", "TOTAL", "DATE", "JRS"},
		VariableTagColumn: 5,
		StationColumn:     4,
		StationMarker:     "OUAG",
		Missing:           []string{"**"},
		Substitutes: map[string]float64{
			".":  0,
			"TR": 0,
		},
	}
}

// WithStation returns a copy of the config using marker as the station code.
func (c TokenConfig) WithStation(marker string) TokenConfig {
	c.StationMarker = marker
	return c
}
