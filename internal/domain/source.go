package domain

import "context"

// GridSource loads the rows of a named grid file.
type GridSource interface {
	// LoadGrid reads the grid called name, decoding it with the named
	// character encoding. An empty encoding selects the source default.
	LoadGrid(ctx context.Context, name, encoding string) ([]RawGridRow, error)
}
