// Command normalize reshapes one day-by-month grid file into a tidy
// date,value CSV.
//
// Usage:
//
//	go run ./cmd/normalize \
//	  -file data/mock/rainfall-19701971.csv \
//	  -variable rainfall -tag PLUVI \
//	  -start 1970 -end 1972
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/climate-grid-etl/internal/adapter/gridfile"
	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "normalize:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)

	file := fs.String("file", "", "grid file to normalize")
	variable := fs.String("variable", "", "variable name written as the value column header")
	tag := fs.String("tag", "", "variable tag of the sub-header row, e.g. PLUVI")
	station := fs.String("station", "", "station code of the station row (default OUAG)")
	start := fs.Int("start", 0, "first year of the grid")
	end := fs.Int("end", 0, "end year of the grid")
	yearRange := fs.String("year-range", "exclusive", "end year handling: exclusive or inclusive")
	dateCheck := fs.String("date-check", "trust-source-bounds", "impossible date handling: trust-source-bounds or strict")
	enc := fs.String("encoding", gridfile.DefaultEncoding, "text encoding of the grid file")
	out := fs.String("out", "", "output path (default stdout)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" || *variable == "" || *start == 0 || *end == 0 {
		fs.Usage()
		return errors.New("missing required flags: -file, -variable, -start, -end")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	policy, err := domain.ParsePolicy(*yearRange, *dateCheck)
	if err != nil {
		return err
	}
	tokens := domain.DefaultTokens()
	if *station != "" {
		tokens = tokens.WithStation(*station)
	}

	source := gridfile.NewDirSource(filepath.Dir(*file), *enc, logger)
	rows, err := source.LoadGrid(ctx, filepath.Base(*file), "")
	if err != nil {
		return err
	}

	series, err := domain.NewNormalizer(domain.Options{Tokens: tokens, Policy: policy}).Normalize(rows, domain.NormalizeRequest{
		Variable:    *variable,
		VariableTag: *tag,
		StartYear:   *start,
		EndYear:     *end,
	})
	if err != nil {
		return fmt.Errorf("normalize %s: %w", *file, err)
	}

	if err := writeOutput(*out, stdout, series); err != nil {
		return err
	}

	logger.Info("grid normalized",
		"file", *file,
		"policy", policy.String(),
		"records", series.Stats.Records,
		"noise_rows", series.Stats.NoiseRows,
		"empty", series.Stats.Empty,
		"missing", series.Stats.Missing,
		"out_of_bounds", series.Stats.OutOfBounds,
		"invalid_date", series.Stats.InvalidDate,
	)
	return nil
}

// writeOutput writes series to path, or to stdout when path is empty.
func writeOutput(path string, stdout io.Writer, series domain.Series) error {
	if path == "" {
		return writeSeries(stdout, series)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeSeries(f, series); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// writeSeries writes series as a date,<variable> CSV with a header row.
func writeSeries(w io.Writer, series domain.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", series.Variable}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range series.Records {
		if err := cw.Write([]string{rec.DateString(), strconv.FormatFloat(rec.Value, 'f', -1, 64)}); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
