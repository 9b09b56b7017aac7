package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/observability"
)

// GridTransformer implements Transformer: it parses a grid job, loads the
// grid from its source, normalizes it and serializes every record.
type GridTransformer struct {
	source  domain.GridSource
	tokens  domain.TokenConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a GridTransformer reading grids from source and
// recognising the noise and cell tokens in tokens.
func NewTransformer(source domain.GridSource, tokens domain.TokenConfig, metrics *observability.Metrics, logger *slog.Logger) *GridTransformer {
	return &GridTransformer{
		source:  source,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// Transform normalizes the grid named by one job message.
func (t *GridTransformer) Transform(ctx context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	job, err := domain.ParseJob(raw)
	if err != nil {
		return nil, err
	}
	policy, err := job.Policy()
	if err != nil {
		return nil, err
	}

	rows, err := t.source.LoadGrid(ctx, job.File, job.Encoding)
	if err != nil {
		return nil, err
	}

	tokens := t.tokens
	if job.Station == "" {
		job.Station = tokens.StationMarker
	} else {
		tokens = tokens.WithStation(job.Station)
	}

	start := time.Now()
	series, err := domain.NewNormalizer(domain.Options{Tokens: tokens, Policy: policy}).Normalize(rows, job.Request())
	if err != nil {
		return nil, err
	}
	t.metrics.NormalizeSeconds.Observe(time.Since(start).Seconds())
	t.observe(series.Stats)
	for _, cellErr := range series.InvalidDates {
		t.logger.Debug("cell excluded", "file", job.File, "error", cellErr)
	}

	t.logger.Info("grid normalized",
		"file", job.File,
		"variable", job.Variable,
		"policy", policy.String(),
		"records", series.Stats.Records,
		"noise_rows", series.Stats.NoiseRows,
		"missing", series.Stats.Missing,
		"invalid_date", series.Stats.InvalidDate,
		"out_of_bounds", series.Stats.OutOfBounds,
	)

	return domain.SerializeSeries(job, series)
}

func (t *GridTransformer) observe(s domain.Stats) {
	t.metrics.GridRows.WithLabelValues("data").Add(float64(s.DataRows))
	t.metrics.GridRows.WithLabelValues("noise").Add(float64(s.NoiseRows))
	for reason, n := range s.Exclusions() {
		t.metrics.RecordsExcluded.WithLabelValues(reason).Add(float64(n))
	}
}
