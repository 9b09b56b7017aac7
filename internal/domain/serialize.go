package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordMessage is the JSON value of one record on the sink topic.
type RecordMessage struct {
	Station    string  `json:"station,omitempty"`
	Variable   string  `json:"variable"`
	Date       string  `json:"date"`
	Value      float64 `json:"value"`
	SourceFile string  `json:"source_file,omitempty"`
}

// SerializeSeries converts every record of series into an OutputEvent. All
// events of one call share a processed_at stamp.
func SerializeSeries(job GridJob, series Series) ([]OutputEvent, error) {
	processedAt := clock.Now().UTC().Format(time.RFC3339)
	out := make([]OutputEvent, 0, len(series.Records))
	for _, rec := range series.Records {
		ev, err := serializeRecord(job, series, rec, processedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func serializeRecord(job GridJob, series Series, rec Record, processedAt string) (OutputEvent, error) {
	msg := RecordMessage{
		Station:    job.Station,
		Variable:   series.Variable,
		Date:       rec.DateString(),
		Value:      rec.Value,
		SourceFile: job.File,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize record: %w", err)
	}
	return OutputEvent{
		Key:   []byte(RecordKey(job.Station, series.Variable, rec.Date)),
		Value: data,
		Headers: map[string]string{
			"variable":     series.Variable,
			"policy":       series.Policy.String(),
			"processed_at": processedAt,
		},
	}, nil
}

// RecordKey is the deterministic message key station|variable|YYYY-MM-DD.
func RecordKey(station, variable string, date time.Time) string {
	return station + "|" + variable + "|" + date.Format(time.DateOnly)
}
