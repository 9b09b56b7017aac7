package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GridJob asks the pipeline to normalize one grid file. It is published as
// JSON to the source topic.
type GridJob struct {
	File        string `json:"file"`
	Station     string `json:"station,omitempty"`
	Variable    string `json:"variable"`
	VariableTag string `json:"variable_tag,omitempty"`
	StartYear   int    `json:"start_year"`
	EndYear     int    `json:"end_year"`
	YearRange   string `json:"year_range,omitempty"` // "exclusive" (default) or "inclusive"
	DateCheck   string `json:"date_check,omitempty"` // "trust-source-bounds" (default) or "strict"
	Encoding    string `json:"encoding,omitempty"`
}

// ParseJob deserializes a RawEvent's value into a GridJob and checks that the
// required fields are present.
func ParseJob(raw RawEvent) (GridJob, error) {
	var job GridJob
	if err := json.Unmarshal(raw.Value, &job); err != nil {
		return GridJob{}, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	job.File = strings.TrimSpace(job.File)
	job.Variable = strings.TrimSpace(job.Variable)

	if job.File == "" {
		return GridJob{}, fmt.Errorf("%w: file is required", ErrInvalidJob)
	}
	if job.Variable == "" {
		return GridJob{}, fmt.Errorf("%w: variable is required", ErrInvalidJob)
	}
	if job.StartYear == 0 || job.EndYear == 0 {
		return GridJob{}, fmt.Errorf("%w: start_year and end_year are required", ErrInvalidJob)
	}
	if _, err := job.Policy(); err != nil {
		return GridJob{}, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	return job, nil
}

// Policy returns the DatePolicy named by the job.
func (j GridJob) Policy() (DatePolicy, error) {
	return ParsePolicy(j.YearRange, j.DateCheck)
}

// Request returns the normalization parameters of the job.
func (j GridJob) Request() NormalizeRequest {
	return NormalizeRequest{
		Variable:    j.Variable,
		VariableTag: j.VariableTag,
		StartYear:   j.StartYear,
		EndYear:     j.EndYear,
	}
}
