package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFile = "rainfall-19612003.csv"

func TestParseJob(t *testing.T) {
	t.Run("full job", func(t *testing.T) {
		data := []byte(`{"file":"rainfall-19612003.csv","station":"OUAG","variable":"rainfall","variable_tag":"PLUVI","start_year":1961,"end_year":2004,"year_range":"exclusive","date_check":"strict","encoding":"iso-8859-1"}`)
		job, err := ParseJob(RawEvent{Value: data})
		require.NoError(t, err)

		assert.Equal(t, testFile, job.File)
		assert.Equal(t, "OUAG", job.Station)
		assert.Equal(t, "iso-8859-1", job.Encoding)
		assert.Equal(t, NormalizeRequest{Variable: "rainfall", VariableTag: "PLUVI", StartYear: 1961, EndYear: 2004}, job.Request())

		policy, err := job.Policy()
		require.NoError(t, err)
		assert.Equal(t, DatePolicy{Years: ExclusiveEndYear, Dates: StrictCalendarCheck}, policy)
	})

	t.Run("defaults to exclusive trust-source-bounds", func(t *testing.T) {
		data := []byte(`{"file":"rainfall-19612003","variable":"rainfall","start_year":1961,"end_year":2003}`)
		job, err := ParseJob(RawEvent{Value: data})
		require.NoError(t, err)

		policy, err := job.Policy()
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), policy)
	})

	tests := []struct {
		name    string
		payload string
		errPart string
	}{
		{"invalid JSON", `{not json`, "invalid character"},
		{"missing file", `{"variable":"rainfall","start_year":1961,"end_year":2003}`, "file is required"},
		{"blank variable", `{"file":"a.csv","variable":"  ","start_year":1961,"end_year":2003}`, "variable is required"},
		{"missing years", `{"file":"a.csv","variable":"rainfall"}`, "start_year and end_year"},
		{"unknown year range", `{"file":"a.csv","variable":"rainfall","start_year":1961,"end_year":2003,"year_range":"half-open"}`, "unknown year range"},
		{"unknown date check", `{"file":"a.csv","variable":"rainfall","start_year":1961,"end_year":2003,"date_check":"loose"}`, "unknown date check"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJob(RawEvent{Value: []byte(tt.payload)})
			require.ErrorIs(t, err, ErrInvalidJob)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		years, dates string
		want         DatePolicy
	}{
		{"", "", DefaultPolicy()},
		{"inclusive", "strict", BoundedPolicy()},
		{"INCLUSIVE", "trust", DatePolicy{Years: InclusiveEndYear, Dates: TrustSourceBounds}},
		{"exclusive", "trust-source-bounds", DefaultPolicy()},
	}
	for _, tt := range tests {
		t.Run(tt.years+"/"+tt.dates, func(t *testing.T) {
			got, err := ParsePolicy(tt.years, tt.dates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatePolicy_String(t *testing.T) {
	assert.Equal(t, "exclusive/trust-source-bounds", DefaultPolicy().String())
	assert.Equal(t, "inclusive/strict", BoundedPolicy().String())

	data, err := json.Marshal(BoundedPolicy())
	require.NoError(t, err)
	assert.JSONEq(t, `{"year_range":"inclusive","date_check":"strict"}`, string(data))
}

func TestDatePolicy_YearCount(t *testing.T) {
	assert.Equal(t, 43, DefaultPolicy().YearCount(1961, 2004))
	assert.Equal(t, 44, BoundedPolicy().YearCount(1961, 2004))
	assert.Equal(t, 1, BoundedPolicy().YearCount(1970, 1970))
	assert.Equal(t, 0, DefaultPolicy().YearCount(1970, 1970))
}

func TestSerializeSeries(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	job := GridJob{File: testFile, Station: "OUAG", Variable: "rainfall"}
	series := Series{
		Variable: "rainfall",
		Policy:   DefaultPolicy(),
		Records: []Record{
			{Date: time.Date(1970, time.June, 15, 0, 0, 0, 0, time.UTC), Value: 0},
			{Date: time.Date(1970, time.August, 3, 0, 0, 0, 0, time.UTC), Value: 12.5},
		},
	}

	out, err := SerializeSeries(job, series)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []byte("OUAG|rainfall|1970-06-15"), out[0].Key)
	assert.JSONEq(t, `{"station":"OUAG","variable":"rainfall","date":"1970-08-03","value":12.5,"source_file":"rainfall-19612003.csv"}`, string(out[1].Value))
	assert.Equal(t, "rainfall", out[1].Headers["variable"])
	assert.Equal(t, "exclusive/trust-source-bounds", out[1].Headers["policy"])
	assert.Equal(t, "2024-04-27T06:00:00Z", out[1].Headers["processed_at"])
}

func TestSerializeSeries_Empty(t *testing.T) {
	out, err := SerializeSeries(GridJob{}, Series{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRawGridRow(t *testing.T) {
	row := NewRawGridRow(7, []string{" 12 ", "1.5", "", "TR"})
	assert.Equal(t, 7, row.Line)
	assert.Equal(t, "12", row.Day)
	assert.Equal(t, "1.5", row.Column(1))
	assert.Equal(t, "TR", row.Column(3))
	assert.Equal(t, "", row.Column(12))
	assert.Equal(t, "", row.Column(13))
	assert.False(t, row.IsEmpty())

	assert.True(t, NewRawGridRow(1, []string{"", " ", ""}).IsEmpty())
	assert.True(t, NewRawGridRow(1, nil).IsEmpty())
}
