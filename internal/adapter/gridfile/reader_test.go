package gridfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const mockGrid = "rainfall-19701971.csv"

func mockDir() string {
	return filepath.Join("..", "..", "..", "data", "mock")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecode_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("PLUVIOMÉTRIE,,,,OUAG,PLUVI\n1,0,TR\n")
	require.NoError(t, err)

	rows, err := Decode(strings.NewReader(encoded), "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "PLUVIOMÉTRIE", rows[0].Day)
	assert.Equal(t, "OUAG", rows[0].Column(4))
	assert.Equal(t, "PLUVI", rows[0].Column(5))
	assert.Equal(t, 1, rows[0].Line)

	assert.Equal(t, "1", rows[1].Day)
	assert.Equal(t, "TR", rows[1].Column(2))
	assert.Equal(t, 2, rows[1].Line)
}

func TestDecode_UTF8WithBOM(t *testing.T) {
	data := "\ufeffTEMPÉRATURE,01\n"
	rows, err := Decode(strings.NewReader(data), "utf-8")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TEMPÉRATURE", rows[0].Day)
}

func TestDecode_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("RELEVÉ €\n")
	require.NoError(t, err)

	rows, err := Decode(strings.NewReader(encoded), "CP1252")
	require.NoError(t, err)
	assert.Equal(t, "RELEVÉ €", rows[0].Day)
}

func TestDecode_RaggedRows(t *testing.T) {
	data := "1,2,3\n2,1,2,3,4,5,6,7,8,9,10,11,12,extra,extra\n,,,\n"
	rows, err := Decode(strings.NewReader(data), "latin1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "3", rows[0].Column(2))
	assert.Equal(t, "", rows[0].Column(3))
	assert.Equal(t, "12", rows[1].Column(12))
	assert.True(t, rows[2].IsEmpty())
}

func TestDecode_UnknownEncoding(t *testing.T) {
	_, err := Decode(strings.NewReader("1,2"), "ebcdic")
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestDecode_MockGrid(t *testing.T) {
	f, err := os.Open(filepath.Join(mockDir(), mockGrid))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := Decode(f, DefaultEncoding)
	require.NoError(t, err)
	require.Len(t, rows, 80)
	assert.Equal(t, "PLUVIOMÉTRIE JOURNALIÈRE (mm)", rows[0].Day)

	n := domain.NewNormalizer(domain.Options{Tokens: domain.DefaultTokens(), Policy: domain.DefaultPolicy()})
	series, err := n.Normalize(rows, domain.NormalizeRequest{Variable: "rainfall", VariableTag: "PLUVI", StartYear: 1970, EndYear: 1972})
	require.NoError(t, err)

	assert.Len(t, series.Records, 728)
	assert.Equal(t, 18, series.Stats.NoiseRows)
	assert.Equal(t, 2, series.Stats.Missing)
	assert.Equal(t, 2, series.Stats.InvalidDate)

	byDate := make(map[string]float64, len(series.Records))
	for _, r := range series.Records {
		byDate[r.DateString()] = r.Value
	}
	assert.Equal(t, 0.0, byDate["1970-06-15"])
	assert.Equal(t, 0.0, byDate["1970-08-10"])
	assert.Equal(t, 12.5, byDate["1970-08-03"])
	assert.Equal(t, 37.2, byDate["1971-07-20"])
	assert.NotContains(t, byDate, "1970-07-01")
	assert.NotContains(t, byDate, "1971-09-05")
}

func TestDirSource_LoadGrid(t *testing.T) {
	src := NewDirSource(mockDir(), "", discardLogger())

	t.Run("appends csv extension", func(t *testing.T) {
		rows, err := src.LoadGrid(context.Background(), "rainfall-19701971", "")
		require.NoError(t, err)
		assert.Len(t, rows, 80)
	})

	t.Run("rejects paths outside the directory", func(t *testing.T) {
		_, err := src.LoadGrid(context.Background(), "../../go.mod", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the data directory")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := src.LoadGrid(context.Background(), "nope.csv", "")
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.LoadGrid(ctx, mockGrid, "")
		require.ErrorIs(t, err, context.Canceled)
	})
}

// --- CachedSource ---

type countingSource struct {
	calls int
	rows  []domain.RawGridRow
	info  *fakeInfo
}

func (s *countingSource) LoadGrid(_ context.Context, _, _ string) ([]domain.RawGridRow, error) {
	s.calls++
	return s.rows, nil
}

type statCountingSource struct {
	countingSource
}

func (s *statCountingSource) Stat(_ string) (os.FileInfo, error) {
	return s.info, nil
}

type fakeInfo struct {
	os.FileInfo
	size    int64
	modTime time.Time
}

func (f *fakeInfo) Size() int64        { return f.size }
func (f *fakeInfo) ModTime() time.Time { return f.modTime }

func TestCachedSource_Hit(t *testing.T) {
	inner := &countingSource{rows: []domain.RawGridRow{{Day: "1"}}}
	var hits, misses int
	cached, err := NewCachedSource(inner, 4, func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})
	require.NoError(t, err)

	for range 3 {
		rows, err := cached.LoadGrid(context.Background(), mockGrid, "")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	}

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestCachedSource_EncodingIsPartOfKey(t *testing.T) {
	inner := &countingSource{}
	cached, err := NewCachedSource(inner, 4, nil)
	require.NoError(t, err)

	_, _ = cached.LoadGrid(context.Background(), mockGrid, "latin1")
	_, _ = cached.LoadGrid(context.Background(), mockGrid, "utf-8")
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedSource_InvalidatesOnChange(t *testing.T) {
	inner := &statCountingSource{countingSource{info: &fakeInfo{size: 10, modTime: time.Unix(100, 0)}}}
	cached, err := NewCachedSource(inner, 4, nil)
	require.NoError(t, err)

	_, _ = cached.LoadGrid(context.Background(), mockGrid, "")
	_, _ = cached.LoadGrid(context.Background(), mockGrid, "")
	assert.Equal(t, 1, inner.calls)

	inner.info.modTime = time.Unix(200, 0)
	_, _ = cached.LoadGrid(context.Background(), mockGrid, "")
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_Eviction(t *testing.T) {
	inner := &countingSource{}
	cached, err := NewCachedSource(inner, 2, nil)
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c", "a"} {
		_, _ = cached.LoadGrid(context.Background(), name, "")
	}
	assert.Equal(t, 4, inner.calls, "a evicted by c")
	assert.Equal(t, 2, cached.Len())
}

func TestNewCachedSource_InvalidSize(t *testing.T) {
	_, err := NewCachedSource(&countingSource{}, 0, nil)
	require.Error(t, err)
}
