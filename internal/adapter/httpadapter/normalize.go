package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-grid-etl/internal/adapter/gridfile"
	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// maxGridBytes bounds the request body of /v1/normalize.
const maxGridBytes = 8 << 20

type recordJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type seriesJSON struct {
	Variable string            `json:"variable"`
	Policy   domain.DatePolicy `json:"policy"`
	Stats    domain.Stats      `json:"stats"`
	Records  []recordJSON      `json:"records"`
}

type normalizeParams struct {
	req      domain.NormalizeRequest
	policy   domain.DatePolicy
	station  string
	encoding string
}

func parseNormalizeParams(q url.Values) (normalizeParams, error) {
	var p normalizeParams

	p.req.Variable = strings.TrimSpace(q.Get("variable"))
	if p.req.Variable == "" {
		return p, errors.New("variable is required")
	}
	p.req.VariableTag = strings.TrimSpace(q.Get("tag"))

	var err error
	if p.req.StartYear, err = strconv.Atoi(q.Get("start")); err != nil {
		return p, fmt.Errorf("invalid start year %q", q.Get("start"))
	}
	if p.req.EndYear, err = strconv.Atoi(q.Get("end")); err != nil {
		return p, fmt.Errorf("invalid end year %q", q.Get("end"))
	}

	if p.policy, err = domain.ParsePolicy(q.Get("year_range"), q.Get("date_check")); err != nil {
		return p, err
	}
	p.station = strings.TrimSpace(q.Get("station"))
	p.encoding = q.Get("encoding")
	return p, nil
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	params, err := parseNormalizeParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := gridfile.Decode(http.MaxBytesReader(w, r.Body, maxGridBytes), params.encoding)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tokens := s.tokens
	if params.station != "" {
		tokens = tokens.WithStation(params.station)
	}

	n := domain.NewNormalizer(domain.Options{Tokens: tokens, Policy: params.policy})
	series, err := n.Normalize(rows, params.req)
	if err != nil {
		s.logger.Warn("normalize request rejected", "variable", params.req.Variable, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out := seriesJSON{
		Variable: series.Variable,
		Policy:   series.Policy,
		Stats:    series.Stats,
		Records:  make([]recordJSON, len(series.Records)),
	}
	for i, rec := range series.Records {
		out.Records[i] = recordJSON{Date: rec.DateString(), Value: rec.Value}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
