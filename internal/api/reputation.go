package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/reporting"
	"omnirep/internal/service"
)

// defaultHistoryWindow is the history range when "from" is omitted.
const defaultHistoryWindow = 30 * 24 * time.Hour

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	data, err := s.rep.Get(r.Context(), r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

// handleUpdateReputation recomputes the score. The body carries optional
// social, identity, activity and security signals; an empty body is allowed.
func (s *Server) handleUpdateReputation(w http.ResponseWriter, r *http.Request) {
	var sig domain.Signals
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &sig); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	data, err := s.rep.Update(r.Context(), r.PathValue("address"), sig)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

// HistoryResponse is the JSON response for the history endpoint.
type HistoryResponse struct {
	Address   string                  `json:"address"`
	From      int64                   `json:"from"`
	To        int64                   `json:"to"`
	Snapshots []*domain.ScoreSnapshot `json:"snapshots"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	addr, err := service.NormalizeAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.now()
	q := r.URL.Query()

	from, err := parseTime(q.Get("from"), now.Add(-defaultHistoryWindow))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseTime(q.Get("to"), now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snaps, err := s.rep.History(r.Context(), addr, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch q.Get("format") {
	case "", reporting.FormatJSON:
		if snaps == nil {
			snaps = []*domain.ScoreSnapshot{}
		}
		s.writeJSON(w, http.StatusOK, HistoryResponse{
			Address:   addr,
			From:      from.UnixMilli(),
			To:        to.UnixMilli(),
			Snapshots: snaps,
		})
	case "csv":
		s.writeText(w, http.StatusOK, "text/csv", reporting.RenderHistoryCSV(snaps))
	default:
		s.writeError(w, r, fmt.Errorf("%w: %q", reporting.ErrUnknownFormat, q.Get("format")))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	data, err := s.rep.Get(r.Context(), address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	out, err := reporting.Render(format, data.Address, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := "application/json"
	if format == reporting.FormatSummary {
		contentType = "text/plain; charset=utf-8"
	}
	s.writeText(w, http.StatusOK, contentType, out)
}

// handleAnalysis grades the address. POST bodies carry optional profile,
// social links and weight overrides; GET uses the defaults.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req service.AnalysisRequest
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	a, err := s.rep.Analyze(r.Context(), r.PathValue("address"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	out, err := reporting.RenderAnalysis(format, a.Address, a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := "application/json"
	if format == reporting.FormatSummary {
		contentType = "text/plain; charset=utf-8"
	}
	s.writeText(w, http.StatusOK, contentType, out)
}

// parseTime accepts RFC 3339 or Unix milliseconds. Empty yields def.
func parseTime(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q must be RFC 3339 or Unix milliseconds", errBadRequest, v)
	}
	return t, nil
}
