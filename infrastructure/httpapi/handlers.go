package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ahrav/go-rankings/internal/application"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/observability"
	"github.com/ahrav/go-rankings/internal/ports"
)

type rankingHandlers struct {
	ranker      Ranker
	defaultYear int
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rankings serves GET /rankings?year=&week=&trials=&seed=&workers=&top=.
func (h *rankingHandlers) rankings(w http.ResponseWriter, r *http.Request) {
	req, top, err := h.parseRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_parameter", err.Error(), nil)
		return
	}

	res, err := h.ranker.Rank(r.Context(), req)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	res.Ranking = res.Ranking.Top(top)
	writeJSON(w, http.StatusOK, res)
}

func (h *rankingHandlers) parseRequest(r *http.Request) (application.RankRequest, int, error) {
	q := r.URL.Query()
	req := application.RankRequest{Year: h.defaultYear}

	ints := []struct {
		name string
		dst  *int
	}{
		{"year", &req.Year},
		{"trials", &req.TrialCount},
		{"workers", &req.Workers},
	}
	for _, p := range ints {
		if raw := q.Get(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return req, 0, fmt.Errorf("%s must be an integer, got %q", p.name, raw)
			}
			*p.dst = v
		}
	}

	if raw := q.Get("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			return req, 0, fmt.Errorf("week must be an integer, got %q", raw)
		}
		req.Week = &week
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return req, 0, fmt.Errorf("seed must be an unsigned integer, got %q", raw)
		}
		req.Seed = &seed
	}

	var top int
	if raw := q.Get("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return req, 0, fmt.Errorf("top must be a non-negative integer, got %q", raw)
		}
		top = v
	}
	return req, top, nil
}

func writeRankError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		var details map[string]any
		if inputErr.Suggestion != "" {
			details = map[string]any{"suggestion": inputErr.Suggestion}
		}
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error(), details)
	case errors.Is(err, domain.ErrInvalidConfiguration):
		writeError(w, r, http.StatusBadRequest, "invalid_configuration", err.Error(), nil)
	case errors.Is(err, ports.ErrCacheMiss), errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "season_not_found", "no schedule is available for the requested season", nil)
	default:
		observability.FromContext(r.Context()).Error("ranking failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "ranking_failed", "ranking could not be computed", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	payload := map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		payload["request_id"] = id
	}
	for k, v := range details {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}
