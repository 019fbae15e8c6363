package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/logging"
	"cine-insights/metrics"
	"cine-insights/reports"
)

var errBadParam = errors.New("invalid query parameter")

type errorResponse struct {
	Error string `json:"error"`
}

type growthResponse struct {
	Dimension catalog.Dimension    `json:"dimension"`
	Rows      []analyzer.GrowthRow `json:"rows"`
}

type topGrowthResponse struct {
	Dimension catalog.Dimension `json:"dimension"`
	Window    int               `json:"window"`
	Years     []int             `json:"years"`
	Trends    []analyzer.Trend  `json:"trends"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Err(err).Msg("Failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// titles loads the catalogue, answering 500 itself on failure
func (h *Handler) titles(w http.ResponseWriter, r *http.Request) ([]catalog.Title, bool) {
	titles, err := h.source.GetAllTitles(r.Context())
	if err != nil {
		logging.Err(err).Str("path", r.URL.Path).Msg("Failed to load titles")
		writeError(w, http.StatusInternalServerError, errors.New("failed to load titles"))
		return nil, false
	}
	return titles, true
}

func (h *Handler) dimension(r *http.Request) (catalog.Dimension, error) {
	v := r.URL.Query().Get("dimension")
	if v == "" {
		v = h.defaults.Dimension
	}
	d, err := catalog.ParseDimension(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadParam, err)
	}
	return d, nil
}

// positiveInt reads a query parameter that must be a positive integer
func positiveInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadParam, name)
	}
	return n, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Ping(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Growth(w http.ResponseWriter, r *http.Request) {
	dim, err := h.dimension(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	titles, ok := h.titles(w, r)
	if !ok {
		return
	}

	start := time.Now()
	rows := analyzer.Growth(titles, dim)
	metrics.ObserveAnalysis("growth", start)

	writeJSON(w, http.StatusOK, growthResponse{Dimension: dim, Rows: rows})
}

func (h *Handler) TopGrowth(w http.ResponseWriter, r *http.Request) {
	dim, err := h.dimension(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	window, err := positiveInt(r, "window", h.defaults.Window)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := positiveInt(r, "limit", h.defaults.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	titles, ok := h.titles(w, r)
	if !ok {
		return
	}

	start := time.Now()
	resp := topGrowthResponse{
		Dimension: dim,
		Window:    window,
		Years:     analyzer.RecentYears(titles, window),
		Trends:    analyzer.TopGrowth(titles, dim, window, limit),
	}
	metrics.ObserveAnalysis("top_growth", start)

	writeJSON(w, http.StatusOK, resp)
}

// report serves a report computed from the whole catalogue
func (h *Handler) report(name string, w http.ResponseWriter, r *http.Request, compute func([]catalog.Title) interface{}) {
	titles, ok := h.titles(w, r)
	if !ok {
		return
	}
	start := time.Now()
	result := compute(titles)
	metrics.ObserveAnalysis(name, start)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Kinds(w http.ResponseWriter, r *http.Request) {
	h.report("kinds", w, r, func(t []catalog.Title) interface{} { return reports.CountByKind(t) })
}

func (h *Handler) Ratings(w http.ResponseWriter, r *http.Request) {
	h.report("ratings", w, r, func(t []catalog.Title) interface{} { return reports.MostCommonRating(t) })
}

func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	limit, err := positiveInt(r, "limit", h.defaults.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.report("countries", w, r, func(t []catalog.Title) interface{} { return reports.TopCountries(t, limit) })
}

func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	h.report("genres", w, r, func(t []catalog.Title) interface{} { return reports.CountByGenre(t) })
}

func (h *Handler) Durations(w http.ResponseWriter, r *http.Request) {
	h.report("durations", w, r, func(t []catalog.Title) interface{} { return reports.DurationBuckets(t) })
}

func (h *Handler) Keywords(w http.ResponseWriter, r *http.Request) {
	var keywords []string
	if v := r.URL.Query().Get("keywords"); v != "" {
		keywords = catalog.SplitList(v)
	}
	h.report("keywords", w, r, func(t []catalog.Title) interface{} { return reports.KeywordCategories(t, keywords) })
}
