package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"cine-insights/catalog"
	"cine-insights/config"
)

type stubSource struct {
	titles  []catalog.Title
	err     error
	pingErr error
}

func (s stubSource) GetAllTitles(ctx context.Context) ([]catalog.Title, error) {
	return s.titles, s.err
}

func (s stubSource) Ping(ctx context.Context) error {
	return s.pingErr
}

func added(n, year int, kind catalog.Kind, genre, country string) []catalog.Title {
	out := make([]catalog.Title, n)
	for i := range out {
		d := time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC)
		out[i] = catalog.Title{
			ShowID:    fmt.Sprintf("%s-%s-%d-%d", genre, country, year, i),
			Kind:      kind,
			AddedDate: &d,
			Genres:    []string{genre},
			Countries: []string{country},
			Duration:  "95 min",
		}
	}
	return out
}

func apiTitles() []catalog.Title {
	var titles []catalog.Title
	titles = append(titles, added(3, 2020, catalog.KindMovie, "Dramas", "India")...)
	titles = append(titles, added(6, 2021, catalog.KindMovie, "Dramas", "India")...)
	titles = append(titles, added(2, 2019, catalog.KindSeries, "Comedies", "Japan")...)
	titles = append(titles, added(1, 2021, catalog.KindSeries, "Comedies", "Japan")...)
	return titles
}

func newTestRouter(src stubSource) http.Handler {
	return NewRouter(NewHandler(src, config.ReportConfig{Dimension: "genre", Window: 3, Limit: 5}))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(stubSource{}), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = get(t, newTestRouter(stubSource{pingErr: errors.New("closed")}), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGrowthEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(stubSource{titles: apiTitles()}), "/growth")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		Dimension string `json:"dimension"`
		Rows      []struct {
			Category      string   `json:"category"`
			Year          int      `json:"year"`
			Count         int      `json:"count"`
			PercentChange *float64 `json:"percent_change"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Dimension != "genre" || len(resp.Rows) != 4 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Rows[0].Category != "Comedies" || resp.Rows[0].PercentChange != nil {
		t.Errorf("first row = %+v, want Comedies without change", resp.Rows[0])
	}
	if resp.Rows[1].PercentChange == nil || *resp.Rows[1].PercentChange != -50 {
		t.Errorf("Comedies 2021 change = %v, want -50", resp.Rows[1].PercentChange)
	}
	if resp.Rows[3].PercentChange == nil || *resp.Rows[3].PercentChange != 100 {
		t.Errorf("Dramas 2021 change = %v, want 100", resp.Rows[3].PercentChange)
	}
}

func TestGrowthByCountry(t *testing.T) {
	rec := get(t, newTestRouter(stubSource{titles: apiTitles()}), "/growth?dimension=country")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"category":"India"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestTopGrowthEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(stubSource{titles: apiTitles()}), "/growth/top?window=3&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Window int   `json:"window"`
		Years  []int `json:"years"`
		Trends []struct {
			Category      string  `json:"category"`
			AverageGrowth float64 `json:"average_growth"`
		} `json:"trends"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Years) != 3 || resp.Years[0] != 2019 {
		t.Errorf("years = %v", resp.Years)
	}
	if len(resp.Trends) != 1 || resp.Trends[0].Category != "Dramas" || resp.Trends[0].AverageGrowth != 100 {
		t.Errorf("trends = %+v", resp.Trends)
	}
}

func TestBadParameters(t *testing.T) {
	router := newTestRouter(stubSource{titles: apiTitles()})
	for _, target := range []string{
		"/growth?dimension=studio",
		"/growth/top?window=0",
		"/growth/top?limit=abc",
		"/reports/countries?limit=-1",
	} {
		rec := get(t, router, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
			continue
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Errorf("%s: expected JSON error body, got %s", target, rec.Body.String())
		}
	}
}

func TestStorageFailure(t *testing.T) {
	rec := get(t, newTestRouter(stubSource{err: errors.New("disk I/O error")}), "/reports/kinds")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestReportEndpoints(t *testing.T) {
	router := newTestRouter(stubSource{titles: apiTitles()})
	tests := []struct {
		target string
		want   string
	}{
		{"/reports/kinds", `{"type":"Movie","count":9}`},
		{"/reports/countries?limit=1", `[{"value":"India","count":9}]`},
		{"/reports/genres", `{"value":"Dramas","count":9}`},
		{"/reports/durations", `{"type":"Movie","bucket":"90-119 min","count":9}`},
		{"/reports/keywords?keywords=wrestler", `{"label":"Good","type":"Movie","count":9}`},
		{"/reports/ratings", `[]`},
	}
	for _, tt := range tests {
		rec := get(t, router, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.target, rec.Code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: body %s does not contain %s", tt.target, rec.Body.String(), tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(stubSource{titles: apiTitles()})
	get(t, router, "/growth")

	rec := get(t, router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cine_insights_api_requests_total") {
		t.Error("metrics output missing request counter")
	}
}
