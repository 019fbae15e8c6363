package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/reports"
	"cine-insights/storage"
)

func TestRenderGrowth(t *testing.T) {
	rows := []analyzer.GrowthRow{
		{Category: "Dramas", Year: 2020, Count: 3},
		{Category: "Dramas", Year: 2021, Count: 6, Change: analyzer.Percent(100)},
	}
	var buf bytes.Buffer
	if err := renderGrowth(&buf, catalog.DimensionGenre, rows); err != nil {
		t.Fatalf("renderGrowth failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "GENRE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "-") {
		t.Errorf("first year should render an absent change as -, got %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "100.00%") {
		t.Errorf("second year = %q, want 100.00%% change", lines[2])
	}
}

func TestRenderTrends(t *testing.T) {
	var buf bytes.Buffer
	trends := []analyzer.Trend{{Category: "Anime", AverageGrowth: 200, Years: 1}}
	if err := renderTrends(&buf, catalog.DimensionCountry, []int{2019, 2020, 2021}, trends); err != nil {
		t.Fatalf("renderTrends failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Years 2019-2021", "COUNTRY", "200.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTitles(t *testing.T) {
	added := time.Date(2021, time.September, 24, 0, 0, 0, 0, time.UTC)
	titles := []catalog.Title{
		{ShowID: "s1", Kind: catalog.KindMovie, Title: "Dangal", AddedDate: &added, ReleaseYear: 2016, Duration: "161 min"},
		{ShowID: "s2", Kind: catalog.KindSeries, Title: "Dark", ReleaseYear: 2017, Duration: "3 Seasons"},
	}
	var buf bytes.Buffer
	if err := renderTitles(&buf, titles); err != nil {
		t.Fatalf("renderTitles failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2021-09-24") || !strings.Contains(out, "2 titles") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderReports(t *testing.T) {
	var buf bytes.Buffer
	if err := renderStats(&buf, storage.Stats{Total: 3, Movies: 2, Series: 1}); err != nil {
		t.Fatalf("renderStats failed: %v", err)
	}
	if err := renderDurations(&buf, []reports.DurationBucket{{Kind: catalog.KindMovie, Label: "120+ min", Count: 2}}); err != nil {
		t.Fatalf("renderDurations failed: %v", err)
	}
	if err := renderShares(&buf, []reports.YearShare{{Year: 2021, Count: 3, Share: 75}}); err != nil {
		t.Fatalf("renderShares failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total titles", "120+ min", "75.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
