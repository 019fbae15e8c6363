package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cine-insights/catalog"
	"cine-insights/config"
	"cine-insights/metrics"
	"cine-insights/notifier"
)

type stubSource struct {
	titles []catalog.Title
	err    error
}

func (s stubSource) GetAllTitles(ctx context.Context) ([]catalog.Title, error) {
	return s.titles, s.err
}

type recordingNotifier struct {
	digests []notifier.GrowthDigest
	err     error
}

func (n *recordingNotifier) NotifyGrowthReport(ctx context.Context, d notifier.GrowthDigest) error {
	n.digests = append(n.digests, d)
	return n.err
}

func genreTitles(n, year int, genre string) []catalog.Title {
	out := make([]catalog.Title, n)
	for i := range out {
		added := time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
		out[i] = catalog.Title{
			ShowID:    fmt.Sprintf("%s-%d-%d", genre, year, i),
			Kind:      catalog.KindMovie,
			AddedDate: &added,
			Genres:    []string{genre},
		}
	}
	return out
}

func reportTitles() []catalog.Title {
	var titles []catalog.Title
	titles = append(titles, genreTitles(1, 2020, "Anime")...)
	titles = append(titles, genreTitles(3, 2021, "Anime")...)
	titles = append(titles, genreTitles(2, 2020, "Dramas")...)
	titles = append(titles, genreTitles(3, 2021, "Dramas")...)
	return titles
}

func reportConfig() config.ReportConfig {
	return config.ReportConfig{Dimension: "genre", Window: 3, Limit: 5}
}

func TestGrowthReportJobRun(t *testing.T) {
	n := &recordingNotifier{}
	job, err := NewGrowthReportJob(stubSource{titles: reportTitles()}, n, reportConfig())
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	before := testutil.ToFloat64(metrics.ReportRuns.WithLabelValues("growth_report", "success"))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(n.digests) != 1 {
		t.Fatalf("sent %d digests, want 1", len(n.digests))
	}

	d := n.digests[0]
	if d.RunID == "" {
		t.Error("digest should carry a run ID")
	}
	if d.TitleCount != 9 {
		t.Errorf("TitleCount = %d, want 9", d.TitleCount)
	}
	if len(d.Top) != 2 || d.Top[0].Category != "Anime" || d.Top[0].AverageGrowth != 200 {
		t.Errorf("Top = %+v, want Anime first at 200", d.Top)
	}
	if len(d.Latest) != 2 || d.Latest[0].Year != 2021 || d.Latest[1].Change.Value != 50 {
		t.Errorf("Latest = %+v", d.Latest)
	}

	after := testutil.ToFloat64(metrics.ReportRuns.WithLabelValues("growth_report", "success"))
	if after != before+1 {
		t.Errorf("success counter moved by %v, want 1", after-before)
	}
}

func TestGrowthReportJobWithoutNotifier(t *testing.T) {
	job, err := NewGrowthReportJob(stubSource{titles: reportTitles()}, nil, reportConfig())
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestGrowthReportJobErrors(t *testing.T) {
	loadErr := errors.New("database is locked")
	job, _ := NewGrowthReportJob(stubSource{err: loadErr}, &recordingNotifier{}, reportConfig())
	if err := job.Run(context.Background()); !errors.Is(err, loadErr) {
		t.Errorf("Run() error = %v, want %v", err, loadErr)
	}

	sendErr := errors.New("smtp down")
	job, _ = NewGrowthReportJob(stubSource{titles: reportTitles()}, &recordingNotifier{err: sendErr}, reportConfig())
	if err := job.Run(context.Background()); !errors.Is(err, sendErr) {
		t.Errorf("Run() error = %v, want %v", err, sendErr)
	}
}

func TestNewGrowthReportJobRejectsDimension(t *testing.T) {
	cfg := reportConfig()
	cfg.Dimension = "studio"
	if _, err := NewGrowthReportJob(stubSource{}, nil, cfg); !errors.Is(err, catalog.ErrUnknownDimension) {
		t.Fatalf("NewGrowthReportJob() error = %v, want ErrUnknownDimension", err)
	}
}

func TestGrowthReportJobScheduled(t *testing.T) {
	job, err := NewGrowthReportJob(stubSource{titles: reportTitles()}, nil, reportConfig())
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	s := NewScheduler()
	if err := s.AddJobSpecs([]string{"0 0 10 * * *", "0 0 17 * * *"}, job); err != nil {
		t.Fatalf("Failed to schedule job: %v", err)
	}
	if err := s.RunJobNow(job.Name()); err != nil {
		t.Fatalf("RunJobNow failed: %v", err)
	}
}
