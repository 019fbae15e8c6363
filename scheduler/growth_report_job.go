package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/config"
	"cine-insights/logging"
	"cine-insights/metrics"
	"cine-insights/notifier"
	"cine-insights/storage"
)

// ReportNotifier delivers a finished growth digest
type ReportNotifier interface {
	NotifyGrowthReport(ctx context.Context, d notifier.GrowthDigest) error
}

// GrowthReportJob computes the growth report from stored titles and mails it
type GrowthReportJob struct {
	source    storage.TitleSource
	notifier  ReportNotifier
	dimension catalog.Dimension
	window    int
	limit     int
	now       func() time.Time
}

// NewGrowthReportJob creates a growth report job. n may be nil, in which case
// reports are only logged.
func NewGrowthReportJob(source storage.TitleSource, n ReportNotifier, cfg config.ReportConfig) (*GrowthReportJob, error) {
	dim, err := catalog.ParseDimension(cfg.Dimension)
	if err != nil {
		return nil, err
	}
	if n == nil {
		logging.Info().Msg("Email notifications disabled: missing configuration")
	}
	return &GrowthReportJob{
		source:    source,
		notifier:  n,
		dimension: dim,
		window:    cfg.Window,
		limit:     cfg.Limit,
		now:       time.Now,
	}, nil
}

// Name returns the name of the job
func (j *GrowthReportJob) Name() string {
	return "growth_report"
}

// Run executes the job
func (j *GrowthReportJob) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := logging.With().Str("job", j.Name()).Str("run_id", runID).Logger()

	titles, err := j.source.GetAllTitles(ctx)
	if err != nil {
		metrics.ReportRuns.WithLabelValues(j.Name(), "failed").Inc()
		return fmt.Errorf("failed to load titles: %w", err)
	}

	digest := j.Digest(runID, titles)
	for i, t := range digest.Top {
		log.Info().
			Int("rank", i+1).
			Str("category", t.Category).
			Float64("average_growth", t.AverageGrowth).
			Msg("Growth leader")
	}
	log.Info().
		Int("titles", digest.TitleCount).
		Str("dimension", string(j.dimension)).
		Int("leaders", len(digest.Top)).
		Msg("Growth report computed")

	if j.notifier != nil {
		if err := j.notifier.NotifyGrowthReport(ctx, digest); err != nil {
			metrics.ReportRuns.WithLabelValues(j.Name(), "failed").Inc()
			return fmt.Errorf("failed to send growth report: %w", err)
		}
	}

	metrics.ReportRuns.WithLabelValues(j.Name(), "success").Inc()
	return nil
}

// Digest builds the report for titles without sending it
func (j *GrowthReportJob) Digest(runID string, titles []catalog.Title) notifier.GrowthDigest {
	defer metrics.ObserveAnalysis("growth_report", time.Now())

	rows := analyzer.Growth(titles, j.dimension)
	latest := 0
	for _, r := range rows {
		if r.Year > latest {
			latest = r.Year
		}
	}
	var latestRows []analyzer.GrowthRow
	for _, r := range rows {
		if r.Year == latest {
			latestRows = append(latestRows, r)
		}
	}

	return notifier.GrowthDigest{
		RunID:       runID,
		Dimension:   j.dimension,
		Window:      j.window,
		GeneratedAt: j.now(),
		TitleCount:  len(titles),
		Top:         analyzer.TopGrowth(titles, j.dimension, j.window, j.limit),
		Latest:      latestRows,
	}
}
