package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"

	"cine-insights/api"
	"cine-insights/logging"
	"cine-insights/notifier"
	"cine-insights/scheduler"
	"cine-insights/storage"
)

// newReportScheduler registers the growth report job at the configured times
func newReportScheduler(s *storage.SQLiteStorage) (*scheduler.Scheduler, *scheduler.GrowthReportJob, error) {
	var n scheduler.ReportNotifier
	if cfg.Email.Enabled() {
		en, err := notifier.NewEmailNotifier(cfg.Email)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("recipient", cfg.Email.Recipient).Msg("Email notifications enabled")
		n = en
	}

	job, err := scheduler.NewGrowthReportJob(s, n, cfg.Report)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.NewScheduler()
	if err := sched.AddJobSpecs(cfg.Schedule.Specs, job); err != nil {
		return nil, nil, err
	}
	return sched, job, nil
}

func runAtStartup(ctx context.Context, sched *scheduler.Scheduler, job scheduler.Job) {
	if !cfg.Schedule.RunAtStartup {
		return
	}
	logging.Info().Str("job", job.Name()).Msg("Running job at startup")
	if err := sched.RunJobNowContext(ctx, job.Name()); err != nil {
		logging.Err(err).Str("job", job.Name()).Msg("Startup run failed")
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the growth report on its schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			sched, job, err := newReportScheduler(s)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			runAtStartup(ctx, sched, job)
			logging.Info().Strs("specs", cfg.Schedule.Specs).Msg("Application running. Press Ctrl+C to exit")

			if err := sched.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, and the report schedule when enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			sup := suture.New("cine-insights", suture.Spec{
				EventHook: func(e suture.Event) {
					logging.Warn().Str("event", e.String()).Msg("Supervisor event")
				},
				Timeout: api.ShutdownTimeout,
			})

			router := api.NewRouter(api.NewHandler(s, cfg.Report))
			sup.Add(api.NewServer(cfg.Server, router))

			ctx, cancel := signalContext()
			defer cancel()

			if cfg.Schedule.Enabled {
				sched, job, err := newReportScheduler(s)
				if err != nil {
					return err
				}
				sup.Add(sched)
				go runAtStartup(ctx, sched, job)
			}

			if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logging.Info().Msg("Application exiting")
			return nil
		},
	}
}

func mailTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mail-test",
		Short: "Send a test email with the configured SMTP settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := notifier.NewEmailNotifier(cfg.Email)
			if err != nil {
				return err
			}
			return n.SendTestEmail()
		},
	}
}
