package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/loader"
	"cine-insights/logging"
	"cine-insights/warehouse"
)

const (
	engineMemory = "memory"
	engineDuckDB = "duckdb"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [source]",
		Short: "Load the catalogue CSV from a file or URL into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := cfg.Data.Source
			if len(args) == 1 {
				source = args[0]
			}
			if source == "" {
				return fmt.Errorf("no source given and DATASET_SOURCE is not set")
			}

			ctx, cancel := signalContext()
			defer cancel()

			res, err := loader.Load(ctx, source)
			if err != nil {
				return err
			}

			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SaveTitles(ctx, res.Titles); err != nil {
				return err
			}

			logging.Info().
				Str("source", source).
				Int("rows", res.Rows).
				Int("loaded", len(res.Titles)).
				Int("rejected", res.Rejected).
				Int("bad_dates", res.BadDates).
				Int("bad_years", res.BadYears).
				Int("duplicates", res.Duplicates).
				Msg("Import finished")
			fmt.Printf("Imported %d titles from %s (%d rows, %d rejected, %d without a valid date)\n",
				len(res.Titles), source, res.Rows, res.Rejected, res.BadDates)
			return nil
		},
	}
}

// storedTitles reads every title from the database
func storedTitles(ctx context.Context) ([]catalog.Title, error) {
	s, err := openStorage()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.GetAllTitles(ctx)
}

// dimensionFlag resolves the --dimension flag against the configured default
func dimensionFlag(value string) (catalog.Dimension, error) {
	if value == "" {
		value = cfg.Report.Dimension
	}
	return catalog.ParseDimension(value)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func growthCmd() *cobra.Command {
	var (
		dimension string
		engine    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Titles added per category and year with the change against the previous year",
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := dimensionFlag(dimension)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			titles, err := storedTitles(ctx)
			if err != nil {
				return err
			}

			var rows []analyzer.GrowthRow
			switch engine {
			case engineMemory:
				start := time.Now()
				rows = analyzer.Growth(titles, dim)
				logging.Debug().Dur("duration", time.Since(start)).Msg("Growth computed in memory")
			case engineDuckDB:
				if rows, err = warehouseGrowth(ctx, titles, dim); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown engine %q, want %s or %s", engine, engineMemory, engineDuckDB)
			}

			if asJSON {
				return printJSON(rows)
			}
			return renderGrowth(os.Stdout, dim, rows)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "", "group by genre, country, cast or director (default from config)")
	cmd.Flags().StringVar(&engine, "engine", engineMemory, "computation engine: memory or duckdb")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func warehouseGrowth(ctx context.Context, titles []catalog.Title, dim catalog.Dimension) ([]analyzer.GrowthRow, error) {
	w, err := warehouse.Open("")
	if err != nil {
		return nil, err
	}
	defer w.Close()

	if err := w.Load(ctx, titles); err != nil {
		return nil, err
	}
	return w.Growth(ctx, dim)
}

func topGrowthCmd() *cobra.Command {
	var (
		dimension string
		window    int
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "top-growth",
		Short: "Categories with the highest average growth over the most recent years",
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := dimensionFlag(dimension)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("window") {
				window = cfg.Report.Window
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Report.Limit
			}
			if window < 1 {
				return fmt.Errorf("window must be at least 1")
			}

			titles, err := storedTitles(cmd.Context())
			if err != nil {
				return err
			}

			trends := analyzer.TopGrowth(titles, dim, window, limit)
			if asJSON {
				return printJSON(trends)
			}
			years := analyzer.RecentYears(titles, window)
			return renderTrends(os.Stdout, dim, years, trends)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "", "group by genre, country, cast or director (default from config)")
	cmd.Flags().IntVar(&window, "window", 3, "number of most recent years to average over")
	cmd.Flags().IntVar(&limit, "limit", 5, "number of categories to show, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			return renderStats(os.Stdout, st)
		},
	}
}

func listCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List titles of one type, most recently added first",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := catalog.ParseKind(kind)
			if err != nil {
				return err
			}
			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			titles, err := s.GetTitlesByType(cmd.Context(), k)
			if err != nil {
				return err
			}
			return renderTitles(os.Stdout, titles)
		},
	}

	cmd.Flags().StringVar(&kind, "type", string(catalog.KindMovie), "Movie or TV Show")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Find titles whose name contains the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStorage()
			if err != nil {
				return err
			}
			defer s.Close()

			titles, err := s.SearchTitles(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return renderTitles(os.Stdout, titles)
		},
	}
}
