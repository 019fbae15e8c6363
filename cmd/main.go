package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"cine-insights/config"
	"cine-insights/logging"
	"cine-insights/storage"
)

var (
	dataPath string
	cfg      *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cine-insights",
		Short:        "Growth analysis and reports over a streaming catalogue",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				c.Data.Path = dataPath
			}
			logging.Init(logging.Config{
				Level:  c.Logging.Level,
				Format: c.Logging.Format,
				Caller: c.Logging.Caller,
			})
			cfg = c
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "./data", "directory holding the database")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(growthCmd())
	rootCmd.AddCommand(topGrowthCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mailTestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStorage opens the SQLite database, migrating it to the latest schema
func openStorage() (*storage.SQLiteStorage, error) {
	s := storage.NewSQLiteStorage(cfg.Data.Path)
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
