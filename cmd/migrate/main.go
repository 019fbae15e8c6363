package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"cine-insights/storage"
)

var dataPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the cine-insights database schema",
		SilenceUsage: true,
	}

	defaultPath := os.Getenv("DATA_PATH")
	if defaultPath == "" {
		defaultPath = "./data"
	}
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", defaultPath, "path to database directory")

	rootCmd.AddCommand(migrateCmd("up", "Apply all pending migrations", func(s *storage.SQLiteStorage) error {
		if err := s.RunMigrations(); err != nil {
			return err
		}
		fmt.Println("Migrations completed successfully")
		return nil
	}))

	rootCmd.AddCommand(migrateCmd("down", "Roll back the last migration", func(s *storage.SQLiteStorage) error {
		if err := s.RollbackMigration(); err != nil {
			return err
		}
		fmt.Println("Migration rolled back successfully")
		return nil
	}))

	rootCmd.AddCommand(migrateCmd("status", "Show migration status", func(s *storage.SQLiteStorage) error {
		m := s.GetMigrationManager()
		if err := m.Initialize(); err != nil {
			return err
		}
		return m.Status()
	}))

	rootCmd.AddCommand(migrateCmd("version", "Print the schema version", func(s *storage.SQLiteStorage) error {
		version, err := s.GetDatabaseVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Database version: %d\n", version)
		return nil
	}))

	rootCmd.AddCommand(migrateCmd("reset", "Roll back every migration", func(s *storage.SQLiteStorage) error {
		if err := s.ResetDatabase(); err != nil {
			return err
		}
		fmt.Println("Database reset completed successfully")
		return nil
	}))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd(use, short string, run func(s *storage.SQLiteStorage) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := storage.NewSQLiteStorage(dataPath)
			if err := s.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer s.Close()
			return run(s)
		},
	}
}
