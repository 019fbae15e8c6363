package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"cine-insights/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// gooseLogger routes goose output through the zerolog logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logging.Info().Str("component", "goose").Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logging.Fatal().Str("component", "goose").Msgf(format, v...)
}

type MigrationManager struct {
	db *sql.DB
}

func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

func (m *MigrationManager) Initialize() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

func (m *MigrationManager) Up() error {
	if err := goose.Up(m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logging.Info().Msg("Database migrations completed successfully")
	return nil
}

func (m *MigrationManager) Down() error {
	if err := goose.Down(m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	logging.Info().Msg("Database migration rolled back successfully")
	return nil
}

func (m *MigrationManager) Status() error {
	if err := goose.Status(m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

func (m *MigrationManager) Version() (int64, error) {
	version, err := goose.GetDBVersion(m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

func (m *MigrationManager) Reset() error {
	if err := goose.Reset(m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	logging.Info().Msg("Database reset completed successfully")
	return nil
}
