package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"cine-insights/catalog"
	"cine-insights/logging"
)

// DatabaseFile is the SQLite file created inside the data directory
const DatabaseFile = "cine_insights.db"

type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	dataPath string
}

// TitleSource is the read side used by reports, the scheduler and the API
type TitleSource interface {
	GetAllTitles(ctx context.Context) ([]catalog.Title, error)
}

func NewSQLiteStorage(dataPath string) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath:   filepath.Join(dataPath, DatabaseFile),
		dataPath: dataPath,
	}
}

func (s *SQLiteStorage) Initialize() error {
	if err := os.MkdirAll(s.dataPath, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	migrationManager := NewMigrationManager(db)
	if err := migrationManager.Initialize(); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if err := migrationManager.Up(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.db = db

	logging.Info().Str("path", s.dbPath).Msg("SQLite database initialized")
	return nil
}

// SaveTitles upserts titles by show_id in a single transaction. The original
// created_at of an existing row is kept.
func (s *SQLiteStorage) SaveTitles(ctx context.Context, titles []catalog.Title) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO titles (`+titleColumns+`, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(show_id) DO UPDATE SET
		type = excluded.type,
		title = excluded.title,
		director = excluded.director,
		casts = excluded.casts,
		country = excluded.country,
		date_added = excluded.date_added,
		release_year = excluded.release_year,
		rating = excluded.rating,
		duration = excluded.duration,
		listed_in = excluded.listed_in,
		description = excluded.description,
		updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range titles {
		if _, err := stmt.ExecContext(ctx, rowFromTitle(t).args()...); err != nil {
			return fmt.Errorf("failed to save title %s: %w", t.ShowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit titles: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) queryTitles(ctx context.Context, query string, args ...interface{}) ([]catalog.Title, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	titles := []catalog.Title{}
	for rows.Next() {
		var r titleRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		t, err := r.toTitle()
		if err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate titles: %w", err)
	}
	return titles, nil
}

// GetAllTitles reads the whole table in one statement
func (s *SQLiteStorage) GetAllTitles(ctx context.Context) ([]catalog.Title, error) {
	return s.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles ORDER BY show_id`)
}

func (s *SQLiteStorage) GetTitlesByType(ctx context.Context, kind catalog.Kind) ([]catalog.Title, error) {
	return s.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles WHERE type = ? ORDER BY date_added DESC, show_id`, string(kind))
}

func (s *SQLiteStorage) SearchTitles(ctx context.Context, query string) ([]catalog.Title, error) {
	return s.queryTitles(ctx, `SELECT `+titleColumns+` FROM titles WHERE title LIKE ? ORDER BY title`, "%"+query+"%")
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStorage) GetDB() (*sql.DB, error) {
	if s.db == nil {
		db, err := sql.Open("sqlite3", s.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}
	return s.db, nil
}

// Stats are headline counts of the catalogue
type Stats struct {
	Total   int `json:"total"`
	Movies  int `json:"movies"`
	Series  int `json:"series"`
	Undated int `json:"undated"`
}

func (s *SQLiteStorage) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN date_added IS NULL THEN 1 ELSE 0 END), 0)
	FROM titles`, string(catalog.KindMovie), string(catalog.KindSeries)).Scan(&st.Total, &st.Movies, &st.Series, &st.Undated)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return st, nil
}

// Migration management methods
func (s *SQLiteStorage) GetMigrationManager() *MigrationManager {
	return NewMigrationManager(s.db)
}

func (s *SQLiteStorage) GetDatabaseVersion() (int64, error) {
	migrationManager := s.GetMigrationManager()
	if err := migrationManager.Initialize(); err != nil {
		return 0, err
	}
	return migrationManager.Version()
}

func (s *SQLiteStorage) RunMigrations() error {
	migrationManager := s.GetMigrationManager()
	if err := migrationManager.Initialize(); err != nil {
		return err
	}
	return migrationManager.Up()
}

func (s *SQLiteStorage) RollbackMigration() error {
	migrationManager := s.GetMigrationManager()
	if err := migrationManager.Initialize(); err != nil {
		return err
	}
	return migrationManager.Down()
}

func (s *SQLiteStorage) ResetDatabase() error {
	migrationManager := s.GetMigrationManager()
	if err := migrationManager.Initialize(); err != nil {
		return err
	}
	return migrationManager.Reset()
}
