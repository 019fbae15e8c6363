// Package warehouse runs the growth analysis as SQL on an embedded DuckDB
// database. It produces the same rows as analyzer.Growth and is used when the
// comparison should be done by the engine with window functions.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/logging"
	"cine-insights/metrics"
)

const schema = `CREATE TABLE IF NOT EXISTS titles (
	show_id    VARCHAR NOT NULL,
	type       VARCHAR NOT NULL,
	director   VARCHAR,
	casts      VARCHAR,
	country    VARCHAR,
	date_added DATE,
	listed_in  VARCHAR
)`

// columns maps a dimension to the column holding its comma-separated values
var columns = map[catalog.Dimension]string{
	catalog.DimensionGenre:    "listed_in",
	catalog.DimensionCountry:  "country",
	catalog.DimensionCast:     "casts",
	catalog.DimensionDirector: "director",
}

const growthQuery = `WITH split AS (
	SELECT show_id, year(date_added) AS year, unnest(string_split(%[1]s, ',')) AS raw
	FROM titles
	WHERE date_added IS NOT NULL AND %[1]s IS NOT NULL
),
counts AS (
	SELECT trim(raw) AS category, year, COUNT(DISTINCT show_id) AS n
	FROM split
	WHERE trim(raw) <> ''
	GROUP BY trim(raw), year
)
SELECT category, year, n,
	ROUND((n - LAG(n) OVER w)::DOUBLE * 10000 / NULLIF(LAG(n) OVER w, 0)) / 100 AS pct
FROM counts
WINDOW w AS (PARTITION BY category ORDER BY year)
ORDER BY category, year`

// Warehouse is a DuckDB database holding a copy of the catalogue
type Warehouse struct {
	db *sql.DB
}

// Open opens the database at path, creating it if needed. An empty path
// opens an in-memory database.
func Open(path string) (*Warehouse, error) {
	dsn := ":memory:"
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create warehouse directory %s: %w", dir, err)
			}
		}
		dsn = path
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	return &Warehouse{db: db}, nil
}

// Load replaces the warehouse contents with titles. Show IDs are expected
// to be unique, as the loader guarantees.
func (w *Warehouse) Load(ctx context.Context, titles []catalog.Title) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM titles"); err != nil {
		return fmt.Errorf("failed to clear titles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO titles (show_id, type, director, casts, country, date_added, listed_in)
		VALUES (?, ?, ?, ?, ?, CAST(? AS DATE), ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range titles {
		var added interface{}
		if t.AddedDate != nil {
			added = t.AddedDate.Format(catalog.DateLayout)
		}
		if _, err := stmt.ExecContext(ctx, t.ShowID, string(t.Kind),
			list(t.Directors), list(t.Cast), list(t.Countries), added, list(t.Genres)); err != nil {
			return fmt.Errorf("failed to insert title %s: %w", t.ShowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logging.Debug().Int("titles", len(titles)).Msg("Loaded titles into warehouse")
	return nil
}

// Growth computes per category and year counts and the percent change
// against the previous year present for the category
func (w *Warehouse) Growth(ctx context.Context, dim catalog.Dimension) ([]analyzer.GrowthRow, error) {
	column, ok := columns[dim]
	if !ok {
		return nil, fmt.Errorf("%w %q", catalog.ErrUnknownDimension, dim)
	}
	defer metrics.ObserveAnalysis("growth_duckdb", time.Now())

	rows, err := w.db.QueryContext(ctx, fmt.Sprintf(growthQuery, column))
	if err != nil {
		return nil, fmt.Errorf("failed to query growth: %w", err)
	}
	defer rows.Close()

	out := []analyzer.GrowthRow{}
	for rows.Next() {
		var (
			r   analyzer.GrowthRow
			pct sql.NullFloat64
		)
		if err := rows.Scan(&r.Category, &r.Year, &r.Count, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan growth row: %w", err)
		}
		if pct.Valid {
			r.Change = analyzer.Percent(analyzer.Round2(pct.Float64))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read growth rows: %w", err)
	}
	return out, nil
}

// Close closes the database
func (w *Warehouse) Close() error {
	return w.db.Close()
}

func list(values []string) interface{} {
	if len(values) == 0 {
		return nil
	}
	return catalog.JoinList(values)
}
