// Package loader turns a titles CSV into catalogue records.
//
// It is the only place that sees raw rows: records handed to the analyzer
// either carry a well-formed added date or none at all.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cine-insights/catalog"
	"cine-insights/logging"
	"cine-insights/metrics"
	"cine-insights/scraper"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"show_id", "type", "title"}

// headerAliases maps alternative header spellings onto canonical names
var headerAliases = map[string]string{
	"casts":      "cast",
	"genre":      "listed_in",
	"genres":     "listed_in",
	"added_date": "date_added",
}

// Result is a decoded dataset plus counts of every row-level problem
type Result struct {
	Titles     []catalog.Title
	Rows       int
	Rejected   int
	BadDates   int
	BadYears   int
	Duplicates int
}

type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Decode reads a header-mapped CSV. A later row with an already seen show_id
// replaces the earlier one.
func Decode(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	res := &Result{}
	index := make(map[string]int)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", res.Rows+1, err)
		}
		res.Rows++

		t, ok := res.decodeRow(cols, record)
		if !ok {
			continue
		}
		if i, dup := index[t.ShowID]; dup {
			res.Duplicates++
			res.Titles[i] = t
			continue
		}
		index[t.ShowID] = len(res.Titles)
		res.Titles = append(res.Titles, t)
	}

	metrics.RecordLoad(res.Rows, res.Rejected, res.BadDates, res.BadYears, res.Duplicates)
	return res, nil
}

func (res *Result) decodeRow(cols columns, record []string) (catalog.Title, bool) {
	id := cols.get(record, "show_id")
	if id == "" {
		res.Rejected++
		logging.Debug().Int("row", res.Rows).Msg("Rejecting row without show_id")
		return catalog.Title{}, false
	}
	kind, err := catalog.ParseKind(cols.get(record, "type"))
	if err != nil {
		res.Rejected++
		logging.Debug().Str("show_id", id).Err(err).Msg("Rejecting row")
		return catalog.Title{}, false
	}

	t := catalog.Title{
		ShowID:      id,
		Kind:        kind,
		Title:       cols.get(record, "title"),
		Directors:   catalog.SplitList(cols.get(record, "director")),
		Cast:        catalog.SplitList(cols.get(record, "cast")),
		Countries:   catalog.SplitList(cols.get(record, "country")),
		Rating:      cols.get(record, "rating"),
		Duration:    cols.get(record, "duration"),
		Genres:      catalog.SplitList(cols.get(record, "listed_in")),
		Description: cols.get(record, "description"),
	}

	if raw := cols.get(record, "date_added"); raw != "" {
		added, err := catalog.ParseAddedDate(raw)
		if err != nil {
			res.BadDates++
			logging.Debug().Str("show_id", id).Err(err).Msg("Dropping malformed added date")
		} else {
			t.AddedDate = &added
		}
	}

	if raw := cols.get(record, "release_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			res.BadYears++
			logging.Debug().Str("show_id", id).Str("release_year", raw).Msg("Dropping malformed release year")
		} else {
			t.ReleaseYear = year
		}
	}
	return t, true
}

// Load reads the dataset from a local path or an http(s) URL
func Load(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var r io.Reader
	if scraper.IsURL(source) {
		body, err := scraper.NewScraper().Fetch(source)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(body)
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		r = f
	}

	res, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}

	logging.Info().
		Str("source", source).
		Int("rows", res.Rows).
		Int("titles", len(res.Titles)).
		Int("rejected", res.Rejected).
		Int("bad_dates", res.BadDates).
		Int("duplicates", res.Duplicates).
		Msg("Dataset decoded")
	return res, nil
}
