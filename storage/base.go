package storage

import (
	"database/sql"
	"fmt"

	"cine-insights/catalog"
)

// titleRow mirrors the titles table. Multi-valued columns are stored as the
// comma-separated text they arrive in.
type titleRow struct {
	ShowID      string
	Type        string
	Title       string
	Director    sql.NullString
	Casts       sql.NullString
	Country     sql.NullString
	DateAdded   sql.NullString
	ReleaseYear sql.NullInt64
	Rating      sql.NullString
	Duration    sql.NullString
	ListedIn    sql.NullString
	Description sql.NullString
}

const titleColumns = `show_id, type, title, director, casts, country, date_added,
	release_year, rating, duration, listed_in, description`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func rowFromTitle(t catalog.Title) titleRow {
	r := titleRow{
		ShowID:      t.ShowID,
		Type:        string(t.Kind),
		Title:       t.Title,
		Director:    nullString(catalog.JoinList(t.Directors)),
		Casts:       nullString(catalog.JoinList(t.Cast)),
		Country:     nullString(catalog.JoinList(t.Countries)),
		Rating:      nullString(t.Rating),
		Duration:    nullString(t.Duration),
		ListedIn:    nullString(catalog.JoinList(t.Genres)),
		Description: nullString(t.Description),
	}
	if t.AddedDate != nil {
		r.DateAdded = nullString(t.AddedDate.Format(catalog.DateLayout))
	}
	if t.ReleaseYear != 0 {
		r.ReleaseYear = sql.NullInt64{Int64: int64(t.ReleaseYear), Valid: true}
	}
	return r
}

func (r titleRow) args() []interface{} {
	return []interface{}{r.ShowID, r.Type, r.Title, r.Director, r.Casts, r.Country, r.DateAdded,
		r.ReleaseYear, r.Rating, r.Duration, r.ListedIn, r.Description}
}

func (r *titleRow) dest() []interface{} {
	return []interface{}{&r.ShowID, &r.Type, &r.Title, &r.Director, &r.Casts, &r.Country, &r.DateAdded,
		&r.ReleaseYear, &r.Rating, &r.Duration, &r.ListedIn, &r.Description}
}

func (r titleRow) toTitle() (catalog.Title, error) {
	kind, err := catalog.ParseKind(r.Type)
	if err != nil {
		return catalog.Title{}, fmt.Errorf("title %s: %w", r.ShowID, err)
	}
	t := catalog.Title{
		ShowID:      r.ShowID,
		Kind:        kind,
		Title:       r.Title,
		Directors:   catalog.SplitList(r.Director.String),
		Cast:        catalog.SplitList(r.Casts.String),
		Countries:   catalog.SplitList(r.Country.String),
		ReleaseYear: int(r.ReleaseYear.Int64),
		Rating:      r.Rating.String,
		Duration:    r.Duration.String,
		Genres:      catalog.SplitList(r.ListedIn.String),
		Description: r.Description.String,
	}
	if r.DateAdded.Valid {
		added, err := catalog.ParseAddedDate(r.DateAdded.String)
		if err != nil {
			return catalog.Title{}, fmt.Errorf("title %s: %w", r.ShowID, err)
		}
		t.AddedDate = &added
	}
	return t, nil
}
