package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned when a type column holds neither a movie nor a series marker.
var ErrUnknownKind = errors.New("unknown content kind")

// Kind is the content type of a title
type Kind string

const (
	KindMovie  Kind = "Movie"
	KindSeries Kind = "TV Show"
)

// ParseKind maps the free-text type column onto a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "tv show", "tv shows", "series", "tv series", "show":
		return KindSeries, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds lists every kind in display order
func Kinds() []Kind {
	return []Kind{KindMovie, KindSeries}
}

// Title is one row of the catalogue. Multi-valued columns are kept split.
type Title struct {
	ShowID      string     `json:"show_id"`
	Kind        Kind       `json:"type"`
	Title       string     `json:"title"`
	Directors   []string   `json:"directors,omitempty"`
	Cast        []string   `json:"cast,omitempty"`
	Countries   []string   `json:"countries,omitempty"`
	AddedDate   *time.Time `json:"date_added,omitempty"`
	ReleaseYear int        `json:"release_year"`
	Rating      string     `json:"rating,omitempty"`
	Duration    string     `json:"duration,omitempty"`
	Genres      []string   `json:"listed_in,omitempty"`
	Description string     `json:"description,omitempty"`
}

// AddedYear returns the year the title was added, if known
func (t Title) AddedYear() (int, bool) {
	if t.AddedDate == nil {
		return 0, false
	}
	return t.AddedDate.Year(), true
}

// Minutes returns the running time of a movie
func (t Title) Minutes() (int, bool) {
	d, err := ParseDuration(t.Duration)
	if err != nil || d.Unit != UnitMinutes {
		return 0, false
	}
	return d.Value, true
}

// Seasons returns the season count of a series
func (t Title) Seasons() (int, bool) {
	d, err := ParseDuration(t.Duration)
	if err != nil || d.Unit != UnitSeasons {
		return 0, false
	}
	return d.Value, true
}

// Values returns the entries of the multi-valued column named by d.
func (t Title) Values(d Dimension) []string {
	switch d {
	case DimensionGenre:
		return t.Genres
	case DimensionCountry:
		return t.Countries
	case DimensionCast:
		return t.Cast
	case DimensionDirector:
		return t.Directors
	}
	return nil
}
