// Package reports answers the catalogue questions that do not need
// year-over-year comparison: counts, rankings, lookups and bucketing.
// Every function is a pure transformation of the titles passed in.
package reports

import (
	"sort"
	"strings"
	"time"

	"cine-insights/analyzer"
	"cine-insights/catalog"
)

type KindCount struct {
	Kind  catalog.Kind `json:"type"`
	Count int          `json:"count"`
}

// CountByKind counts movies and series. Both kinds are always present.
func CountByKind(titles []catalog.Title) []KindCount {
	counts := make(map[catalog.Kind]int)
	for _, t := range titles {
		counts[t.Kind]++
	}
	out := make([]KindCount, 0, 2)
	for _, k := range catalog.Kinds() {
		out = append(out, KindCount{Kind: k, Count: counts[k]})
	}
	return out
}

type RatingCount struct {
	Kind   catalog.Kind `json:"type"`
	Rating string       `json:"rating"`
	Count  int          `json:"count"`
}

// MostCommonRating returns the most frequent rating of each kind. Ties go
// to the alphabetically first rating; kinds without any rating are omitted.
func MostCommonRating(titles []catalog.Title) []RatingCount {
	counts := make(map[catalog.Kind]map[string]int)
	for _, t := range titles {
		if t.Rating == "" {
			continue
		}
		if counts[t.Kind] == nil {
			counts[t.Kind] = make(map[string]int)
		}
		counts[t.Kind][t.Rating]++
	}

	out := []RatingCount{}
	for _, k := range catalog.Kinds() {
		var best RatingCount
		for rating, n := range counts[k] {
			if n > best.Count || (n == best.Count && rating < best.Rating) {
				best = RatingCount{Kind: k, Rating: rating, Count: n}
			}
		}
		if best.Count > 0 {
			out = append(out, best)
		}
	}
	return out
}

// ReleasedIn lists titles of a kind released in year
func ReleasedIn(titles []catalog.Title, kind catalog.Kind, year int) []catalog.Title {
	return filter(titles, func(t catalog.Title) bool {
		return t.Kind == kind && t.ReleaseYear == year
	})
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TopValues ranks the entries of a multi-valued column by the number of
// titles listing them, highest first. n <= 0 returns every entry.
func TopValues(titles []catalog.Title, dim catalog.Dimension, n int) []ValueCount {
	return rank(titles, dim, n, func(catalog.Title) bool { return true })
}

// TopCountries ranks countries by title count
func TopCountries(titles []catalog.Title, n int) []ValueCount {
	return TopValues(titles, catalog.DimensionCountry, n)
}

// CountByGenre counts titles per genre
func CountByGenre(titles []catalog.Title) []ValueCount {
	return TopValues(titles, catalog.DimensionGenre, 0)
}

// LongestMovies returns every movie sharing the longest running time
func LongestMovies(titles []catalog.Title) []catalog.Title {
	longest := -1
	out := []catalog.Title{}
	for _, t := range titles {
		if t.Kind != catalog.KindMovie {
			continue
		}
		m, ok := t.Minutes()
		if !ok {
			continue
		}
		switch {
		case m > longest:
			longest = m
			out = append(out[:0], t)
		case m == longest:
			out = append(out, t)
		}
	}
	return out
}

// AddedSince lists titles added within the last years before now
func AddedSince(titles []catalog.Title, now time.Time, years int) []catalog.Title {
	cutoff := now.AddDate(-years, 0, 0)
	return filter(titles, func(t catalog.Title) bool {
		return t.AddedDate != nil && !t.AddedDate.Before(cutoff)
	})
}

// ByDirector lists titles with a director whose name contains name, ignoring case
func ByDirector(titles []catalog.Title, name string) []catalog.Title {
	return filter(titles, func(t catalog.Title) bool {
		return anyContains(t.Directors, name)
	})
}

// SeriesWithMoreThan lists series with more than seasons seasons
func SeriesWithMoreThan(titles []catalog.Title, seasons int) []catalog.Title {
	return filter(titles, func(t catalog.Title) bool {
		n, ok := t.Seasons()
		return t.Kind == catalog.KindSeries && ok && n > seasons
	})
}

type YearShare struct {
	Year  int     `json:"year"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// CountryYearShare breaks a country's dated titles down by added year. Share
// is the year's percentage of the country's dated total. The n years with
// the largest share come first; n <= 0 keeps every year.
func CountryYearShare(titles []catalog.Title, country string, n int) []YearShare {
	perYear := make(map[int]int)
	total := 0
	for _, t := range titles {
		year, ok := t.AddedYear()
		if !ok || !anyEqual(t.Countries, country) {
			continue
		}
		perYear[year]++
		total++
	}

	out := make([]YearShare, 0, len(perYear))
	for year, c := range perYear {
		out = append(out, YearShare{
			Year:  year,
			Count: c,
			Share: analyzer.Round2(float64(c) / float64(total) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		return out[i].Year < out[j].Year
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// InGenre lists titles with a genre entry containing genre, ignoring case
func InGenre(titles []catalog.Title, genre string) []catalog.Title {
	return filter(titles, func(t catalog.Title) bool {
		return anyContains(t.Genres, genre)
	})
}

// WithoutDirector lists titles with no director recorded
func WithoutDirector(titles []catalog.Title) []catalog.Title {
	return filter(titles, func(t catalog.Title) bool {
		return len(t.Directors) == 0
	})
}

// ActorMovieCount counts movies featuring actor released after the year
// that lies years before now
func ActorMovieCount(titles []catalog.Title, actor string, now time.Time, years int) int {
	since := now.Year() - years
	n := 0
	for _, t := range titles {
		if t.Kind == catalog.KindMovie && t.ReleaseYear > since && anyContains(t.Cast, actor) {
			n++
		}
	}
	return n
}

// TopActors ranks actors by the number of movies produced in country they
// appear in
func TopActors(titles []catalog.Title, country string, n int) []ValueCount {
	return rank(titles, catalog.DimensionCast, n, func(t catalog.Title) bool {
		return t.Kind == catalog.KindMovie && anyEqual(t.Countries, country)
	})
}

func rank(titles []catalog.Title, dim catalog.Dimension, n int, keep func(catalog.Title) bool) []ValueCount {
	counts := make(map[string]int)
	for _, t := range titles {
		if !keep(t) {
			continue
		}
		seen := make(map[string]struct{})
		for _, v := range t.Values(dim) {
			if _, dup := seen[v]; dup || v == "" {
				continue
			}
			seen[v] = struct{}{}
			counts[v]++
		}
	}

	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func filter(titles []catalog.Title, keep func(catalog.Title) bool) []catalog.Title {
	out := []catalog.Title{}
	for _, t := range titles {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func anyContains(values []string, sub string) bool {
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub == "" {
		return false
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), sub) {
			return true
		}
	}
	return false
}

func anyEqual(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
