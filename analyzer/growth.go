// Package analyzer computes year-over-year growth of titles per category.
//
// A title with several entries in a multi-valued column (genres, countries)
// contributes once to every distinct entry. Titles without an added date are
// left out of every bucket.
package analyzer

import (
	"math"
	"sort"
	"strconv"

	"cine-insights/catalog"
)

// Change is a percent change that may be undefined
type Change struct {
	Value float64
	Valid bool
}

// Percent builds a defined change
func Percent(v float64) Change {
	return Change{Value: v, Valid: true}
}

// String renders the change with a percent suffix, or "" when undefined
func (c Change) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', 2, 64) + "%"
}

// MarshalJSON encodes an undefined change as null
func (c Change) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, c.Value, 'f', 2, 64), nil
}

// Bucket is the number of titles added in Year that list Category
type Bucket struct {
	Category string `json:"category"`
	Year     int    `json:"year"`
	Count    int    `json:"count"`
}

// GrowthRow is a bucket together with its change against the nearest
// earlier bucket of the same category
type GrowthRow struct {
	Category string `json:"category"`
	Year     int    `json:"year"`
	Count    int    `json:"count"`
	Change   Change `json:"percent_change"`
}

type bucketKey struct {
	category string
	year     int
}

// Buckets groups dated titles by (category, year), ordered by category then year
func Buckets(titles []catalog.Title, dim catalog.Dimension) []Bucket {
	counts := make(map[bucketKey]int)
	for _, t := range titles {
		year, ok := t.AddedYear()
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		for _, v := range t.Values(dim) {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			counts[bucketKey{category: v, year: year}]++
		}
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{Category: k.category, Year: k.year, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Category != buckets[j].Category {
			return buckets[i].Category < buckets[j].Category
		}
		return buckets[i].Year < buckets[j].Year
	})
	return buckets
}

// Growth computes the per-category, per-year counts and percent changes.
// The first year of a category has an undefined change; later years compare
// against the nearest earlier year present for that category.
func Growth(titles []catalog.Title, dim catalog.Dimension) []GrowthRow {
	return withChanges(Buckets(titles, dim))
}

// withChanges expects buckets ordered by category then year
func withChanges(buckets []Bucket) []GrowthRow {
	rows := make([]GrowthRow, len(buckets))
	for i, b := range buckets {
		rows[i] = GrowthRow{Category: b.Category, Year: b.Year, Count: b.Count}
		if i > 0 && buckets[i-1].Category == b.Category {
			rows[i].Change = PercentChange(buckets[i-1].Count, b.Count)
		}
	}
	return rows
}

// PercentChange returns (cur/prev - 1) * 100 rounded half away from zero
// to two decimals, undefined when prev is zero. The hundredths are computed
// with a single division of integers so exact ties round correctly.
func PercentChange(prev, cur int) Change {
	if prev == 0 {
		return Change{}
	}
	hundredths := math.Round(float64(int64(cur-prev)*10000) / float64(prev))
	return Percent(noNegativeZero(hundredths / 100))
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return noNegativeZero(math.Round(v*100) / 100)
}

// noNegativeZero avoids rendering "-0.00"
func noNegativeZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
