package analyzer

import (
	"sort"

	"cine-insights/catalog"
)

// Trend is the mean yearly growth of a category inside the analysis window
type Trend struct {
	Category      string  `json:"category"`
	AverageGrowth float64 `json:"average_growth"`
	Years         int     `json:"years"`
}

// RecentYears returns the window most recent years present among dated titles,
// ascending
func RecentYears(titles []catalog.Title, window int) []int {
	present := make(map[int]struct{})
	for _, t := range titles {
		if y, ok := t.AddedYear(); ok {
			present[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(present))
	for y := range present {
		years = append(years, y)
	}
	sort.Ints(years)
	if window > 0 && len(years) > window {
		years = years[len(years)-window:]
	}
	return years
}

// TopGrowth restricts titles to the window most recent added years, computes
// growth inside that window and ranks categories by the mean of their defined
// changes, highest first. Categories without a defined change are left out.
// A limit <= 0 returns every ranked category.
func TopGrowth(titles []catalog.Title, dim catalog.Dimension, window, limit int) []Trend {
	years := RecentYears(titles, window)
	if len(years) == 0 {
		return []Trend{}
	}
	first := years[0]

	recent := make([]catalog.Title, 0, len(titles))
	for _, t := range titles {
		if y, ok := t.AddedYear(); ok && y >= first {
			recent = append(recent, t)
		}
	}

	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[string]*acc)
	var order []string
	for _, row := range Growth(recent, dim) {
		if !row.Change.Valid {
			continue
		}
		a, ok := sums[row.Category]
		if !ok {
			a = &acc{}
			sums[row.Category] = a
			order = append(order, row.Category)
		}
		a.sum += row.Change.Value
		a.n++
	}

	trends := make([]Trend, 0, len(order))
	for _, c := range order {
		a := sums[c]
		trends = append(trends, Trend{Category: c, AverageGrowth: Round2(a.sum / float64(a.n)), Years: a.n})
	}
	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].AverageGrowth != trends[j].AverageGrowth {
			return trends[i].AverageGrowth > trends[j].AverageGrowth
		}
		return trends[i].Category < trends[j].Category
	})
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	return trends
}
