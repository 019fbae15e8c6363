package reports

import (
	"strings"

	"cine-insights/catalog"
)

type DurationBucket struct {
	Kind  catalog.Kind `json:"type"`
	Label string       `json:"bucket"`
	Count int          `json:"count"`
}

type durationRange struct {
	label    string
	min, max int // max < 0 means unbounded
}

var movieRanges = []durationRange{
	{"< 60 min", 0, 59},
	{"60-89 min", 60, 89},
	{"90-119 min", 90, 119},
	{"120+ min", 120, -1},
}

var seriesRanges = []durationRange{
	{"1 Season", 1, 1},
	{"2-3 Seasons", 2, 3},
	{"4+ Seasons", 4, -1},
}

// DurationBuckets buckets movies by minutes and series by seasons. Every
// bucket is listed, empty ones with a zero count. Titles with an unparsable
// duration are not counted.
func DurationBuckets(titles []catalog.Title) []DurationBucket {
	movies := make([]int, len(movieRanges))
	series := make([]int, len(seriesRanges))
	for _, t := range titles {
		switch t.Kind {
		case catalog.KindMovie:
			if m, ok := t.Minutes(); ok {
				if i := bucketIndex(movieRanges, m); i >= 0 {
					movies[i]++
				}
			}
		case catalog.KindSeries:
			if s, ok := t.Seasons(); ok {
				if i := bucketIndex(seriesRanges, s); i >= 0 {
					series[i]++
				}
			}
		}
	}

	out := make([]DurationBucket, 0, len(movieRanges)+len(seriesRanges))
	for i, r := range movieRanges {
		out = append(out, DurationBucket{Kind: catalog.KindMovie, Label: r.label, Count: movies[i]})
	}
	for i, r := range seriesRanges {
		out = append(out, DurationBucket{Kind: catalog.KindSeries, Label: r.label, Count: series[i]})
	}
	return out
}

func bucketIndex(ranges []durationRange, v int) int {
	for i, r := range ranges {
		if v >= r.min && (r.max < 0 || v <= r.max) {
			return i
		}
	}
	return -1
}

const (
	LabelBad  = "Bad"
	LabelGood = "Good"
)

// DefaultKeywords mark a description as Bad content
var DefaultKeywords = []string{"kill", "violence"}

type KeywordCount struct {
	Label string       `json:"label"`
	Kind  catalog.Kind `json:"type"`
	Count int          `json:"count"`
}

// Classify labels a description Bad when it mentions any keyword, ignoring case
func Classify(description string, keywords []string) string {
	d := strings.ToLower(description)
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(d, k) {
			return LabelBad
		}
	}
	return LabelGood
}

// KeywordCategories counts Bad and Good titles per kind
func KeywordCategories(titles []catalog.Title, keywords []string) []KeywordCount {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	counts := make(map[string]map[catalog.Kind]int)
	for _, t := range titles {
		label := Classify(t.Description, keywords)
		if counts[label] == nil {
			counts[label] = make(map[catalog.Kind]int)
		}
		counts[label][t.Kind]++
	}

	out := []KeywordCount{}
	for _, label := range []string{LabelBad, LabelGood} {
		for _, k := range catalog.Kinds() {
			if n := counts[label][k]; n > 0 {
				out = append(out, KeywordCount{Label: label, Kind: k, Count: n})
			}
		}
	}
	return out
}
