package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/reports"
	"cine-insights/storage"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// changeCell renders an undefined change as "-"
func changeCell(c analyzer.Change) string {
	if !c.Valid {
		return "-"
	}
	return c.String()
}

func renderGrowth(w io.Writer, dim catalog.Dimension, rows []analyzer.GrowthRow) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s\tYEAR\tCOUNT\tCHANGE\n", upper(dim))
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.Category, r.Year, r.Count, changeCell(r.Change))
	}
	return tw.Flush()
}

func renderTrends(w io.Writer, dim catalog.Dimension, years []int, trends []analyzer.Trend) error {
	if len(years) > 0 {
		fmt.Fprintf(w, "Years %d-%d\n", years[0], years[len(years)-1])
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "RANK\t%s\tAVERAGE GROWTH\tYEARS\n", upper(dim))
	for i, t := range trends {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, t.Category, analyzer.Percent(t.AverageGrowth), t.Years)
	}
	return tw.Flush()
}

func renderStats(w io.Writer, st storage.Stats) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total titles\t%d\n", st.Total)
	fmt.Fprintf(tw, "Movies\t%d\n", st.Movies)
	fmt.Fprintf(tw, "TV shows\t%d\n", st.Series)
	fmt.Fprintf(tw, "Without date added\t%d\n", st.Undated)
	return tw.Flush()
}

func renderTitles(w io.Writer, titles []catalog.Title) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tADDED\tRELEASED\tDURATION")
	for _, t := range titles {
		added := "-"
		if t.AddedDate != nil {
			added = t.AddedDate.Format(catalog.DateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", t.ShowID, t.Kind, t.Title, added, t.ReleaseYear, t.Duration)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d titles\n", len(titles))
	return err
}

func renderKinds(w io.Writer, counts []reports.KindCount) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tCOUNT")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Kind, c.Count)
	}
	return tw.Flush()
}

func renderRatings(w io.Writer, ratings []reports.RatingCount) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tRATING\tCOUNT")
	for _, r := range ratings {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Kind, r.Rating, r.Count)
	}
	return tw.Flush()
}

func renderValues(w io.Writer, header string, values []reports.ValueCount) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s\tCOUNT\n", header)
	for _, v := range values {
		fmt.Fprintf(tw, "%s\t%d\n", v.Value, v.Count)
	}
	return tw.Flush()
}

func renderShares(w io.Writer, shares []reports.YearShare) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "YEAR\tCOUNT\tSHARE")
	for _, s := range shares {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", s.Year, s.Count, analyzer.Percent(s.Share))
	}
	return tw.Flush()
}

func renderDurations(w io.Writer, buckets []reports.DurationBucket) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tDURATION\tCOUNT")
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Kind, b.Label, b.Count)
	}
	return tw.Flush()
}

func renderKeywords(w io.Writer, counts []reports.KeywordCount) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "LABEL\tTYPE\tCOUNT")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Label, c.Kind, c.Count)
	}
	return tw.Flush()
}

func upper(d catalog.Dimension) string {
	switch d {
	case catalog.DimensionGenre:
		return "GENRE"
	case catalog.DimensionCountry:
		return "COUNTRY"
	case catalog.DimensionCast:
		return "CAST"
	case catalog.DimensionDirector:
		return "DIRECTOR"
	}
	return "CATEGORY"
}
