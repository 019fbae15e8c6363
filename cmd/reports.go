package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cine-insights/catalog"
	"cine-insights/metrics"
	"cine-insights/reports"
)

// titlesReport builds a report subcommand that loads every stored title and
// hands them to run
func titlesReport(use, short string, args cobra.PositionalArgs, run func(titles []catalog.Title, args []string) error) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := storedTitles(cmd.Context())
			if err != nil {
				return err
			}
			defer metrics.ObserveAnalysis(name, time.Now())
			return run(titles, args)
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Catalogue reports",
	}

	cmd.AddCommand(titlesReport("kinds", "Number of movies and TV shows", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderKinds(os.Stdout, reports.CountByKind(titles))
		}))

	cmd.AddCommand(titlesReport("ratings", "Most common rating for movies and TV shows", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderRatings(os.Stdout, reports.MostCommonRating(titles))
		}))

	var releasedKind string
	released := titlesReport("released <year>", "Titles released in a year", cobra.ExactArgs(1),
		func(titles []catalog.Title, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			kind, err := catalog.ParseKind(releasedKind)
			if err != nil {
				return err
			}
			return renderTitles(os.Stdout, reports.ReleasedIn(titles, kind, year))
		})
	released.Flags().StringVar(&releasedKind, "type", string(catalog.KindMovie), "Movie or TV Show")
	cmd.AddCommand(released)

	var countryLimit int
	countries := titlesReport("countries", "Countries with the most titles", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderValues(os.Stdout, "COUNTRY", reports.TopCountries(titles, countryLimit))
		})
	countries.Flags().IntVar(&countryLimit, "limit", 5, "number of countries, 0 for all")
	cmd.AddCommand(countries)

	cmd.AddCommand(titlesReport("longest", "Longest movies", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderTitles(os.Stdout, reports.LongestMovies(titles))
		}))

	var recentYears int
	recent := titlesReport("recent", "Titles added in the last years", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderTitles(os.Stdout, reports.AddedSince(titles, time.Now(), recentYears))
		})
	recent.Flags().IntVar(&recentYears, "years", 5, "how many years back")
	cmd.AddCommand(recent)

	cmd.AddCommand(titlesReport("director <name>", "Titles by a director", cobra.MinimumNArgs(1),
		func(titles []catalog.Title, args []string) error {
			return renderTitles(os.Stdout, reports.ByDirector(titles, strings.Join(args, " ")))
		}))

	var minSeasons int
	seasons := titlesReport("seasons", "TV shows with more than a number of seasons", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderTitles(os.Stdout, reports.SeriesWithMoreThan(titles, minSeasons))
		})
	seasons.Flags().IntVar(&minSeasons, "min", 5, "season count to exceed")
	cmd.AddCommand(seasons)

	cmd.AddCommand(titlesReport("genres", "Number of titles per genre", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderValues(os.Stdout, "GENRE", reports.CountByGenre(titles))
		}))

	var shareLimit int
	share := titlesReport("country-share <country>", "Years with the largest share of a country's additions", cobra.MinimumNArgs(1),
		func(titles []catalog.Title, args []string) error {
			return renderShares(os.Stdout, reports.CountryYearShare(titles, strings.Join(args, " "), shareLimit))
		})
	share.Flags().IntVar(&shareLimit, "limit", 5, "number of years, 0 for all")
	cmd.AddCommand(share)

	cmd.AddCommand(titlesReport("genre <genre>", "Titles listed in a genre", cobra.MinimumNArgs(1),
		func(titles []catalog.Title, args []string) error {
			return renderTitles(os.Stdout, reports.InGenre(titles, strings.Join(args, " ")))
		}))

	cmd.AddCommand(titlesReport("no-director", "Titles without a director", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderTitles(os.Stdout, reports.WithoutDirector(titles))
		}))

	var actorYears int
	actor := titlesReport("actor-count <actor>", "Movies an actor appeared in over the last years", cobra.MinimumNArgs(1),
		func(titles []catalog.Title, args []string) error {
			name := strings.Join(args, " ")
			n := reports.ActorMovieCount(titles, name, time.Now(), actorYears)
			_, err := fmt.Fprintf(os.Stdout, "%s appeared in %d movies released in the last %d years\n", name, n, actorYears)
			return err
		})
	actor.Flags().IntVar(&actorYears, "years", 10, "how many years back")
	cmd.AddCommand(actor)

	var actorLimit int
	topActors := titlesReport("top-actors <country>", "Actors in the most movies produced in a country", cobra.MinimumNArgs(1),
		func(titles []catalog.Title, args []string) error {
			return renderValues(os.Stdout, "ACTOR", reports.TopActors(titles, strings.Join(args, " "), actorLimit))
		})
	topActors.Flags().IntVar(&actorLimit, "limit", 10, "number of actors, 0 for all")
	cmd.AddCommand(topActors)

	cmd.AddCommand(titlesReport("durations", "Titles per duration bucket", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderDurations(os.Stdout, reports.DurationBuckets(titles))
		}))

	var keywords []string
	kw := titlesReport("keywords", "Titles labelled Bad or Good by description keywords", cobra.NoArgs,
		func(titles []catalog.Title, _ []string) error {
			return renderKeywords(os.Stdout, reports.KeywordCategories(titles, keywords))
		})
	kw.Flags().StringSliceVar(&keywords, "keywords", reports.DefaultKeywords, "keywords marking a description Bad")
	cmd.AddCommand(kw)

	return cmd
}
