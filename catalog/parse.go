package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDate is returned for added-date values in none of the accepted layouts
	ErrInvalidDate = errors.New("invalid added date")

	// ErrInvalidDuration is returned when a duration lacks a number or a known unit
	ErrInvalidDuration = errors.New("invalid duration")
)

// dateLayouts are tried in order. The dataset writes "September 25, 2021";
// storage writes ISO dates.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
}

// DateLayout is the layout dates are persisted with
const DateLayout = "2006-01-02"

// ParseAddedDate parses an added-date column value
func ParseAddedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// SplitList splits a comma-separated column, trimming entries and dropping empty ones
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinList is the inverse of SplitList
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

// Unit is the unit token of a duration
type Unit string

const (
	UnitMinutes Unit = "min"
	UnitSeasons Unit = "season"
)

// Duration is a parsed duration column such as "90 min" or "3 Seasons"
type Duration struct {
	Value int
	Unit  Unit
}

// ParseDuration splits a duration into its number and unit
func ParseDuration(s string) (Duration, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	switch strings.ToLower(fields[1]) {
	case "min", "mins", "minutes":
		return Duration{Value: n, Unit: UnitMinutes}, nil
	case "season", "seasons":
		return Duration{Value: n, Unit: UnitSeasons}, nil
	}
	return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
}
