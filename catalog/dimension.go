package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDimension = errors.New("unknown dimension")

// Dimension names a multi-valued column that titles can be grouped by
type Dimension string

const (
	DimensionGenre    Dimension = "genre"
	DimensionCountry  Dimension = "country"
	DimensionCast     Dimension = "cast"
	DimensionDirector Dimension = "director"
)

// ParseDimension accepts the dimension name case-insensitively
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case DimensionGenre, DimensionCountry, DimensionCast, DimensionDirector:
		return d, nil
	case "listed_in", "category":
		return DimensionGenre, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownDimension, s)
}
