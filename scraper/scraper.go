package scraper

import (
	"fmt"
	"strings"

	"github.com/gocolly/colly"

	"cine-insights/logging"
)

// DefaultMaxBodySize caps a fetched dataset at 64MB
const DefaultMaxBodySize = 64 * 1024 * 1024

type ScraperInterface interface {
	Fetch(url string) ([]byte, error)
}

type Scraper struct {
	maxBodySize int
	userAgent   string
}

// Fetch downloads the raw body at url
func (s *Scraper) Fetch(url string) ([]byte, error) {
	c := colly.NewCollector()
	c.MaxBodySize = s.maxBodySize
	if s.userAgent != "" {
		c.UserAgent = s.userAgent
	}

	var body []byte
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		logging.Info().Str("url", r.URL.String()).Msg("Fetching dataset")
	})

	c.OnResponse(func(r *colly.Response) {
		logging.Info().Int("status", r.StatusCode).Int("bytes", len(r.Body)).Msg("Dataset response received")
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("failed to fetch %s (status %d): %w", url, r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

// IsURL reports whether a dataset source should be fetched over HTTP
func IsURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func NewScraper() ScraperInterface {
	return &Scraper{maxBodySize: DefaultMaxBodySize, userAgent: "cine-insights/1.0"}
}
