package s1_universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/bist-swing/pkg/httputil"
	"github.com/wonny/bist-swing/pkg/logger"
	"github.com/wonny/bist-swing/pkg/redis"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{3,6}$`)

// Scraper pulls index constituents from an HTML page
type Scraper struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
}

// NewScraper creates a scraper. cache may be backed by a disabled Redis client.
func NewScraper(httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		cache:      cache,
		logger:     log.WithComponent("universe_scraper"),
	}
}

// Scrape fetches url and returns the ticker codes found in cells matching selector
func (s *Scraper) Scrape(ctx context.Context, url, selector string) ([]string, error) {
	key := redis.UniverseKey(url + "|" + selector)

	var cached []string
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	resp, err := s.httpClient.Get(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("fetch constituents page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents page: status %d", resp.StatusCode)
	}

	codes, err := ParseConstituents(resp.Body, selector)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, codes, redis.TTLDaily); err != nil {
		s.logger.WithError(err).Warn("Failed to cache constituents")
	}

	s.logger.WithFields(map[string]interface{}{
		"url":   url,
		"count": len(codes),
	}).Info("Scraped index constituents")

	return codes, nil
}

// ParseConstituents extracts ticker codes from an HTML document.
// Each matching element contributes its first whitespace-separated token if it looks like a code.
func ParseConstituents(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse constituents html: %w", err)
	}

	var codes []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		fields := strings.Fields(strings.ToUpper(sel.Text()))
		if len(fields) == 0 {
			return
		}
		if codePattern.MatchString(fields[0]) {
			codes = append(codes, fields[0])
		}
	})

	if len(codes) == 0 {
		return nil, fmt.Errorf("no tickers matched selector %q", selector)
	}
	return codes, nil
}
