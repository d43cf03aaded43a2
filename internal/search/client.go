// Package search retrieves medical resource links for OCR-extracted text.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultMaxResults = 5

// errRateLimited marks an upstream 429 response.
var errRateLimited = errors.New("search provider rate limited")

// Config holds the search client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  int
	MaxResults int
	CacheSize  int
	CacheTTL   time.Duration
}

// Client queries the configured search provider with rate limiting, a
// circuit breaker and a two-tier result cache. When the provider is
// rate limited or the breaker is open it serves the curated default
// resource list instead of failing.
type Client struct {
	log        *logrus.Logger
	http       *resty.Client
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *expirable.LRU[string, []string]
	redis      *RedisCache
	cacheTTL   time.Duration
}

// searchResponse is the provider's result payload. Only the organic
// result links are used.
type searchResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

// NewClient creates a search client. redisCache may be nil, in which case
// only the in-process LRU is used.
func NewClient(logger *logrus.Logger, config Config, redisCache *RedisCache) *Client {
	if config.MaxResults <= 0 {
		config.MaxResults = defaultMaxResults
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 256
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 1
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "WebSearch",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		log:        logger,
		http:       httpClient,
		apiKey:     config.APIKey,
		maxResults: config.MaxResults,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit),
		breaker:    breaker,
		cache:      expirable.NewLRU[string, []string](config.CacheSize, nil, config.CacheTTL),
		redis:      redisCache,
		cacheTTL:   config.CacheTTL,
	}
}

// DefaultResources is the curated fallback link list served when the
// search provider is unavailable or returns nothing usable.
func DefaultResources() []string {
	return []string{
		"https://www.diabetes.org/",
		"https://www.niddk.nih.gov/health-information/diabetes",
		"https://www.who.int/health-topics/diabetes",
	}
}

// Search returns up to MaxResults medical resource links for a query.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	if results, ok := c.cache.Get(query); ok {
		c.log.WithField("query_len", len(query)).Debug("Search cache hit")
		return results, nil
	}

	if c.redis != nil {
		if results, found, err := c.redis.Get(ctx, query); err == nil && found {
			c.cache.Add(query, results)
			return results, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, errRateLimited) {
			c.log.WithError(err).Warn("Search unavailable, serving default resources")
			return DefaultResources(), nil
		}
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	results := normalizeLinks(result.(*searchResponse), c.maxResults)
	if len(results) == 0 {
		return DefaultResources(), nil
	}

	c.cache.Add(query, results)
	if c.redis != nil {
		if cacheErr := c.redis.Set(ctx, query, results, c.cacheTTL); cacheErr != nil {
			c.log.WithError(cacheErr).Warn("Failed to cache search results")
		}
	}

	return results, nil
}

// fetch performs one provider request.
func (c *Client) fetch(ctx context.Context, query string) (*searchResponse, error) {
	var payload searchResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"api_key": c.apiKey,
		}).
		SetResult(&payload).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("executing search request: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode())
	}

	return &payload, nil
}

// normalizeLinks completes missing schemes, drops provider self-links and
// caps the result count.
func normalizeLinks(payload *searchResponse, max int) []string {
	var results []string
	for _, item := range payload.OrganicResults {
		url := strings.TrimSpace(item.Link)
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		if strings.Contains(url, "google.com") {
			continue
		}
		results = append(results, url)
		if len(results) == max {
			break
		}
	}
	return results
}
