package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewClient(logger, Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RateLimit:  100,
		MaxResults: 5,
		CacheSize:  16,
		CacheTTL:   time.Minute,
	}, nil)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "diabetes symptoms", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results": [
			{"link": "https://www.mayoclinic.org/diabetes"},
			{"link": "www.diabetes.org/risk-test"},
			{"link": "https://www.google.com/search?q=diabetes"},
			{"link": "https://medlineplus.gov/diabetes.html"}
		]}`))
	})

	results, err := client.Search(context.Background(), "diabetes symptoms")
	require.NoError(t, err)

	// Scheme is completed, provider self-links are dropped
	assert.Equal(t, []string{
		"https://www.mayoclinic.org/diabetes",
		"https://www.diabetes.org/risk-test",
		"https://medlineplus.gov/diabetes.html",
	}, results)
}

func TestSearch_CachesResults(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results": [{"link": "https://medlineplus.gov/diabetes.html"}]}`))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		results, err := client.Search(ctx, "HbA1c reference range")
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
	assert.Equal(t, 1, calls, "repeated queries must hit the cache")
}

func TestSearch_RateLimitedFallsBackToDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	results, err := client.Search(context.Background(), "glucose levels")
	require.NoError(t, err)
	assert.Equal(t, DefaultResources(), results)
}

func TestSearch_EmptyResultsFallBackToDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results": []}`))
	})

	results, err := client.Search(context.Background(), "obscure query")
	require.NoError(t, err)
	assert.Equal(t, DefaultResources(), results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("empty queries must not reach the provider")
	})

	_, err := client.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSearch_MaxResultsCap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic_results": [
			{"link": "https://a.example.org"},
			{"link": "https://b.example.org"},
			{"link": "https://c.example.org"},
			{"link": "https://d.example.org"},
			{"link": "https://e.example.org"},
			{"link": "https://f.example.org"}
		]}`))
	})

	results, err := client.Search(context.Background(), "diabetes care")
	require.NoError(t, err)
	assert.Len(t, results, 5)
}
