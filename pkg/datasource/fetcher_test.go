package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/richard-senior/matchodds/pkg/metrics"
	"github.com/richard-senior/matchodds/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned pages and counts calls
type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls++
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(page), nil
}

func TestCachingFetcher(t *testing.T) {
	next := &fakeFetcher{pages: map[string]string{"https://stats/a": "<p>a</p>"}}
	cache := NewCachingFetcher(next, t.TempDir())

	for i := 0; i < 3; i++ {
		data, err := cache.Fetch(context.Background(), "https://stats/a")
		require.NoError(t, err)
		assert.Equal(t, "<p>a</p>", string(data))
	}
	assert.Equal(t, 1, next.calls)

	_, err := cache.Fetch(context.Background(), "https://stats/missing")
	assert.Error(t, err)
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(leaguePage))
	}))
	defer server.Close()

	client := transport.NewClient(transport.WithHTTPClient(server.Client()), transport.WithRateLimit(0, 0))
	scraper := NewScraper(NewHTTPFetcher(client))

	standings, err := scraper.Standings(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, standings, 2)
}

func TestScraper(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"squad":  squadPage,
		"league": leaguePage,
	}}
	scraper := NewScraper(fetcher)

	players, err := scraper.Players(context.Background(), "squad", "Manchester City")
	require.NoError(t, err)
	assert.Len(t, players, 2)

	_, err = scraper.Players(context.Background(), "league", "Liverpool")
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = scraper.Standings(context.Background(), "nowhere")
	assert.Error(t, err)
}

func TestMeteredFetcher(t *testing.T) {
	m := metrics.New()
	next := &fakeFetcher{pages: map[string]string{"https://stats/a": "<p>a</p>"}}
	f := NewMeteredFetcher(next, "http", m)

	_, err := f.Fetch(context.Background(), "https://stats/a")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "https://stats/missing")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("http", metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("http", metrics.StatusError)))
}
