// Package datasource fetches and parses the season data the engine runs on
package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/metrics"
	"github.com/richard-senior/matchodds/pkg/transport"
)

// Fetcher returns the HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches plain HTML over the rate limited client
type HTTPFetcher struct {
	client *transport.Client
}

// NewHTTPFetcher wraps a transport client, nil uses the default client
func NewHTTPFetcher(client *transport.Client) *HTTPFetcher {
	if client == nil {
		client = transport.NewClient()
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger.Inform("HTTP get called for", url)
	return f.client.GetHTML(ctx, url)
}

// CachingFetcher keeps every fetched page on disk and serves repeats from there
// Delete the cache directory to force a refresh
type CachingFetcher struct {
	next Fetcher
	dir  string
}

func NewCachingFetcher(next Fetcher, dir string) *CachingFetcher {
	return &CachingFetcher{next: next, dir: dir}
}

// cachePath names the cache file for a url
func (f *CachingFetcher) cachePath(url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+".html")
}

func (f *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	path := f.cachePath(url)
	if data, err := os.ReadFile(path); err == nil {
		logger.Debug("Loaded page from cache", path)
		return data, nil
	}

	data, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Warn("Failed to write cache file", path, err)
	}
	return data, nil
}

// MeteredFetcher counts fetches by source and outcome
type MeteredFetcher struct {
	next    Fetcher
	source  string
	metrics *metrics.EvaluationMetrics
}

func NewMeteredFetcher(next Fetcher, source string, m *metrics.EvaluationMetrics) *MeteredFetcher {
	return &MeteredFetcher{next: next, source: source, metrics: m}
}

func (f *MeteredFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.next.Fetch(ctx, url)
	f.metrics.RecordFetch(f.source, err)
	return data, err
}
