package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<html><body><table></table></body></html>"

func encoded(t *testing.T, encoding string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(page))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write([]byte(page))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.WriteString(page)
	}
	return buf.Bytes()
}

func TestGetHTMLDecodesBody(t *testing.T) {
	for _, encoding := range []string{"", "gzip", "br"} {
		t.Run("encoding "+encoding, func(t *testing.T) {
			body := encoded(t, encoding)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Write(body)
			}))
			defer server.Close()

			client := NewClient(WithHTTPClient(server.Client()), WithRateLimit(0, 0))
			data, err := client.GetHTML(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, page, string(data))
		})
	}
}

func TestGetHTMLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRateLimit(0, 0))
	_, err := client.GetHTML(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGetHTMLRespectsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	// one token, refilled far slower than the context allows
	client := NewClient(WithHTTPClient(server.Client()), WithRateLimit(0.01, 1))
	_, err := client.GetHTML(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetHTML(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
