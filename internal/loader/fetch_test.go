package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		RetryWait:  10 * time.Millisecond,
		UserAgent:  "test-agent",
	}
}

func TestHTTPFetcherDownloadsBundle(t *testing.T) {
	const bundle = `var dashboard = { get: function() {} };`

	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(bundle))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(testFetchOptions())

	body, err := fetcher.Fetch(context.Background(), srv.URL+"/remoteEntry.js")
	require.NoError(t, err)
	assert.Equal(t, bundle, string(body))
	assert.Equal(t, "test-agent", gotUA.Load())
}

func TestHTTPFetcherRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`var app = {};`))
	}))
	defer srv.Close()

	opts := testFetchOptions()
	opts.MaxRetries = 3
	fetcher := NewHTTPFetcher(opts)

	body, err := fetcher.Fetch(context.Background(), srv.URL+"/remoteEntry.js")
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPFetcherRejectsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(testFetchOptions())

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing.js")
	assert.Error(t, err)
}

func TestHTTPFetcherRejectsHTMLPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html><html><body>Not Found</body></html>`))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(testFetchOptions())

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/remoteEntry.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML")
}

func TestHTTPFetcherRejectsEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(testFetchOptions())

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/remoteEntry.js")
	assert.Error(t, err)
}

func TestHTTPFetcherSendsBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`var app = {};`))
	}))
	defer srv.Close()

	opts := testFetchOptions()
	opts.BearerToken = "secret-token"
	fetcher := NewHTTPFetcher(opts)

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/remoteEntry.js")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth.Load())
}

func TestHTTPFetcherCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	opts := testFetchOptions()
	opts.RateLimit = 0.001 // force the limiter to wait so cancel wins
	fetcher := NewHTTPFetcher(opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, srv.URL+"/remoteEntry.js")
	assert.Error(t, err)
}

func TestValidateBundle(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		wantErr bool
	}{
		{
			name: "javascript source",
			body: []byte(`(function(){var x = "remoteEntry";})();`),
		},
		{
			name:    "empty",
			body:    nil,
			wantErr: true,
		},
		{
			name:    "html error page",
			body:    []byte(`<!DOCTYPE html><html><head></head><body>502</body></html>`),
			wantErr: true,
		},
		{
			name:    "binary blob",
			body:    []byte{0x7f, 0x45, 0x4c, 0x46, 0x02, 0x01, 0x01, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBundle(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
