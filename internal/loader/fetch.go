package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/resilience"
)

// Fetcher retrieves raw bundle bytes from a network location.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchOptions configures the HTTP fetcher.
type FetchOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryWait   time.Duration
	RateLimit   float64 // requests per second, 0 = unlimited
	BearerToken string  // forwarded from the external auth provider
	UserAgent   string
}

// DefaultFetchOptions returns production-ready fetcher configuration.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryWait:  1 * time.Second,
		UserAgent:  "PortalOS-Host/1.0",
	}
}

// HTTPFetcher downloads remote entry bundles with retry, compression,
// rate limiting, and circuit breaker protection.
type HTTPFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewHTTPFetcher creates a production-ready bundle fetcher.
func NewHTTPFetcher(opts FetchOptions) *HTTPFetcher {
	// Retryable transport underneath, transparent gzip on top
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.MaxRetries
	retryClient.RetryWaitMin = opts.RetryWait
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/javascript, text/javascript, */*").
		SetTransport(gzhttp.Transport(retryClient.StandardClient().Transport))

	if opts.BearerToken != "" {
		client.SetAuthToken(opts.BearerToken)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(opts.RateLimit))
	}

	breaker := resilience.New("remote-fetch", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// CDNs vary in reliability; only trip on sustained failure
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	return &HTTPFetcher{
		client:  client,
		limiter: limiter,
		breaker: breaker,
	}
}

// Fetch downloads a bundle and validates it looks like script content.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("unexpected status %s", resp.Status())
		}
		return resp.Body(), nil
	})
	if err != nil {
		if err == resilience.ErrCircuitOpen {
			return nil, fmt.Errorf("remote entry host unavailable: %w", err)
		}
		return nil, err
	}

	body := result.([]byte)
	if err := validateBundle(body); err != nil {
		return nil, err
	}
	return body, nil
}

// BreakerState exposes the fetch circuit state for health reporting.
func (f *HTTPFetcher) BreakerState() resilience.State {
	return f.breaker.State()
}

// validateBundle rejects payloads that cannot be a script bundle, most
// commonly an HTML error page served where the entry file should be.
func validateBundle(body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("empty container payload")
	}

	detected := mimetype.Detect(body)
	if detected.Is("text/html") {
		return fmt.Errorf("container payload is HTML, not a script bundle (%s)", detected.String())
	}
	if strings.HasPrefix(detected.String(), "text/") ||
		detected.Is("application/javascript") {
		return nil
	}
	return fmt.Errorf("container payload has unexpected content type %s", detected.String())
}
