// Package httpclient provides the rate-limited, retrying transport shared by
// the catalog clients.
package httpclient

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

// Transport wraps an http.RoundTripper to provide rate limiting and automatic
// retries on 429/503 and transport errors. Only requests without a body are
// retried.
type Transport struct {
	base    http.RoundTripper
	limiter *rate.Limiter

	RetryCount int
	RetryBase  time.Duration
}

// NewTransport creates a transport that allows one request per
// minRequestInterval. A zero interval disables rate limiting.
func NewTransport(base http.RoundTripper, minRequestInterval time.Duration) *Transport {
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
	}
	limit := rate.Inf
	if minRequestInterval > 0 {
		limit = rate.Every(minRequestInterval)
	}
	return &Transport{
		base:       base,
		limiter:    rate.NewLimiter(limit, 1),
		RetryCount: constants.DefaultRetryCount,
		RetryBase:  constants.DefaultRetryBase,
	}
}

// NewClient returns an *http.Client backed by a Transport.
func NewClient(minRequestInterval, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(nil, minRequestInterval),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	attempts := t.RetryCount
	if attempts < 1 || (req.Body != nil && req.Body != http.NoBody) {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(req)
		var backoffWait time.Duration
		switch {
		case err != nil:
			lastErr = err
			backoffWait = time.Duration(attempt+1) * t.RetryBase
		case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
			if attempt == attempts-1 {
				return resp, nil
			}
			retryAfter := parseRetryAfter(resp)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)

			backoffWait = time.Duration(attempt+1) * t.RetryBase
			if retryAfter > backoffWait {
				backoffWait = retryAfter
			}
		default:
			return resp, nil
		}

		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(backoffWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
