// Package clients implements the HTTP collaborators the core depends on: the
// management service (depots, clients, containers, tariffs), the fleet
// service (trucks) and the external distance-matrix API. Every call carries
// an explicit timeout; transient failures are retried with bounded backoff
// and surface as domain.ErrUpstreamUnavailable once retries exhaust.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

const retryBaseDelay = 200 * time.Millisecond

// httpClient is the shared request/retry machinery of all collaborators.
type httpClient struct {
	base    string
	client  *http.Client
	retries int
	log     zerolog.Logger
}

func newHTTPClient(base string, timeout time.Duration, retries int, log zerolog.Logger) httpClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return httpClient{
		base:    base,
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		log:     log,
	}
}

// getJSON issues a GET and decodes the body into out. Network errors and 5xx
// responses are retried with linear backoff; 4xx responses are not, since
// repeating them cannot change the outcome.
func (c httpClient) getJSON(ctx context.Context, path string, out any) error {
	url := c.base + path

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}

		status, err := c.tryGetJSON(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if status >= 400 && status < 500 {
			if status == http.StatusNotFound {
				return errNotFound
			}
			return fmt.Errorf("%s returned %d: %w", url, status, domain.ErrUpstreamUnavailable)
		}

		c.log.Warn().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("upstream call failed")
	}

	return fmt.Errorf("%s: %v: %w", url, lastErr, domain.ErrUpstreamUnavailable)
}

func (c httpClient) tryGetJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// errNotFound is internal to this package: callers translate a 404 into
// their own domain meaning (unknown client, unknown tariff band, …).
var errNotFound = fmt.Errorf("upstream resource not found")
