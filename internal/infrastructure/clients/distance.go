package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// DistanceClient resolves driving distance and duration through an external
// distance-matrix API and implements ports.DistanceProvider. A circuit
// breaker keeps a flapping upstream from stalling route construction: once
// open, calls fail fast and the caller's great-circle fallback takes over.
type DistanceClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger
}

func NewDistanceClient(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *DistanceClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "distance-matrix",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("distance provider breaker state changed")
		},
	})

	return &DistanceClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		breaker:  breaker,
		log:      log,
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // metres
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// DistanceAndDuration queries the distance-matrix API for the driving
// distance (km) and duration (hours) between two coordinate pairs.
func (c *DistanceClient) DistanceAndDuration(ctx context.Context, a, b domain.Coordinates) (float64, float64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		dd, err := c.query(ctx, a, b)
		if err != nil {
			return nil, err
		}
		return dd, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("distance matrix: %v: %w", err, domain.ErrUpstreamUnavailable)
	}

	dd := result.([2]float64)
	return dd[0], dd[1], nil
}

func (c *DistanceClient) query(ctx context.Context, a, b domain.Coordinates) ([2]float64, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", a.Lat, a.Lng))
	params.Set("destinations", fmt.Sprintf("%f,%f", b.Lat, b.Lng))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return [2]float64{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return [2]float64{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return [2]float64{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return [2]float64{}, err
	}
	if body.Status != "OK" || len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return [2]float64{}, fmt.Errorf("response status %q", body.Status)
	}

	element := body.Rows[0].Elements[0]
	if element.Status != "OK" {
		return [2]float64{}, fmt.Errorf("no route between points: %s", element.Status)
	}

	km := element.Distance.Value / 1000
	hours := element.Duration.Value / 3600
	return [2]float64{km, hours}, nil
}
