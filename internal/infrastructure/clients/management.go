package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// ManagementClient talks to the management service, which owns depots,
// clients, containers and tariff bands. It implements both
// ports.DepotCatalog and ports.MasterData.
type ManagementClient struct {
	http httpClient
}

func NewManagementClient(baseURL string, timeout time.Duration, retries int, log zerolog.Logger) *ManagementClient {
	return &ManagementClient{http: newHTTPClient(baseURL, timeout, retries, log)}
}

type depotDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	DailyStayCost float64 `json:"daily_stay_cost"`
}

// ListDepots returns every depot known to the management service. Depots
// without coordinates are dropped; they cannot serve as waypoints.
func (c *ManagementClient) ListDepots(ctx context.Context) ([]domain.Depot, error) {
	var dtos []depotDTO
	if err := c.http.getJSON(ctx, "/depots", &dtos); err != nil {
		return nil, fmt.Errorf("list depots: %w", err)
	}

	depots := make([]domain.Depot, 0, len(dtos))
	for _, d := range dtos {
		if d.Lat == 0 && d.Lng == 0 {
			continue
		}
		depots = append(depots, domain.Depot{
			ID:            d.ID,
			Name:          d.Name,
			Address:       d.Address,
			Lat:           d.Lat,
			Lng:           d.Lng,
			DailyStayCost: d.DailyStayCost,
		})
	}
	return depots, nil
}

// ClientExists reports whether the management service knows the client.
func (c *ManagementClient) ClientExists(ctx context.Context, clientID string) (bool, error) {
	return c.exists(ctx, "/clients/"+url.PathEscape(clientID))
}

// ContainerExists reports whether the management service knows the container.
func (c *ManagementClient) ContainerExists(ctx context.Context, containerID string) (bool, error) {
	return c.exists(ctx, "/containers/"+url.PathEscape(containerID))
}

// HasApplicableTariff reports whether a tariff band covers the given cargo.
func (c *ManagementClient) HasApplicableTariff(ctx context.Context, weightKg, volumeM3 float64) (bool, error) {
	path := fmt.Sprintf("/tariffs/applicable?weight=%g&volume=%g", weightKg, volumeM3)
	return c.exists(ctx, path)
}

func (c *ManagementClient) exists(ctx context.Context, path string) (bool, error) {
	err := c.http.getJSON(ctx, path, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	return false, err
}
