package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// FleetClient talks to the fleet service and implements ports.FleetService.
type FleetClient struct {
	http httpClient
}

func NewFleetClient(baseURL string, timeout time.Duration, retries int, log zerolog.Logger) *FleetClient {
	return &FleetClient{http: newHTTPClient(baseURL, timeout, retries, log)}
}

type truckDTO struct {
	Plate            string  `json:"plate"`
	WeightCapacityKg float64 `json:"weight_capacity_kg"`
	VolumeCapacityM3 float64 `json:"volume_capacity_m3"`
	Available        bool    `json:"available"`
}

// IsAvailable reports whether the named truck exists and is marked available.
// An unknown plate counts as unavailable, not as an error.
func (c *FleetClient) IsAvailable(ctx context.Context, plate string) (bool, error) {
	var truck truckDTO
	err := c.http.getJSON(ctx, "/trucks/"+url.PathEscape(plate), &truck)
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("truck availability: %w", err)
	}
	return truck.Available, nil
}

// TruckFitsCargo asks the fleet service for trucks able to carry the cargo
// and reports whether the named plate is among them.
func (c *FleetClient) TruckFitsCargo(ctx context.Context, plate string, weightKg, volumeM3 float64) (bool, error) {
	path := fmt.Sprintf("/trucks/suitable?weight=%g&volume=%g", weightKg, volumeM3)

	var suitable []truckDTO
	if err := c.http.getJSON(ctx, path, &suitable); err != nil {
		return false, fmt.Errorf("truck capacity: %w", err)
	}

	for _, t := range suitable {
		if t.Plate == plate {
			return true, nil
		}
	}
	return false, nil
}
