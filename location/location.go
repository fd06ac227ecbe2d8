// Package location supplies a best-effort coordinate snapshot for new
// reports. Providers never block report creation: any failure is
// reported as an error and the caller proceeds without coordinates.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"emergency-report-service/models"
)

// Provider returns the current best-effort location or an error when
// no location can be determined.
type Provider interface {
	Current(ctx context.Context) (*models.Location, error)
}

// HTTPProvider queries an external geolocation endpoint that returns
// a JSON coordinate.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider backed by the given geolocation URL
func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geolocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func (p *HTTPProvider) Current(ctx context.Context) (*models.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query geolocation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation service returned status %d", resp.StatusCode)
	}

	var loc geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	log.Infof("Acquired location %.6f,%.6f (±%.0fm)", loc.Latitude, loc.Longitude, loc.Accuracy)
	return &models.Location{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  loc.Accuracy,
	}, nil
}

// FixedProvider always returns the same configured coordinate. Used
// for fixed installations such as roadside call boxes.
type FixedProvider struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

func (p *FixedProvider) Current(ctx context.Context) (*models.Location, error) {
	return &models.Location{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Accuracy:  p.Accuracy,
	}, nil
}

// Unavailable is a provider that never has a location.
type Unavailable struct{}

func (Unavailable) Current(ctx context.Context) (*models.Location, error) {
	return nil, fmt.Errorf("no location provider configured")
}
