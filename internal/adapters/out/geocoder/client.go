// Package geocoder resolves addresses through a Nominatim-compatible HTTP
// search API.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"
)

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// HTTPGeocoder implements ports.Geocoder. Deadlines come from ctx; the
// resolver sets one per call.
type HTTPGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	country   string
}

// NewHTTPGeocoder builds a client for baseURL. country, if set, restricts
// results to that ISO 3166-1 code.
func NewHTTPGeocoder(client *http.Client, baseURL, userAgent, country string) *HTTPGeocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPGeocoder{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		country:   country,
	}
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (kernel.GeoPoint, error) {
	started := time.Now()
	point, err := g.search(ctx, address)
	metrics.GeocodeRequestDuration.Observe(time.Since(started).Seconds())

	switch {
	case err == nil:
		metrics.GeocodeRequestsTotal.WithLabelValues("resolved").Inc()
	case errors.Is(err, ports.ErrAddressNotFound):
		metrics.GeocodeRequestsTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
	}
	return point, err
}

func (g *HTTPGeocoder) search(ctx context.Context, address string) (kernel.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if g.country != "" {
		params.Set("countrycodes", g.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return kernel.GeoPoint{}, ports.ErrAddressNotFound
	case http.StatusTooManyRequests:
		return kernel.GeoPoint{}, errors.New("geocoder rate limit exceeded (429)")
	default:
		return kernel.GeoPoint{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode body: %w", err)
	}
	if len(results) == 0 {
		return kernel.GeoPoint{}, ports.ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}
	return kernel.NewGeoPoint(lat, lng)
}
