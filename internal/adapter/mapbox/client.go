package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	provider       = "mapbox"

	suggestTypes = "place,locality,neighborhood"
	suggestLimit = "5"
	poiLimit     = "7"
)

// Client implements domain.Geocoder and domain.PlaceSearcher using the
// Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Suggest returns up to five city, locality, or neighborhood matches for query.
func (c *Client) Suggest(ctx context.Context, query string) ([]domain.GeocodingResult, error) {
	params := url.Values{
		"access_token": {c.token},
		"types":        {suggestTypes},
		"limit":        {suggestLimit},
	}

	resp, err := c.doRequest(ctx, c.forwardURL(query, params))
	if err != nil {
		return nil, err
	}

	results := make([]domain.GeocodingResult, 0, len(resp.Features))
	for _, f := range resp.Features {
		results = append(results, f.toResult())
	}
	return results, nil
}

// ReverseGeocode converts coordinates to place details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lon, lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}

	resp, err := c.doRequest(ctx, u+"?"+params.Encode())
	if err != nil {
		return domain.GeocodingResult{}, err
	}
	if len(resp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}
	return resp.Features[0].toResult(), nil
}

// SearchPOI finds points of interest matching query, biased toward lat/lon.
func (c *Client) SearchPOI(ctx context.Context, query string, lat, lon float64) ([]domain.POI, error) {
	params := url.Values{
		"access_token": {c.token},
		"types":        {"poi"},
		"limit":        {poiLimit},
		"proximity":    {fmt.Sprintf("%f,%f", lon, lat)},
	}

	resp, err := c.doRequest(ctx, c.forwardURL(query, params))
	if err != nil {
		return nil, err
	}

	pois := make([]domain.POI, 0, len(resp.Features))
	for _, f := range resp.Features {
		if len(f.Center) != 2 {
			continue
		}
		pois = append(pois, domain.POI{
			ID:         f.ID,
			Name:       f.shortName(),
			Address:    f.PlaceName,
			Latitude:   f.Center[1],
			Longitude:  f.Center[0],
			Categories: f.Properties.categories(),
		})
	}
	return pois, nil
}

func (c *Client) forwardURL(query string, params url.Values) string {
	return fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(query), params.Encode())
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return response{}, fmt.Errorf("mapbox request: %w: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("mapbox API error", "status", resp.StatusCode, "body", string(body))
		return response{}, fmt.Errorf("mapbox API error: status %d: %w", resp.StatusCode, domain.ErrUpstreamFailure)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return response{}, fmt.Errorf("decode response: %w: %w", domain.ErrUpstreamFailure, err)
	}

	outcome := "success"
	if len(mapboxResp.Features) == 0 {
		outcome = "empty"
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	return mapboxResp, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Center     []float64  `json:"center"` // [lon, lat]
	PlaceName  string     `json:"place_name"`
	Text       string     `json:"text"`
	Relevance  float64    `json:"relevance"`
	Properties properties `json:"properties"`
}

type properties struct {
	Category string `json:"category"`
	Address  string `json:"address"`
}

func (f feature) toResult() domain.GeocodingResult {
	result := domain.GeocodingResult{
		ID:               f.ID,
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result
}

func (f feature) shortName() string {
	if f.Text != "" {
		return f.Text
	}
	name, _, _ := strings.Cut(f.PlaceName, ",")
	return strings.TrimSpace(name)
}

// categories splits Mapbox's comma-separated category list.
func (p properties) categories() []string {
	if p.Category == "" {
		return nil
	}
	parts := strings.Split(p.Category, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
