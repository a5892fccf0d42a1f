package besttime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
)

const (
	defaultBaseURL = "https://besttime.app/api/v1"
	provider       = "besttime"

	// DefaultSearchRadius is the venue search radius in meters when none is given.
	DefaultSearchRadius = 2000
	searchResultLimit   = "20"
	maxErrorBody        = 4096
)

// APIError is a non-success response from the BestTime API. It unwraps to
// domain.ErrUpstreamFailure and carries the upstream status and body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("besttime API error: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return domain.ErrUpstreamFailure }

// Client talks to the BestTime foot-traffic API. It implements
// domain.OccupancyProvider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a BestTime client using the private API key.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// LiveResult is the live foot-traffic reading for a single venue.
type LiveResult struct {
	VenueID            string          `json:"venue_id,omitempty"`
	VenueName          string          `json:"venue_name,omitempty"`
	VenueAddress       string          `json:"venue_address,omitempty"`
	LiveBusyness       *int            `json:"live_busyness,omitempty"`
	LiveAvailable      bool            `json:"live_busyness_available"`
	ForecastedBusyness *int            `json:"forecasted_busyness,omitempty"`
	DayInfo            json.RawMessage `json:"day_info,omitempty"`
	HourInfo           json.RawMessage `json:"hour_info,omitempty"`
	RawData            json.RawMessage `json:"raw_data"`
}

// Occupancy converts the reading to the domain type used for enrichment.
func (r LiveResult) Occupancy() domain.LiveOccupancy {
	occ := domain.LiveOccupancy{
		VenueID:      r.VenueID,
		VenueName:    r.VenueName,
		VenueAddress: r.VenueAddress,
	}
	if r.LiveBusyness != nil && r.LiveAvailable {
		occ.LiveBusyness = *r.LiveBusyness
		occ.LiveAvailable = true
	}
	if r.ForecastedBusyness != nil {
		occ.ForecastedBusyness = *r.ForecastedBusyness
		occ.ForecastAvailable = true
	}
	return occ
}

// Live fetches the live busyness for a venue identified by name and address.
func (c *Client) Live(ctx context.Context, venueName, venueAddress string) (LiveResult, error) {
	if venueName == "" || venueAddress == "" {
		return LiveResult{}, fmt.Errorf("venue_name and venue_address parameters required: %w", domain.ErrInvalidRequest)
	}

	params := url.Values{
		"venue_name":    {venueName},
		"venue_address": {venueAddress},
	}
	body, err := c.post(ctx, "/forecasts/live", params)
	if err != nil {
		return LiveResult{}, err
	}

	var resp liveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return LiveResult{}, fmt.Errorf("decode live response: %w: %w", domain.ErrUpstreamFailure, err)
	}

	return LiveResult{
		VenueID:            resp.VenueInfo.VenueID,
		VenueName:          resp.VenueInfo.VenueName,
		VenueAddress:       resp.VenueInfo.VenueAddress,
		LiveBusyness:       resp.Analysis.LiveBusyness,
		LiveAvailable:      resp.Analysis.LiveAvailable,
		ForecastedBusyness: resp.Analysis.ForecastedBusyness,
		DayInfo:            resp.Analysis.DayInfo,
		HourInfo:           resp.Analysis.HourAnalysis,
		RawData:            json.RawMessage(body),
	}, nil
}

// LiveOccupancy implements domain.OccupancyProvider.
func (c *Client) LiveOccupancy(ctx context.Context, venueName, venueAddress string) (domain.LiveOccupancy, error) {
	res, err := c.Live(ctx, venueName, venueAddress)
	if err != nil {
		return domain.LiveOccupancy{}, err
	}
	return res.Occupancy(), nil
}

// VenueSearch is a free-text venue search, optionally centred on a coordinate.
type VenueSearch struct {
	Query  string   `json:"query"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
	Radius int      `json:"radius,omitempty"`
}

// HasLocation reports whether both coordinates were supplied.
func (s VenueSearch) HasLocation() bool { return s.Lat != nil && s.Lng != nil }

// SearchVenues runs a BestTime venue search and returns the upstream JSON.
// When the search has a centre, venues in the response are annotated with
// their distance from it.
func (c *Client) SearchVenues(ctx context.Context, s VenueSearch) (json.RawMessage, error) {
	if s.Query == "" {
		return nil, fmt.Errorf("query parameter required: %w", domain.ErrInvalidRequest)
	}
	if s.Radius <= 0 {
		s.Radius = DefaultSearchRadius
	}

	params := url.Values{
		"q":      {s.Query},
		"num":    {searchResultLimit},
		"format": {"raw"},
	}
	if s.HasLocation() {
		params.Set("lat", strconv.FormatFloat(*s.Lat, 'f', -1, 64))
		params.Set("lng", strconv.FormatFloat(*s.Lng, 'f', -1, 64))
		params.Set("radius", strconv.Itoa(s.Radius))
	}

	body, err := c.post(ctx, "/venues/search", params)
	if err != nil {
		return nil, err
	}
	if !s.HasLocation() {
		return json.RawMessage(body), nil
	}

	annotated, err := annotateDistances(body, *s.Lat, *s.Lng)
	if err != nil {
		c.logger.Warn("could not annotate venue distances", "error", err)
		return json.RawMessage(body), nil
	}
	return annotated, nil
}

func (c *Client) post(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("BestTime API key not configured: %w", domain.ErrMissingConfiguration)
	}
	params.Set("api_key_private", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("besttime request: %w: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("besttime API error", "path", path, "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("read response: %w: %w", domain.ErrUpstreamFailure, err)
	}
	if !json.Valid(body) {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("besttime returned invalid JSON: %w", domain.ErrUpstreamFailure)
	}

	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return body, nil
}

// BestTime API response types.

type liveResponse struct {
	Analysis  liveAnalysis `json:"analysis"`
	VenueInfo venueInfo    `json:"venue_info"`
}

type liveAnalysis struct {
	LiveBusyness       *int            `json:"venue_live_busyness"`
	LiveAvailable      bool            `json:"venue_live_busyness_available"`
	ForecastedBusyness *int            `json:"venue_forecasted_busyness"`
	DayInfo            json.RawMessage `json:"day_info"`
	HourAnalysis       json.RawMessage `json:"hour_analysis"`
}

type venueInfo struct {
	VenueID      string `json:"venue_id"`
	VenueName    string `json:"venue_name"`
	VenueAddress string `json:"venue_address"`
}
