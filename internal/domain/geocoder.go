package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	ID               string  `json:"id"`
	Lat              float64 `json:"latitude"`
	Lon              float64 `json:"longitude"`
	FormattedAddress string  `json:"fullName"`
	PlaceName        string  `json:"name"`
	Confidence       float64 `json:"-"` // 0.0–1.0 provider relevance
}

// Geocoder resolves free text to places and coordinates to labels.
type Geocoder interface {
	// Suggest returns up to five city/locality/neighborhood matches for query.
	Suggest(ctx context.Context, query string) ([]GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// PlaceSearcher finds real venues near a coordinate.
type PlaceSearcher interface {
	SearchPOI(ctx context.Context, query string, lat, lon float64) ([]POI, error)
}
