package domain

import (
	"context"
	"log/slog"
)

// LiveOccupancy is a foot-traffic reading for one venue.
type LiveOccupancy struct {
	VenueID            string `json:"venueId,omitempty"`
	VenueName          string `json:"venueName,omitempty"`
	VenueAddress       string `json:"venueAddress,omitempty"`
	LiveBusyness       int    `json:"liveBusyness"`
	LiveAvailable      bool   `json:"liveAvailable"`
	ForecastedBusyness int    `json:"forecastedBusyness"`
	ForecastAvailable  bool   `json:"forecastAvailable"`
}

// Available reports whether the reading carries any usable busyness value.
func (o LiveOccupancy) Available() bool {
	return o.LiveAvailable || o.ForecastAvailable
}

// Busyness prefers the live value and falls back to the forecast.
func (o LiveOccupancy) Busyness() (int, bool) {
	switch {
	case o.LiveAvailable:
		return o.LiveBusyness, true
	case o.ForecastAvailable:
		return o.ForecastedBusyness, true
	default:
		return 0, false
	}
}

// OccupancyProvider looks up live foot traffic for a venue.
type OccupancyProvider interface {
	LiveOccupancy(ctx context.Context, venueName, venueAddress string) (LiveOccupancy, error)
}

// EnrichWithOccupancy overrides a place's base popularity with live or
// forecast busyness when the provider has it. If provider is nil, the lookup
// fails, or no value is available, the place is returned unchanged
// (graceful degradation).
func EnrichWithOccupancy(ctx context.Context, place Place, provider OccupancyProvider, logger *slog.Logger) Place {
	if provider == nil {
		return place
	}

	occ, err := provider.LiveOccupancy(ctx, place.Name, place.Address)
	if err != nil {
		logger.Warn("live occupancy lookup failed",
			"place_id", place.ID,
			"venue", place.Name,
			"error", err,
		)
		return place
	}

	busyness, ok := occ.Busyness()
	if !ok {
		logger.Debug("no live occupancy for venue", "place_id", place.ID, "venue", place.Name)
		return place
	}

	place.BasePopularity = ClampScore(busyness)
	place.Occupancy = &occ
	return place
}
