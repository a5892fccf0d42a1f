package domain

import (
	"fmt"
	"strings"
)

// PlaceType is the closed set of venue categories.
type PlaceType string

const (
	PlaceBar        PlaceType = "bar"
	PlaceRestaurant PlaceType = "restaurant"
	PlaceCafe       PlaceType = "cafe"
	PlaceClub       PlaceType = "club"
	PlaceGym        PlaceType = "gym"
	PlaceShopping   PlaceType = "shopping"
)

// FilterAll selects every place type.
const FilterAll = "all"

// AllPlaceTypes lists every category in display order.
func AllPlaceTypes() []PlaceType {
	return []PlaceType{PlaceBar, PlaceRestaurant, PlaceCafe, PlaceClub, PlaceGym, PlaceShopping}
}

// ParsePlaceType validates a category name.
func ParsePlaceType(s string) (PlaceType, error) {
	t := PlaceType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlaceTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown place type %q", ErrInvalidRequest, s)
}

// ParseFilter validates a category filter, which is either "all" or a PlaceType.
// The empty string means "all".
func ParseFilter(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	t, err := ParsePlaceType(s)
	if err != nil {
		return "", err
	}
	return string(t), nil
}

var peakHoursByType = map[PlaceType][]int{
	PlaceBar:        {21, 22, 23, 0, 1},
	PlaceRestaurant: {12, 13, 18, 19, 20},
	PlaceCafe:       {7, 8, 9, 10, 11},
	PlaceClub:       {23, 0, 1, 2, 3},
	PlaceGym:        {6, 7, 17, 18, 19},
	PlaceShopping:   {12, 13, 14, 15, 16},
}

// PeakHours returns a fresh copy of the category's typical busiest hours.
func (t PlaceType) PeakHours() []int {
	src := peakHoursByType[t]
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// Icon returns the emoji used for map markers.
func (t PlaceType) Icon() string {
	switch t {
	case PlaceBar:
		return "🍺"
	case PlaceRestaurant:
		return "🍽️"
	case PlaceCafe:
		return "☕"
	case PlaceClub:
		return "🎵"
	case PlaceGym:
		return "💪"
	case PlaceShopping:
		return "🛍️"
	default:
		return "📍"
	}
}

// weekendBoosted reports whether the category draws bigger weekend crowds.
func (t PlaceType) weekendBoosted() bool {
	return t == PlaceBar || t == PlaceClub || t == PlaceRestaurant
}

// DataQuality records where a place's attributes came from.
type DataQuality string

const (
	// DataLive is a real venue from a point-of-interest API. Rating, peak
	// hours and popularity are still synthetic unless Occupancy is set.
	DataLive DataQuality = "live"
	// DataSynthetic is a generated demo venue or a static catalog entry.
	DataSynthetic DataQuality = "synthetic"
)

// Place is a point of interest. Treat it as immutable once constructed.
type Place struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           PlaceType      `json:"type"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Address        string         `json:"address"`
	Rating         float64        `json:"rating"`
	PriceLevel     int            `json:"priceLevel"`
	PeakHours      []int          `json:"peakHours"`
	BasePopularity int            `json:"basePopularity"`
	Source         DataQuality    `json:"source"`
	Occupancy      *LiveOccupancy `json:"occupancy,omitempty"`
}

// Validate checks the place's range invariants.
func (p Place) Validate() error {
	var problems []string
	if p.ID == "" {
		problems = append(problems, "id is empty")
	}
	if _, err := ParsePlaceType(string(p.Type)); err != nil {
		problems = append(problems, fmt.Sprintf("type %q is not a known category", p.Type))
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		problems = append(problems, fmt.Sprintf("latitude %v out of range", p.Latitude))
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		problems = append(problems, fmt.Sprintf("longitude %v out of range", p.Longitude))
	}
	if p.Rating < 0 || p.Rating > 5 {
		problems = append(problems, fmt.Sprintf("rating %v out of [0,5]", p.Rating))
	}
	if p.PriceLevel < 1 || p.PriceLevel > 4 {
		problems = append(problems, fmt.Sprintf("priceLevel %d out of [1,4]", p.PriceLevel))
	}
	for _, h := range p.PeakHours {
		if h < 0 || h > 23 {
			problems = append(problems, fmt.Sprintf("peak hour %d out of [0,23]", h))
		}
	}
	if p.BasePopularity < 0 || p.BasePopularity > 100 {
		problems = append(problems, fmt.Sprintf("basePopularity %d out of [0,100]", p.BasePopularity))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: place %q: %s", ErrInvalidInput, p.ID, strings.Join(problems, "; "))
	}
	return nil
}

// POI is a venue returned by a point-of-interest search, before synthetic
// crowd attributes are attached.
type POI struct {
	ID         string
	Name       string
	Address    string
	Latitude   float64
	Longitude  float64
	Categories []string
}
