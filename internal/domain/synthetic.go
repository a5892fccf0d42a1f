package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// demoSpread is the full width of the demo offset, roughly a 1.5 km radius.
	demoSpread        = 0.025
	demoPerTypeAll    = 3
	demoPerTypeSingle = 5
)

var demoNames = map[PlaceType][]string{
	PlaceBar:        {"The Blue Room", "Whiskey Den", "Night Owl Bar", "The Rusty Nail", "Moonlight Lounge"},
	PlaceRestaurant: {"Bella Italia", "Golden Dragon", "The Corner Bistro", "Farm Table", "Spice Garden"},
	PlaceCafe:       {"Morning Brew", "The Bean Counter", "Café Latte", "Urban Grind", "Sunrise Coffee"},
	PlaceClub:       {"Electric Dreams", "Club Pulse", "The Underground", "Velvet Room", "Bass Drop"},
	PlaceGym:        {"FitLife Studio", "Iron Works Gym", "Peak Performance", "CrossFit Central", "Yoga Haven"},
	PlaceShopping:   {"City Center Mall", "Fashion District", "Market Square", "The Galleria", "Main Street Shops"},
}

var demoStreets = []string{"Main St", "Oak Ave", "Park Blvd", "Market St", "5th Ave"}

// SyntheticAttributes are the crowd attributes attached to a venue whose
// source does not supply them.
type SyntheticAttributes struct {
	Rating         float64
	PriceLevel     int
	BasePopularity int
}

// NewSyntheticAttributes draws rating in [3.5, 5), price level 1..3 and base
// popularity 50..89.
func NewSyntheticAttributes(r RandSource) SyntheticAttributes {
	return SyntheticAttributes{
		Rating:         3.5 + r.Float64()*1.5,
		PriceLevel:     intn(r, 3) + 1,
		BasePopularity: 50 + intn(r, 40),
	}
}

// PlaceFromPOI decorates a live venue with synthetic crowd attributes.
func PlaceFromPOI(poi POI, t PlaceType, r RandSource) Place {
	attrs := NewSyntheticAttributes(r)
	name := poi.Name
	if name == "" {
		name = "Unknown Place"
	}
	address := poi.Address
	if address == "" {
		address = "Address not available"
	}
	return Place{
		ID:             poi.ID,
		Name:           name,
		Type:           t,
		Latitude:       poi.Latitude,
		Longitude:      poi.Longitude,
		Address:        address,
		Rating:         attrs.Rating,
		PriceLevel:     attrs.PriceLevel,
		PeakHours:      t.PeakHours(),
		BasePopularity: attrs.BasePopularity,
		Source:         DataLive,
	}
}

// GenerateDemoPlaces builds synthetic venues scattered around lat/lng. With
// filter "all" it makes three of every type, otherwise five of the one type.
func GenerateDemoPlaces(lat, lng float64, filter string, r RandSource) ([]Place, error) {
	filter, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	types := AllPlaceTypes()
	count := demoPerTypeAll
	if filter != FilterAll {
		types = []PlaceType{PlaceType(filter)}
		count = demoPerTypeSingle
	}

	places := make([]Place, 0, len(types)*count)
	for _, t := range types {
		names := demoNames[t]
		for i := 0; i < count && i < len(names); i++ {
			attrs := NewSyntheticAttributes(r)
			places = append(places, Place{
				ID:             fmt.Sprintf("demo-%s-%d-%s", t, i, uuid.NewString()),
				Name:           names[i],
				Type:           t,
				Latitude:       lat + (r.Float64()-0.5)*demoSpread,
				Longitude:      lng + (r.Float64()-0.5)*demoSpread,
				Address:        fmt.Sprintf("%d %s", intn(r, 999)+1, demoStreets[intn(r, len(demoStreets))]),
				Rating:         attrs.Rating,
				PriceLevel:     attrs.PriceLevel,
				PeakHours:      t.PeakHours(),
				BasePopularity: attrs.BasePopularity,
				Source:         DataSynthetic,
			})
		}
	}
	return places, nil
}
