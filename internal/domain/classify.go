package domain

import "strings"

// allSearchTerms are the POI queries run for the "all" filter.
var allSearchTerms = []string{"bar", "restaurant", "coffee"}

var searchTermsByType = map[PlaceType][]string{
	PlaceBar:        {"bar", "pub", "nightlife"},
	PlaceRestaurant: {"restaurant", "food"},
	PlaceCafe:       {"cafe", "coffee"},
	PlaceClub:       {"nightclub", "club"},
	PlaceGym:        {"gym", "fitness", "sports"},
	PlaceShopping:   {"shop", "mall", "store", "shopping"},
}

// MaxSearchQueries caps how many POI queries one fetch may issue.
const MaxSearchQueries = 3

// SearchTerms returns the POI queries for a validated filter, capped at
// MaxSearchQueries.
func SearchTerms(filter string) []string {
	var terms []string
	if filter == FilterAll {
		terms = allSearchTerms
	} else if t, ok := searchTermsByType[PlaceType(filter)]; ok {
		terms = t
	} else {
		terms = []string{filter}
	}
	if len(terms) > MaxSearchQueries {
		terms = terms[:MaxSearchQueries]
	}
	return append([]string(nil), terms...)
}

// ClassifyPlaceType infers a venue category from provider categories and the
// query that found it. Checks run in a fixed order and fall back to restaurant.
func ClassifyPlaceType(categories []string, query string) PlaceType {
	cats := strings.ToLower(strings.Join(categories, " "))
	query = strings.ToLower(query)
	has := func(catWords []string, queryWord string) bool {
		for _, w := range catWords {
			if strings.Contains(cats, w) {
				return true
			}
		}
		return strings.Contains(query, queryWord)
	}

	switch {
	case has([]string{"bar", "pub"}, "bar"):
		return PlaceBar
	case has([]string{"coffee", "cafe"}, "coffee"):
		return PlaceCafe
	case has([]string{"nightclub", "club"}, "club"):
		return PlaceClub
	case has([]string{"gym", "fitness"}, "gym"):
		return PlaceGym
	case has([]string{"shop", "mall"}, "shop"):
		return PlaceShopping
	default:
		return PlaceRestaurant
	}
}
