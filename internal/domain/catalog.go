package domain

// SampleCatalog returns the built-in East Village sample venues. Each call
// returns fresh slices so callers may not affect one another.
func SampleCatalog() []Place {
	out := make([]Place, len(sampleCatalog))
	for i, p := range sampleCatalog {
		p.PeakHours = append([]int(nil), p.PeakHours...)
		out[i] = p
	}
	return out
}

var sampleCatalog = []Place{
	{ID: "bar-1", Name: "The Rusty Nail", Type: PlaceBar, Latitude: 40.7282, Longitude: -73.9942, Address: "123 E 7th St, New York, NY", Rating: 4.5, PriceLevel: 2, PeakHours: []int{21, 22, 23, 0, 1}, BasePopularity: 85, Source: DataSynthetic},
	{ID: "bar-2", Name: "Midnight Lounge", Type: PlaceBar, Latitude: 40.7298, Longitude: -73.9898, Address: "45 Avenue A, New York, NY", Rating: 4.3, PriceLevel: 3, PeakHours: []int{22, 23, 0, 1, 2}, BasePopularity: 78, Source: DataSynthetic},
	{ID: "bar-3", Name: "The Tipsy Fox", Type: PlaceBar, Latitude: 40.7265, Longitude: -73.9865, Address: "89 E 4th St, New York, NY", Rating: 4.6, PriceLevel: 2, PeakHours: []int{20, 21, 22, 23}, BasePopularity: 90, Source: DataSynthetic},
	{ID: "rest-1", Name: "Nonna's Kitchen", Type: PlaceRestaurant, Latitude: 40.7305, Longitude: -73.9912, Address: "200 E 10th St, New York, NY", Rating: 4.7, PriceLevel: 3, PeakHours: []int{12, 13, 19, 20, 21}, BasePopularity: 88, Source: DataSynthetic},
	{ID: "rest-2", Name: "Sakura Sushi", Type: PlaceRestaurant, Latitude: 40.7275, Longitude: -73.9925, Address: "55 St Marks Pl, New York, NY", Rating: 4.4, PriceLevel: 2, PeakHours: []int{12, 13, 18, 19, 20}, BasePopularity: 75, Source: DataSynthetic},
	{ID: "rest-3", Name: "Burger Palace", Type: PlaceRestaurant, Latitude: 40.7312, Longitude: -73.9878, Address: "167 1st Ave, New York, NY", Rating: 4.2, PriceLevel: 1, PeakHours: []int{12, 13, 18, 19, 20, 21}, BasePopularity: 82, Source: DataSynthetic},
	{ID: "cafe-1", Name: "Morning Brew", Type: PlaceCafe, Latitude: 40.7258, Longitude: -73.9918, Address: "78 E 3rd St, New York, NY", Rating: 4.6, PriceLevel: 2, PeakHours: []int{7, 8, 9, 10, 11}, BasePopularity: 70, Source: DataSynthetic},
	{ID: "cafe-2", Name: "Bean & Gone", Type: PlaceCafe, Latitude: 40.7295, Longitude: -73.9958, Address: "34 E 9th St, New York, NY", Rating: 4.5, PriceLevel: 2, PeakHours: []int{8, 9, 10, 14, 15}, BasePopularity: 65, Source: DataSynthetic},
	{ID: "club-1", Name: "Neon Nights", Type: PlaceClub, Latitude: 40.7245, Longitude: -73.9885, Address: "99 E 2nd St, New York, NY", Rating: 4.1, PriceLevel: 3, PeakHours: []int{23, 0, 1, 2, 3}, BasePopularity: 92, Source: DataSynthetic},
	{ID: "club-2", Name: "Electric Avenue", Type: PlaceClub, Latitude: 40.7238, Longitude: -73.9912, Address: "150 Houston St, New York, NY", Rating: 4.3, PriceLevel: 4, PeakHours: []int{0, 1, 2, 3}, BasePopularity: 88, Source: DataSynthetic},
	{ID: "gym-1", Name: "Iron Temple", Type: PlaceGym, Latitude: 40.7318, Longitude: -73.9932, Address: "250 E 11th St, New York, NY", Rating: 4.4, PriceLevel: 2, PeakHours: []int{6, 7, 17, 18, 19}, BasePopularity: 60, Source: DataSynthetic},
	{ID: "shop-1", Name: "Village Vintage", Type: PlaceShopping, Latitude: 40.7288, Longitude: -73.9968, Address: "12 E 8th St, New York, NY", Rating: 4.5, PriceLevel: 2, PeakHours: []int{12, 13, 14, 15, 16}, BasePopularity: 55, Source: DataSynthetic},
}
