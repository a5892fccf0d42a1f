package domain

import (
	"fmt"
	"strings"
)

// FormatHour renders an hour of day as "9:00 AM" style text.
func FormatHour(hour int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}
	return fmt.Sprintf("%d:00 %s", display, period)
}

// FormatPriceLevel renders a 1..4 price level as dollar signs.
func FormatPriceLevel(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("$", level)
}

// FilterPlaces keeps places whose name or address contains query,
// case-insensitively. An empty query keeps everything.
func FilterPlaces(places []Place, query string) []Place {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return places
	}
	out := make([]Place, 0, len(places))
	for _, p := range places {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Address), q) {
			out = append(out, p)
		}
	}
	return out
}
