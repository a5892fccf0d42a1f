package overpass

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
	"github.com/serjvanilla/go-overpass"
)

const (
	provider = "overpass"

	// resultLimit matches the per-query POI limit of the Mapbox searcher.
	resultLimit = 7
)

// tagFilters maps a search term to the OSM tag selectors that find it.
var tagFilters = map[string][]string{
	"bar":        {`["amenity"~"^(bar|pub)$"]`},
	"pub":        {`["amenity"="pub"]`},
	"nightlife":  {`["amenity"~"^(bar|pub|nightclub)$"]`},
	"restaurant": {`["amenity"~"^(restaurant|fast_food)$"]`},
	"food":       {`["amenity"~"^(restaurant|fast_food|food_court)$"]`},
	"cafe":       {`["amenity"="cafe"]`},
	"coffee":     {`["amenity"="cafe"]`, `["cuisine"~"coffee"]`},
	"nightclub":  {`["amenity"="nightclub"]`},
	"club":       {`["amenity"="nightclub"]`},
	"gym":        {`["leisure"="fitness_centre"]`},
	"fitness":    {`["leisure"="fitness_centre"]`},
	"sports":     {`["leisure"~"^(sports_centre|fitness_centre)$"]`},
	"shop":       {`["shop"~"^(mall|department_store|clothes)$"]`},
	"mall":       {`["shop"="mall"]`},
	"store":      {`["shop"~"^(department_store|convenience|supermarket)$"]`},
	"shopping":   {`["shop"~"^(mall|department_store)$"]`},
}

// categoryTags are the OSM keys whose values are reported as categories.
var categoryTags = []string{"amenity", "leisure", "shop", "cuisine"}

// Searcher implements domain.PlaceSearcher against an Overpass API endpoint.
type Searcher struct {
	endpoint   string
	radius     int
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewSearcher creates an OpenStreetMap POI searcher. radius is in meters.
func NewSearcher(endpoint string, radius int, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Searcher {
	return &Searcher{
		endpoint:   endpoint,
		radius:     radius,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// SearchPOI returns named venues matching query within the configured radius,
// nearest first.
func (s *Searcher) SearchPOI(ctx context.Context, query string, lat, lon float64) ([]domain.POI, error) {
	q := buildQuery(query, lat, lon, s.radius)

	// A client per call binds the request context; go-overpass has no ctx API.
	client := overpass.NewWithSettings(s.endpoint, 1, contextDoer{ctx: ctx, client: s.httpClient})

	start := time.Now()
	result, err := client.Query(q)
	s.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("overpass query %q: %w: %w", query, domain.ErrUpstreamFailure, err)
	}

	pois := toPOIs(&result, lat, lon, float64(s.radius))
	outcome := "success"
	if len(pois) == 0 {
		outcome = "empty"
	}
	s.metrics.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	s.logger.Debug("overpass search", "query", query, "results", len(pois))
	return pois, nil
}

func buildQuery(term string, lat, lon float64, radius int) string {
	term = strings.ToLower(strings.TrimSpace(term))
	filters, ok := tagFilters[term]
	if !ok {
		filters = []string{fmt.Sprintf(`["name"~%s,i]`, strconv.Quote(term))}
	}

	around := fmt.Sprintf("(around:%d,%f,%f)", radius, lat, lon)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, f := range filters {
		fmt.Fprintf(&b, "  node%s[\"name\"]%s;\n", f, around)
		fmt.Fprintf(&b, "  way%s[\"name\"]%s;\n", f, around)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;")
	return b.String()
}

type located struct {
	poi      domain.POI
	distance float64
}

func toPOIs(result *overpass.Result, lat, lon, radius float64) []domain.POI {
	var found []located

	add := func(id string, tags map[string]string, pLat, pLon float64) {
		name := tags["name"]
		if name == "" {
			return
		}
		d := domain.DistanceMeters(lat, lon, pLat, pLon)
		if d > radius {
			return
		}
		found = append(found, located{
			poi: domain.POI{
				ID:         id,
				Name:       name,
				Address:    address(tags),
				Latitude:   pLat,
				Longitude:  pLon,
				Categories: categories(tags),
			},
			distance: d,
		})
	}

	for _, node := range result.Nodes {
		add("osm-node-"+strconv.FormatInt(node.ID, 10), node.Tags, node.Lat, node.Lon)
	}
	for _, way := range result.Ways {
		cLat, cLon, ok := centroid(way)
		if !ok {
			continue
		}
		add("osm-way-"+strconv.FormatInt(way.ID, 10), way.Tags, cLat, cLon)
	}

	// Map iteration order is random.
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].poi.ID < found[j].poi.ID
	})
	if len(found) > resultLimit {
		found = found[:resultLimit]
	}

	pois := make([]domain.POI, len(found))
	for i, f := range found {
		pois[i] = f.poi
	}
	return pois
}

func centroid(way *overpass.Way) (float64, float64, bool) {
	var lat, lon float64
	n := 0
	for _, node := range way.Nodes {
		if node == nil || (node.Lat == 0 && node.Lon == 0) {
			continue
		}
		lat += node.Lat
		lon += node.Lon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

func address(tags map[string]string) string {
	street := tags["addr:street"]
	if street == "" {
		return ""
	}
	parts := []string{strings.TrimSpace(tags["addr:housenumber"] + " " + street)}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

func categories(tags map[string]string) []string {
	var cats []string
	for _, k := range categoryTags {
		if v := tags[k]; v != "" {
			cats = append(cats, strings.ReplaceAll(v, "_", " "))
		}
	}
	return cats
}

// contextDoer attaches ctx to every request go-overpass sends.
type contextDoer struct {
	ctx    context.Context
	client *http.Client
}

func (d contextDoer) Do(req *http.Request) (*http.Response, error) {
	return d.client.Do(req.WithContext(d.ctx))
}

// PostForm satisfies go-overpass's HTTPClient interface, mirroring
// http.Client.PostForm but routed through Do so ctx is attached.
func (d contextDoer) PostForm(endpoint string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return d.Do(req)
}
