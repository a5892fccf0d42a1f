// Command genplaces writes a place catalog fixture. The catalog holds the
// built-in sample places, demo places generated around a coordinate, or both.
//
// Usage:
//
//	go run ./cmd/genplaces \
//	  -out internal/pipeline/testdata/places.json \
//	  -lat 40.7282 -lng -73.9942 -type all -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/places"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the catalog JSON")
	lat := flag.Float64("lat", 40.7282, "latitude to generate demo places around")
	lng := flag.Float64("lng", -73.9942, "longitude to generate demo places around")
	filter := flag.String("type", "all", "place type to generate, or all")
	seed := flag.Uint64("seed", 1, "random seed for demo attributes")
	sample := flag.Bool("sample", true, "include the built-in sample catalog")
	demo := flag.Bool("demo", true, "include generated demo places")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if !*sample && !*demo {
		return fmt.Errorf("nothing to generate: both -sample and -demo are false")
	}

	var catalog []domain.Place
	if *sample {
		catalog = append(catalog, domain.SampleCatalog()...)
		log.Printf("sample: %d places", len(domain.SampleCatalog()))
	}
	if *demo {
		r := rand.New(rand.NewPCG(*seed, *seed))
		generated, err := domain.GenerateDemoPlaces(*lat, *lng, *filter, r)
		if err != nil {
			return fmt.Errorf("generating demo places: %w", err)
		}
		catalog = append(catalog, generated...)
		log.Printf("demo: %d places around %.4f,%.4f", len(generated), *lat, *lng)
	}

	if err := writeCatalog(*out, catalog); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote catalog: %s", *out)

	printStats(catalog)
	return nil
}

func writeCatalog(path string, catalog []domain.Place) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := places.WriteCatalog(f, catalog); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(catalog []domain.Place) {
	byType := map[domain.PlaceType]int{}
	bySource := map[domain.DataQuality]int{}
	for _, p := range catalog {
		byType[p.Type]++
		bySource[p.Source]++
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	log.Printf("total: %d places", len(catalog))
	for _, t := range types {
		pt := domain.PlaceType(t)
		log.Printf("  %s %-10s %d", pt.Icon(), t, byType[pt])
	}
	for src, n := range bySource {
		log.Printf("  source=%s: %d", src, n)
	}
}
