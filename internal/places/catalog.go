package places

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
)

// Catalog is the on-disk form of a place list.
type Catalog struct {
	Places []domain.Place `json:"places"`
}

// ReadCatalog decodes a catalog and validates every place in it. All
// validation failures are reported together.
func ReadCatalog(r io.Reader) ([]domain.Place, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Places))
	var errs []error
	for i, p := range c.Places {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("place %d (%s): %w", i, p.ID, err))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("place %d: duplicate id %q: %w", i, p.ID, domain.ErrInvalidInput))
		}
		seen[p.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c.Places, nil
}

// WriteCatalog encodes places as an indented catalog.
func WriteCatalog(w io.Writer, places []domain.Place) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Catalog{Places: places})
}
