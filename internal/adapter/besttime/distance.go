package besttime

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
)

// annotateDistances adds distance_m to every venue in a search response that
// carries coordinates. Unknown fields pass through untouched.
func annotateDistances(body []byte, lat, lng float64) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc["venues"]
	if !ok {
		return body, nil
	}

	// Numbers stay json.Number so integer ids and counts re-encode verbatim.
	var venues []map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&venues); err != nil {
		return nil, err
	}

	for _, v := range venues {
		vLat, okLat := number(v, "venue_lat")
		vLng, okLng := number(v, "venue_lng", "venue_lon")
		if !okLat || !okLng {
			continue
		}
		v["distance_m"] = math.Round(domain.DistanceMeters(lat, lng, vLat, vLng))
	}

	encoded, err := json.Marshal(venues)
	if err != nil {
		return nil, err
	}
	doc["venues"] = encoded
	return json.Marshal(doc)
}

func number(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		n, ok := m[k].(json.Number)
		if !ok {
			continue
		}
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
