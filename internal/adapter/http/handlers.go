package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/couchcryptid/crowdmap-service/internal/adapter/besttime"
	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const (
	msgCoordsRequired     = "lat and lng parameters required"
	msgMapboxMissing      = "Mapbox token not configured"
	msgBestTimeMissing    = "BestTime API key not configured"
	msgSuggestFailed      = "Failed to fetch location suggestions"
	msgReverseFailed      = "Failed to reverse geocode location"
	msgLiveRejected       = "Failed to fetch live data"
	msgLiveFailed         = "Failed to fetch live traffic data"
	msgVenueRejected      = "Venue search failed"
	msgVenueSearchFailed  = "Failed to search venues"
	msgPlacesFailed       = "Failed to fetch places"
	msgNoSnapshot         = "no crowd snapshot computed yet"
	maxSelectionBodyBytes = 1 << 16
)

type placesResponse struct {
	Places []domain.Place `json:"places"`
}

type describeResponse struct {
	Score int `json:"score"`
	domain.CrowdTier
}

type legendResponse struct {
	Tiers    []domain.TierBand     `json:"tiers"`
	Gradient []domain.GradientStop `json:"gradient"`
}

type suggestionsResponse struct {
	Suggestions []domain.GeocodingResult `json:"suggestions"`
}

// coords reads the lat and lng query parameters. Out-of-range and non-finite
// values are treated as missing.
func coords(r *http.Request) (lat, lng float64, ok bool) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return 0, 0, false
	}
	if domain.CheckCoordinates(lat, lng) != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (s *Server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := coords(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgCoordsRequired)
		return
	}

	places, err := s.deps.Places.FetchPlaces(r.Context(), lat, lng, r.URL.Query().Get("type"))
	if err != nil {
		writeFailure(w, s.logger, err, msgPlacesFailed)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, placesResponse{Places: places})
}

func (s *Server) handleCrowd(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := coords(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgCoordsRequired)
		return
	}

	q := r.URL.Query()
	hour := s.deps.Estimator.CurrentHour()
	if raw := q.Get("hour"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h < 0 || h > 23 {
			writeError(w, http.StatusBadRequest, "hour must be an integer between 0 and 23")
			return
		}
		hour = h
	}

	places, err := s.deps.Places.FetchPlaces(r.Context(), lat, lng, q.Get("type"))
	if err != nil {
		writeFailure(w, s.logger, err, msgPlacesFailed)
		return
	}

	snap, err := s.deps.Estimator.Snapshot(domain.FilterPlaces(places, q.Get("q")), hour)
	if err != nil {
		writeFailure(w, s.logger, err, "Failed to compute crowd snapshot")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCrowdCurrent(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.deps.Tracker.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, msgNoSnapshot)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var sel pipeline.Selection
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBodyBytes)).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sel, err := s.deps.Tracker.Select(sel)
	if err != nil {
		writeFailure(w, s.logger, err, "Failed to change selection")
		return
	}
	sharedobs.WriteJSON(w, http.StatusAccepted, sel)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "score must be an integer")
		return
	}

	score = domain.ClampScore(score)
	sharedobs.WriteJSON(w, http.StatusOK, describeResponse{Score: score, CrowdTier: domain.Describe(score)})
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, legendResponse{
		Tiers:    domain.Tiers(),
		Gradient: domain.HeatmapGradient(),
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter required")
		return
	}
	if s.deps.Geocoder == nil {
		writeError(w, http.StatusInternalServerError, msgMapboxMissing)
		return
	}

	results, err := s.deps.Geocoder.Suggest(r.Context(), query)
	if err != nil {
		writeFailure(w, s.logger, err, msgSuggestFailed)
		return
	}
	if results == nil {
		results = []domain.GeocodingResult{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, suggestionsResponse{Suggestions: results})
}

func (s *Server) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := coords(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgCoordsRequired)
		return
	}
	if s.deps.Geocoder == nil {
		writeError(w, http.StatusInternalServerError, msgMapboxMissing)
		return
	}

	result, err := s.deps.Geocoder.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		writeFailure(w, s.logger, err, msgReverseFailed)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleBestTimeLive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, address := q.Get("venue_name"), q.Get("venue_address")
	if name == "" || address == "" {
		writeError(w, http.StatusBadRequest, "venue_name and venue_address parameters required")
		return
	}
	if s.deps.BestTime == nil {
		writeError(w, http.StatusInternalServerError, msgBestTimeMissing)
		return
	}

	result, err := s.deps.BestTime.Live(r.Context(), name, address)
	if err != nil {
		s.writeBestTimeError(w, err, msgLiveRejected, msgLiveFailed)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleBestTimeSearch(w http.ResponseWriter, r *http.Request) {
	var search besttime.VenueSearch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBodyBytes)).Decode(&search); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if search.Query == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}
	if s.deps.BestTime == nil {
		writeError(w, http.StatusInternalServerError, msgBestTimeMissing)
		return
	}

	body, err := s.deps.BestTime.SearchVenues(r.Context(), search)
	if err != nil {
		s.writeBestTimeError(w, err, msgVenueRejected, msgVenueSearchFailed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client disconnects are not actionable
}

// writeBestTimeError relays the upstream status with rejectedMsg when BestTime
// answered with an error, and reports failedMsg when the call itself failed.
func (s *Server) writeBestTimeError(w http.ResponseWriter, err error, rejectedMsg, failedMsg string) {
	if errors.Is(err, domain.ErrMissingConfiguration) {
		writeError(w, http.StatusInternalServerError, msgBestTimeMissing)
		return
	}
	var apiErr *besttime.APIError
	if errors.As(err, &apiErr) {
		s.logger.Warn(rejectedMsg, "status", apiErr.StatusCode, "error", err)
		details := apiErr.Body
		if details == "" {
			details = err.Error()
		}
		sharedobs.WriteJSON(w, apiErr.StatusCode, errorResponse{Error: rejectedMsg, Details: details})
		return
	}
	writeFailure(w, s.logger, err, failedMsg)
}
