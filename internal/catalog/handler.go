package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

type Handler struct {
	Cache *Cache
	Repo  Repository
}

func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Cache.LocationPayload(r.Context())
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			http.Error(w, "Location catalog not loaded", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Locations error: %v", err)
		http.Error(w, "Catalog error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if state == "" || district == "" {
		http.Error(w, "state and district query parameters are required", http.StatusBadRequest)
		return
	}

	rec, found, err := h.Repo.Lookup(r.Context(), state, district)
	if err != nil {
		log.Printf("Lookup error: %v", err)
		http.Error(w, "Catalog error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Location not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	grades, err := h.Repo.Materials(r.Context())
	if err != nil {
		log.Printf("Materials error: %v", err)
		http.Error(w, "Catalog error", http.StatusInternalServerError)
		return
	}
	if len(grades) == 0 {
		http.Error(w, "Material catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MaterialsPayload(grades))
}

// CustomLoading carries user-supplied loading parameters when a site is not
// in the environment table.
type CustomLoading struct {
	Wind          float64 `json:"wind"`
	SeismicZone   string  `json:"seismic_zone"`
	SeismicFactor float64 `json:"seismic_factor"`
	MaxTemp       float64 `json:"max_temp"`
	MinTemp       float64 `json:"min_temp"`
}

// Validate returns field-keyed messages, empty when the parameters are
// acceptable.
func (cl CustomLoading) Validate() map[string]string {
	errs := map[string]string{}
	if cl.Wind < 0 {
		errs["wind"] = "Wind speed must not be negative."
	}
	if cl.SeismicFactor < 0 {
		errs["seismic_factor"] = "Seismic factor must not be negative."
	}
	zone := strings.TrimSpace(cl.SeismicZone)
	if zone == "" || len(zone) > 5 {
		errs["seismic_zone"] = "Seismic zone must be 1 to 5 characters."
	}
	if cl.MaxTemp < cl.MinTemp {
		errs["max_temp"] = "Maximum temperature must be greater than minimum temperature."
	}
	return errs
}

func (h *Handler) CustomLoading(w http.ResponseWriter, r *http.Request) {
	var payload CustomLoading
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if errs := payload.Validate(); len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"errors": errs})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"message": "Custom loading parameters captured successfully.",
		"values":  payload,
	})
}
