package design

import (
	"Trestle/internal/auth"
	"Trestle/internal/geometry"
	"Trestle/internal/repo"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// SaveRequest carries a design to persist. Geometry goes through the same
// validation as the validate endpoint before anything touches the database.
type SaveRequest struct {
	Name             string  `json:"name"`
	Span             float64 `json:"span"`
	CarriagewayWidth float64 `json:"carriageway_width"`
	SkewAngle        float64 `json:"skew_angle"`
	GirderSpacing    float64 `json:"girder_spacing"`
	GirderCount      int     `json:"girder_count"`
	DeckOverhang     float64 `json:"deck_overhang"`
}

type saveResponse struct {
	ID       int               `json:"id"`
	Geometry geometry.Geometry `json:"geometry"`
	Warnings map[string]string `json:"warnings"`
}

type rejectResponse struct {
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
}

type Handler struct {
	Repo   repo.DesignRepository
	Bounds geometry.Bounds
}

// Save serves POST /api/user/designs. Invalid geometry never reaches the
// repository; the stored tuple is the solver's rebalanced one.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Design name required", http.StatusBadRequest)
		return
	}

	verdict := h.Bounds.Evaluate(geometry.ValidateRequest{
		Span:             req.Span,
		CarriagewayWidth: req.CarriagewayWidth,
		SkewAngle:        req.SkewAngle,
		GirderSpacing:    req.GirderSpacing,
		GirderCount:      req.GirderCount,
		DeckOverhang:     req.DeckOverhang,
	})
	if !verdict.IsValid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rejectResponse{
			Errors:   verdict.Errors,
			Warnings: verdict.Warnings,
		})
		return
	}

	id, err := h.Repo.SaveDesign(r.Context(), repo.Design{
		UserID:           userID,
		Name:             req.Name,
		Span:             req.Span,
		CarriagewayWidth: req.CarriagewayWidth,
		SkewAngle:        req.SkewAngle,
		OverallWidth:     verdict.Geometry.OverallWidth,
		GirderSpacing:    verdict.Geometry.GirderSpacing,
		GirderCount:      verdict.Geometry.GirderCount,
		DeckOverhang:     verdict.Geometry.DeckOverhang,
	})
	if err != nil {
		log.Printf("SaveDesign error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(saveResponse{
		ID:       id,
		Geometry: verdict.Geometry,
		Warnings: verdict.Warnings,
	})
}

// List serves GET /api/user/designs, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	designs, err := h.Repo.ListDesigns(r.Context(), userID)
	if err != nil {
		log.Printf("ListDesigns error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if designs == nil {
		designs = []repo.Design{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(designs)
}

// Get serves GET /api/user/designs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid design id", http.StatusBadRequest)
		return
	}

	d, found, err := h.Repo.GetDesign(r.Context(), userID, id)
	if err != nil {
		log.Printf("GetDesign error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Design not found.", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}
