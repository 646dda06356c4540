package geometry

import (
	"encoding/json"
	"net/http"
)

// ValidateRequest is the authoritative validation payload. ChangedField is
// optional and steers which field the solver lets absorb the edit.
type ValidateRequest struct {
	Span             float64 `json:"span"`
	CarriagewayWidth float64 `json:"carriageway_width"`
	SkewAngle        float64 `json:"skew_angle"`
	GirderSpacing    float64 `json:"girder_spacing"`
	GirderCount      int     `json:"girder_count"`
	DeckOverhang     float64 `json:"deck_overhang"`
	ChangedField     string  `json:"changed_field,omitempty"`
}

type ValidateResponse struct {
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
	Geometry Geometry          `json:"geometry"`
	IsValid  bool              `json:"is_valid"`
}

// Evaluate produces the wire response for a full form submission: range
// checks, issue detection on the submitted tuple, then the solver's
// rebalanced geometry. Range errors and constraint issues share the same
// maps so callers can key messages straight onto form fields.
func (b Bounds) Evaluate(req ValidateRequest) ValidateResponse {
	issues := b.ValidateBasicRange(req.Span, req.CarriagewayWidth, req.SkewAngle)

	candidate := Geometry{
		OverallWidth:  round2(b.OverallWidth(req.CarriagewayWidth)),
		GirderSpacing: req.GirderSpacing,
		GirderCount:   req.GirderCount,
		DeckOverhang:  req.DeckOverhang,
	}
	constraint := b.Detect(req.CarriagewayWidth, candidate)
	for field, msg := range constraint.Errors {
		issues.Errors[field] = msg
	}
	for field, msg := range constraint.Warnings {
		if _, ok := issues.Warnings[field]; !ok {
			issues.Warnings[field] = msg
		}
	}

	adjusted := b.AutoAdjust(req.CarriagewayWidth, candidate, req.ChangedField)

	return ValidateResponse{
		Errors:   issues.Errors,
		Warnings: issues.Warnings,
		Geometry: adjusted,
		IsValid:  len(issues.Errors) == 0,
	}
}

type Handler struct {
	Bounds Bounds
}

// Validate serves POST /api/geometry/validate. 400 with the error map when
// anything blocks; the rebalanced geometry is returned either way.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	resp := h.Bounds.Evaluate(req)

	w.Header().Set("Content-Type", "application/json")
	if !resp.IsValid {
		w.WriteHeader(http.StatusBadRequest)
	}
	json.NewEncoder(w).Encode(resp)
}
