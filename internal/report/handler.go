package report

import (
	"Trestle/internal/geometry"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"
)

type Input struct {
	Project          string  `json:"project"`
	Author           string  `json:"author"`
	Title            string  `json:"title"`
	Notes            string  `json:"notes"`
	Span             float64 `json:"span"`
	CarriagewayWidth float64 `json:"carriageway_width"`
	SkewAngle        float64 `json:"skew_angle"`
	GirderSpacing    float64 `json:"girder_spacing"`
	GirderCount      int     `json:"girder_count"`
	DeckOverhang     float64 `json:"deck_overhang"`
}

type Handler struct {
	Bounds geometry.Bounds
}

// Generate serves POST /api/user/report/pdf. The geometry is validated the
// same way as the validate endpoint; only a clean tuple makes it into a
// report.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "Bridge Geometry Report"
	}

	verdict := h.Bounds.Evaluate(geometry.ValidateRequest{
		Span:             input.Span,
		CarriagewayWidth: input.CarriagewayWidth,
		SkewAngle:        input.SkewAngle,
		GirderSpacing:    input.GirderSpacing,
		GirderCount:      input.GirderCount,
		DeckOverhang:     input.DeckOverhang,
	})
	if !verdict.IsValid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]map[string]string{"errors": verdict.Errors})
		return
	}
	g := verdict.Geometry

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", input.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", input.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deck Geometry")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	rows := []struct {
		label string
		value string
	}{
		{"Span", fmt.Sprintf("%.2f m", input.Span)},
		{"Carriageway width", fmt.Sprintf("%.2f m", input.CarriagewayWidth)},
		{"Skew angle", fmt.Sprintf("%.1f deg", input.SkewAngle)},
		{"Overall deck width", fmt.Sprintf("%.2f m", g.OverallWidth)},
		{"Girder spacing", fmt.Sprintf("%.2f m", g.GirderSpacing)},
		{"Girder count", fmt.Sprintf("%d", g.GirderCount)},
		{"Deck overhang", fmt.Sprintf("%.2f m", g.DeckOverhang)},
	}
	for _, row := range rows {
		pdf.CellFormat(70, 7, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, row.value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	if len(verdict.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		fields := make([]string, 0, len(verdict.Warnings))
		for field := range verdict.Warnings {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", field, verdict.Warnings[field]), "", "L", false)
		}
		pdf.Ln(4)
	}

	if input.Notes != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Notes")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, input.Notes, "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"geometry-report.pdf\"")
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}
