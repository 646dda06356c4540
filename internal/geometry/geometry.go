// Package geometry keeps the four deck quantities (overall width, girder
// spacing, girder count, deck overhang) consistent with the width equation
//
//	overall_width = girder_count × girder_spacing + 2 × deck_overhang
//
// It is pure and dependency-free so the interactive caller and the
// authoritative validation endpoint run the exact same code.
package geometry

import "math"

// Field keys shared by requests, issue maps and solver branching.
const (
	FieldGirderSpacing = "girder_spacing"
	FieldGirderCount   = "girder_count"
	FieldDeckOverhang  = "deck_overhang"
)

const seedSpacing = 2.5

// Bounds carries the feasibility floors and tolerances of the engine. It is
// passed around explicitly so alternate bound sets can be exercised without
// recompilation.
type Bounds struct {
	MinSpacing     float64
	MinOverhang    float64
	MinGirderCount int
	DriftTolerance float64

	MinSpan        float64
	MaxSpan        float64
	MinCarriageway float64
	MaxCarriageway float64
	SkewLimit      float64
}

// DefaultBounds returns the production limits.
func DefaultBounds() Bounds {
	return Bounds{
		MinSpacing:     0.5,
		MinOverhang:    0.5,
		MinGirderCount: 2,
		DriftTolerance: 0.5,
		MinSpan:        20,
		MaxSpan:        45,
		MinCarriageway: 4.25,
		MaxCarriageway: 24,
		SkewLimit:      15,
	}
}

type Geometry struct {
	OverallWidth  float64 `json:"overall_width"`
	GirderSpacing float64 `json:"girder_spacing"`
	GirderCount   int     `json:"girder_count"`
	DeckOverhang  float64 `json:"deck_overhang"`
}

// IssueSet maps field names to messages. Errors block a commit, warnings are
// informational only.
type IssueSet struct {
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
}

func newIssueSet() IssueSet {
	return IssueSet{Errors: map[string]string{}, Warnings: map[string]string{}}
}

// OverallWidth derives the total deck width from the carriageway width. The
// result is floored so two overhangs and a girder bay always fit.
func (b Bounds) OverallWidth(carriagewayWidth float64) float64 {
	minimum := 2*b.MinSpacing + 2*b.MinOverhang
	return math.Max(carriagewayWidth+5.0, minimum)
}

// Seed is the form-load default for a given carriageway width: one girder per
// 2.5 m of carriageway plus an edge girder, spacing 2.5, overhang at the
// floor. The residual is not distributed; the first edit rebalances it.
func (b Bounds) Seed(carriagewayWidth float64) Geometry {
	count := b.MinGirderCount
	if n := int(carriagewayWidth/seedSpacing) + 1; n > count {
		count = n
	}
	return Geometry{
		OverallWidth:  round2(b.OverallWidth(carriagewayWidth)),
		GirderSpacing: seedSpacing,
		GirderCount:   count,
		DeckOverhang:  b.MinOverhang,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
