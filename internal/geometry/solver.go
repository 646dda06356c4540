package geometry

import "math"

// AutoAdjust rebalances a candidate tuple so the width equation holds within
// the bounds. changedField names the field the user edited (one of the Field*
// keys, or empty). Spacing and count are the coarse user-facing fields; the
// overhang is the designated absorber of clamping and rounding residue, so
// the adjustment order here must not change.
// Total: any input yields a feasible tuple.
func (b Bounds) AutoAdjust(carriagewayWidth float64, g Geometry, changedField string) Geometry {
	overall := b.OverallWidth(carriagewayWidth)

	count := g.GirderCount
	if count < b.MinGirderCount {
		count = b.MinGirderCount
	}
	maxGirders := b.maxGirders(overall)
	if count > maxGirders {
		count = maxGirders
	}

	spacing := math.Max(b.MinSpacing, g.GirderSpacing)
	overhang := clamp(g.DeckOverhang, b.MinOverhang, b.maxOverhang(overall, count))

	switch changedField {
	case FieldGirderSpacing:
		// The count absorbs a spacing edit, then spacing is re-derived so
		// the pair exactly fills the usable width.
		count = int(math.Round(b.usableWidth(overall, overhang, count) / spacing))
		if count < b.MinGirderCount {
			count = b.MinGirderCount
		}
		if count > maxGirders {
			count = maxGirders
		}
		overhang = clamp(overhang, b.MinOverhang, b.maxOverhang(overall, count))
		spacing = b.usableWidth(overall, overhang, count) / float64(count)
	case FieldGirderCount, FieldDeckOverhang:
		overhang = clamp(overhang, b.MinOverhang, b.maxOverhang(overall, count))
		spacing = b.usableWidth(overall, overhang, count) / float64(count)
	}

	// Solve the overhang from the spacing/count pair to enforce the equation.
	overhang = clamp((overall-float64(count)*spacing)/2, b.MinOverhang, b.maxOverhang(overall, count))
	spacing = b.usableWidth(overall, overhang, count) / float64(count)
	spacing = round1(math.Max(b.MinSpacing, spacing))

	// Re-derive the overhang from the rounded spacing, without rounding it,
	// so the equation stays exact unless the clamp binds.
	overhang = clamp((overall-float64(count)*spacing)/2, b.MinOverhang, b.maxOverhang(overall, count))

	return Geometry{
		OverallWidth:  round2(overall),
		GirderSpacing: spacing,
		GirderCount:   count,
		DeckOverhang:  overhang,
	}
}

// maxGirders is the largest count for which the spacing and overhang floors
// both still fit.
func (b Bounds) maxGirders(overall float64) int {
	n := int((overall - 2*b.MinOverhang) / b.MinSpacing)
	if n < b.MinGirderCount {
		n = b.MinGirderCount
	}
	return n
}

func (b Bounds) maxOverhang(overall float64, count int) float64 {
	return math.Max(b.MinOverhang, (overall-float64(count)*b.MinSpacing)/2)
}

func (b Bounds) usableWidth(overall, overhang float64, count int) float64 {
	return math.Max(overall-2*overhang, b.MinSpacing*float64(count))
}
