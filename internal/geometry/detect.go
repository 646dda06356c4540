package geometry

import "math"

// ValidateBasicRange checks the independently bounded form fields. These are
// range errors from the outer form rather than constraint violations, but
// they ride the same field→message maps.
func (b Bounds) ValidateBasicRange(span, carriagewayWidth, skewAngle float64) IssueSet {
	issues := newIssueSet()

	if span < b.MinSpan || span > b.MaxSpan {
		issues.Errors["span"] = "Outside the software range (20 m to 45 m)."
	}
	if carriagewayWidth < b.MinCarriageway || carriagewayWidth >= b.MaxCarriageway {
		issues.Errors["carriageway_width"] = "Carriageway width must be within 4.25 m to 24 m."
	}
	if math.Abs(skewAngle) > b.SkewLimit {
		issues.Warnings["skew_angle"] = "IRC 24 (2010) requires detailed analysis for skew angles beyond ±15°."
	}

	return issues
}

// Detect inspects a candidate tuple and reports field-keyed errors and
// warnings. Later rules may override an earlier message on the same field
// with a sharper one. Pure; the tuple is never modified.
func (b Bounds) Detect(carriagewayWidth float64, g Geometry) IssueSet {
	overall := b.OverallWidth(carriagewayWidth)
	issues := newIssueSet()

	if g.GirderCount < b.MinGirderCount {
		issues.Errors[FieldGirderCount] = "At least two girders are required."
	}
	if g.GirderSpacing <= 0 {
		issues.Errors[FieldGirderSpacing] = "Girder spacing must be greater than zero."
	}
	if 2*g.DeckOverhang >= overall {
		issues.Errors[FieldDeckOverhang] = "Deck overhang must leave room for the girder bay."
	}

	effective := overall - 2*g.DeckOverhang
	if effective <= 0 {
		issues.Errors[FieldDeckOverhang] = "Deck overhang consumes the deck width."
	} else if _, spacingBad := issues.Errors[FieldGirderSpacing]; !spacingBad {
		if g.GirderSpacing >= effective {
			issues.Errors[FieldGirderSpacing] = "Girder spacing must be less than the usable deck width."
		} else if implied := effective / g.GirderSpacing; math.Abs(implied-float64(g.GirderCount)) >= b.DriftTolerance {
			issues.Warnings[FieldGirderSpacing] = "Inputs were auto-balanced so that overall width = girders × spacing + 2 × overhang."
		}
	}

	composed := float64(g.GirderCount)*g.GirderSpacing + 2*g.DeckOverhang
	if math.Abs(composed-overall) >= b.DriftTolerance {
		if _, ok := issues.Warnings[FieldDeckOverhang]; !ok {
			issues.Warnings[FieldDeckOverhang] = "Values are being rebalanced to satisfy the width equation."
		}
	}

	return issues
}
