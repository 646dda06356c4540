package geometry

import "math"

// Resolution is the outcome of a single edit: the committed tuple (or the
// prior one when the edit is rejected), the raw candidate as evaluated, and
// the merged issues. IsValid is true iff Errors is empty.
type Resolution struct {
	Geometry Geometry          `json:"geometry"`
	Raw      Geometry          `json:"raw"`
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
	IsValid  bool              `json:"is_valid"`
}

// Resolve runs the two-pass edit pipeline: detect on the raw candidate (so
// the caller can flag a hopeless edit immediately), solve, detect on the
// solved tuple, then commit the solved tuple only when it carries no errors.
// A rejected edit returns current unchanged. Warnings from both passes are
// merged either way, first writer wins with the raw pass first.
func (b Bounds) Resolve(carriagewayWidth float64, current Geometry, changedField string, rawValue float64) Resolution {
	value := sanitize(rawValue, changedField)

	raw := current
	raw.OverallWidth = round2(b.OverallWidth(carriagewayWidth))
	switch changedField {
	case FieldGirderSpacing:
		raw.GirderSpacing = value
	case FieldGirderCount:
		raw.GirderCount = int(value)
	case FieldDeckOverhang:
		raw.DeckOverhang = value
	}

	rawIssues := b.Detect(carriagewayWidth, raw)
	adjusted := b.AutoAdjust(carriagewayWidth, raw, changedField)
	adjustedIssues := b.Detect(carriagewayWidth, adjusted)

	return compose(current, adjusted, raw, rawIssues, adjustedIssues)
}

// compose applies the commit-or-revert rule. Errors on the solved tuple mean
// the prior state is kept untouched while the errors are still surfaced.
func compose(current, adjusted, raw Geometry, rawIssues, adjustedIssues IssueSet) Resolution {
	warnings := map[string]string{}
	for field, msg := range rawIssues.Warnings {
		warnings[field] = msg
	}
	for field, msg := range adjustedIssues.Warnings {
		if _, ok := warnings[field]; !ok {
			warnings[field] = msg
		}
	}

	if len(adjustedIssues.Errors) > 0 {
		return Resolution{
			Geometry: current,
			Raw:      raw,
			Errors:   adjustedIssues.Errors,
			Warnings: warnings,
		}
	}
	return Resolution{
		Geometry: adjusted,
		Raw:      raw,
		Errors:   map[string]string{},
		Warnings: warnings,
		IsValid:  true,
	}
}

// sanitize coerces a raw edit into the field's granularity: counts become
// integers, lengths one decimal, non-finite input becomes zero.
func sanitize(v float64, changedField string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if changedField == FieldGirderCount {
		return math.Round(v)
	}
	return round1(v)
}
