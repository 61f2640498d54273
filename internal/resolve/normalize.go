// Package resolve reconciles per-field candidate values from the
// provider adapters into a single defined-or-undefined metric per
// field, and centralizes the unit heuristics the providers disagree
// on.
package resolve

import "github.com/crownwell/vnscreener/internal/domain"

// Unit rules. Each is a named, individually testable heuristic rather
// than an inline guess at a call site.

// PercentFraction converts a percentage-like value to a fraction.
// Magnitudes above 1 are assumed to be whole percents. The result is
// clamped to [0, 1].
func PercentFraction(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EPSUnitGuard corrects per-share earnings that drifted across
// provider unit conventions: implausibly small values are assumed to
// be in thousands of VND, implausibly large ones over-scaled by 100.
func EPSUnitGuard(v float64) float64 {
	if v <= 0 {
		return v
	}
	if v < 1000 {
		return v * 1000
	}
	if v > 20000 {
		return v / 100
	}
	return v
}

// WholeVNDToBillions converts a raw whole-currency figure to billions
// of VND. Used for computed aggregates (price x shares); scraped
// aggregates are converted at parse time from their unit markers.
func WholeVNDToBillions(v float64) float64 {
	return v / 1e9
}

// percentFields are stored as fractions in [0, 1].
var percentFields = map[domain.Field]bool{
	domain.FieldROE:                 true,
	domain.FieldROA:                 true,
	domain.FieldGrossMargin:         true,
	domain.FieldOperatingMargin:     true,
	domain.FieldDividendYield:       true,
	domain.FieldFreeFloat:           true,
	domain.FieldForeignOwnership:    true,
	domain.FieldManagementOwnership: true,
	domain.FieldNPLRatio:            true,
	domain.FieldLLR:                 true,
}

// Normalize applies the unit rule for a field to one raw value.
func Normalize(field domain.Field, rv domain.RawValue) float64 {
	switch {
	case percentFields[field]:
		return PercentFraction(rv.Value)
	case field == domain.FieldEPS:
		return EPSUnitGuard(rv.Value)
	default:
		return rv.Value
	}
}
