package stats

import (
	"math"
	"time"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
)

// SubFieldValue is the sub-dimension reference carried into a bucket.
type SubFieldValue struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CanonicalStat is the normalized shape every stat family reduces to before
// folding. Areas are float64 on purpose: rows missing their protected-area
// field normalize to NaN and the NaN flows through the fold arithmetic
// unchanged, which is the inherited contract.
type CanonicalStat struct {
	Year                *int
	Environment         string
	SubField            *SubFieldValue
	ProtectedArea       float64
	TotalArea           float64
	LocationCode        string
	HasSharedMarineArea bool
	UpdatedAt           time.Time
}

// WellFormed reports whether the row's arithmetic inputs are usable: both
// areas finite and a non-zero total. Strict mode skips rows failing this.
func (c CanonicalStat) WellFormed() bool {
	if math.IsNaN(c.ProtectedArea) || math.IsInf(c.ProtectedArea, 0) {
		return false
	}
	if math.IsNaN(c.TotalArea) || math.IsInf(c.TotalArea, 0) || c.TotalArea == 0 {
		return false
	}
	return true
}

// Normalizer maps one family's raw rows into CanonicalStat. Pure transform,
// no I/O: the same raw row always normalizes to the same output.
type Normalizer struct {
	Family Family

	// Locale selects the localized sub-field display name, with fallback to
	// the default name.
	Locale string

	// Environment is the environment the caller pinned in its filter, used
	// when the row itself carries none.
	Environment string
}

// Normalize produces the canonical tuple for one raw row.
func (n Normalizer) Normalize(rec *v1.StatRecord) CanonicalStat {
	protectedArea := firstOrNaN(rec.ProtectedArea, rec.Area)

	env := rec.EnvironmentSlug
	if env == "" {
		env = n.Environment
	}

	out := CanonicalStat{
		Environment:   env,
		ProtectedArea: protectedArea,
		TotalArea:     n.totalArea(rec, protectedArea, env),
		LocationCode:  rec.LocationCode,
		UpdatedAt:     rec.UpdatedAt,
	}

	if rec.Year != 0 {
		year := rec.Year
		out.Year = &year
	}

	if rec.Location != nil {
		out.HasSharedMarineArea = rec.Location.HasSharedMarineArea
	}

	if n.Family.SubField != "" && rec.SubFieldSlug != "" {
		out.SubField = &SubFieldValue{
			Slug: rec.SubFieldSlug,
			Name: rec.LocalizedSubFieldName(n.Locale),
		}
	}

	return out
}

// totalArea applies the family's derivation rule when the row's own total is
// falsy (absent or zero).
func (n Normalizer) totalArea(rec *v1.StatRecord, protectedArea float64, env string) float64 {
	if rec.TotalArea != nil && *rec.TotalArea != 0 {
		return *rec.TotalArea
	}

	switch n.Family.Derivation {
	case DeriveFromCoverage:
		return protectedArea * 100 / orNaN(rec.Coverage)
	case DeriveFromLocationTotals:
		if rec.Location == nil {
			return math.NaN()
		}
		if env == "terrestrial" && !n.Family.MarineOnly {
			return orNaN(rec.Location.TotalTerrestrialArea)
		}
		return orNaN(rec.Location.TotalMarineArea)
	}
	return math.NaN()
}

func firstOrNaN(candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return math.NaN()
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
