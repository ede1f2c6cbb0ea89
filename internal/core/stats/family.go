package stats

import (
	"fmt"
	"sort"
)

// Built-in stat families. Each family shares the aggregation shape but
// differs in field naming, sub-dimension, and totalArea derivation.
const (
	FamilyProtectionCoverage = "protection-coverage"
	FamilyHabitat            = "habitat"
	FamilyFishingProtection  = "fishing-protection-level"
	FamilyMPAAProtection     = "mpaa-protection-level"
)

// DerivationRule selects how a row's totalArea is back-computed when the row
// itself carries none. The two rules produce materially different numbers and
// are not interchangeable, so the choice is per-family configuration.
type DerivationRule string

const (
	// DeriveFromCoverage back-computes totalArea = protectedArea * 100 / coverage.
	DeriveFromCoverage DerivationRule = "coverage"

	// DeriveFromLocationTotals reads the location's total area for the row's
	// environment (total_terrestrial_area for terrestrial, otherwise marine).
	DeriveFromLocationTotals DerivationRule = "location_totals"
)

// ValidDerivation reports whether rule is a known derivation rule.
func ValidDerivation(rule DerivationRule) bool {
	return rule == DeriveFromCoverage || rule == DeriveFromLocationTotals
}

// Family describes one stat family: which optional sub-dimension it groups
// by, how missing totals are derived, and which display flags it tracks.
type Family struct {
	Name string `yaml:"name"`

	// SubField is the sub-dimension key (e.g. "habitat",
	// "fishing_protection_level"). Empty when the family has no sub-dimension.
	SubField string `yaml:"sub_field"`

	Derivation DerivationRule `yaml:"derivation"`

	// MarineOnly marks families always backed by marine data; their
	// location-total derivation uses the marine total regardless of the
	// row's environment.
	MarineOnly bool `yaml:"marine_only"`

	// TracksSharedMarineArea propagates the location flag into buckets
	// (logical OR across contributions). Display concern, not arithmetic.
	TracksSharedMarineArea bool `yaml:"tracks_shared_marine_area"`
}

func (f Family) validate() error {
	if f.Name == "" {
		return fmt.Errorf("family name must not be empty")
	}
	if !ValidDerivation(f.Derivation) {
		return fmt.Errorf("family %q: unsupported derivation %q", f.Name, f.Derivation)
	}
	return nil
}

// BuiltinFamilies returns the family configurations shipped with the service.
func BuiltinFamilies() []Family {
	return []Family{
		{
			Name:                   FamilyProtectionCoverage,
			Derivation:             DeriveFromCoverage,
			TracksSharedMarineArea: true,
		},
		{
			Name:       FamilyHabitat,
			SubField:   "habitat",
			Derivation: DeriveFromLocationTotals,
		},
		{
			Name:       FamilyFishingProtection,
			SubField:   "fishing_protection_level",
			Derivation: DeriveFromLocationTotals,
			MarineOnly: true,
		},
		{
			Name:       FamilyMPAAProtection,
			SubField:   "mpaa_protection_level",
			Derivation: DeriveFromLocationTotals,
			MarineOnly: true,
		},
	}
}

// FamilyRegistry holds the known stat families, keyed by name.
// Built-ins are registered at construction; LoadDir can overlay more.
type FamilyRegistry struct {
	families map[string]Family
}

// NewFamilyRegistry creates a registry pre-populated with the built-in families.
func NewFamilyRegistry() *FamilyRegistry {
	r := &FamilyRegistry{families: make(map[string]Family)}
	for _, f := range BuiltinFamilies() {
		r.families[f.Name] = f
	}
	return r
}

// Get returns the family with the given name.
func (r *FamilyRegistry) Get(name string) (Family, bool) {
	f, ok := r.families[name]
	return f, ok
}

// Names returns all registered family names in sorted order.
func (r *FamilyRegistry) Names() []string {
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
