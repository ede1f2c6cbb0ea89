package v1

import (
	"fmt"
	"time"
)

// StatRecord is one raw stat row as stored and exchanged over the wire.
// Field names vary per stat family upstream: depending on the family either
// ProtectedArea or Area carries the protected-area figure; the two are
// synonyms and exactly one is populated in well-formed data. Numeric fields
// are pointers so that "absent" survives the round trip; absence has defined
// (if ugly) aggregation semantics downstream.
type StatRecord struct {
	// ID is assigned by the server on ingest when the client omits it.
	ID string `json:"id"`

	// Family names the stat family this record belongs to.
	Family string `json:"family"`

	// Year is the fiscal/calendar year of the record.
	Year int `json:"year"`

	// LocationCode references the contributing location.
	LocationCode string `json:"location_code"`

	// EnvironmentSlug is e.g. "marine" or "terrestrial". Optional.
	EnvironmentSlug string `json:"environment,omitempty"`

	// Sub-dimension reference (habitat, protection level, ...). Optional;
	// only meaningful for families configured with a sub-dimension.
	SubFieldSlug string `json:"sub_field_slug,omitempty"`
	SubFieldName string `json:"sub_field_name,omitempty"`

	// SubFieldNames holds localized display names keyed by locale.
	SubFieldNames map[string]string `json:"sub_field_names,omitempty"`

	ProtectedArea *float64 `json:"protected_area,omitempty"`
	Area          *float64 `json:"area,omitempty"`

	// TotalArea may be absent or zero; it is then derived per the family's
	// derivation rule using Coverage or the location's totals.
	TotalArea *float64 `json:"total_area,omitempty"`
	Coverage  *float64 `json:"coverage,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Location is populated on query responses from the locations table.
	Location *Location `json:"location,omitempty"`
}

// Location carries the per-location reference data needed for totalArea
// derivation and display flags.
type Location struct {
	Code                 string   `json:"code"`
	TotalMarineArea      *float64 `json:"total_marine_area,omitempty"`
	TotalTerrestrialArea *float64 `json:"total_terrestrial_area,omitempty"`
	HasSharedMarineArea  bool     `json:"has_shared_marine_area"`
}

// Validate checks the record envelope. It deliberately does NOT require
// ProtectedArea or Area: rows missing both are accepted and flow through
// aggregation as NaN, matching the historical behavior consumers rely on.
func (r *StatRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if r.LocationCode == "" {
		return fmt.Errorf("location_code is required")
	}
	return nil
}

// Validate checks a location payload.
func (l *Location) Validate() error {
	if l.Code == "" {
		return fmt.Errorf("code is required")
	}
	return nil
}

// LocalizedSubFieldName returns the sub-field display name for locale,
// falling back to the default name when no localized variant exists.
func (r *StatRecord) LocalizedSubFieldName(locale string) string {
	if locale != "" {
		if name, ok := r.SubFieldNames[locale]; ok && name != "" {
			return name
		}
	}
	return r.SubFieldName
}
