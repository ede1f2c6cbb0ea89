package ingestion

import (
	"fmt"
	"time"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
	"github.com/google/uuid"
)

// buildRecord converts one dynamic import payload into a StatRecord for the
// given family. Payloads come from CMS exports and spreadsheets, so numeric
// fields may arrive as JSON numbers or as numeric strings; both are
// accepted. The sub-dimension, when the family has one, is a nested object
// under the family's sub-field key: {"slug": ..., "name": ..., "names": {...}}.
func buildRecord(fam stats.Family, payload map[string]interface{}) (*v1.StatRecord, error) {
	rec := &v1.StatRecord{
		ID:              stats.ExtractString(payload, "id"),
		Family:          fam.Name,
		LocationCode:    stats.ExtractString(payload, "location_code"),
		EnvironmentSlug: stats.ExtractString(payload, "environment"),
		ProtectedArea:   stats.ExtractFloat(payload, "protected_area"),
		Area:            stats.ExtractFloat(payload, "area"),
		TotalArea:       stats.ExtractFloat(payload, "total_area"),
		Coverage:        stats.ExtractFloat(payload, "coverage"),
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if year := stats.ExtractFloat(payload, "year"); year != nil {
		rec.Year = int(*year)
	}

	// Some exports nest the location reference instead of a flat code.
	if rec.LocationCode == "" {
		if loc, ok := payload["location"].(map[string]interface{}); ok {
			rec.LocationCode = stats.ExtractString(loc, "code")
		}
	}

	if fam.SubField != "" {
		if sub, ok := payload[fam.SubField].(map[string]interface{}); ok {
			rec.SubFieldSlug = stats.ExtractString(sub, "slug")
			rec.SubFieldName = stats.ExtractString(sub, "name")
			if names, ok := sub["names"].(map[string]interface{}); ok {
				rec.SubFieldNames = make(map[string]string, len(names))
				for locale, name := range names {
					if s, ok := name.(string); ok {
						rec.SubFieldNames[locale] = s
					}
				}
			}
		}
	}

	rec.UpdatedAt = time.Now().UTC()
	if raw := stats.ExtractString(payload, "updated_at"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at %q: %w", raw, err)
		}
		rec.UpdatedAt = ts.UTC()
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
