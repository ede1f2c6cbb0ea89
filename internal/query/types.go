package query

import (
	"encoding/json"
	"math"
	"time"

	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
)

// AggregateQuery is the driver input for one family aggregation.
type AggregateQuery struct {
	Family       string
	Locations    []string
	Year         *int
	Environment  string
	SubFieldSlug string
	Locale       string
}

// SummaryQuery aggregates every registered family for one location set.
type SummaryQuery struct {
	Locations   []string
	Year        *int
	Environment string
	Locale      string
}

// AggregateResult is the service-level output: the resolved family config
// plus the sorted bucket snapshot.
type AggregateResult struct {
	Family  stats.Family
	Buckets []stats.Bucket
}

// AggregateResponse is the HTTP payload for one family aggregation.
type AggregateResponse struct {
	Family  string          `json:"family"`
	Count   int             `json:"count"`
	Buckets []BucketPayload `json:"buckets"`
}

// BucketPayload serializes one bucket. The sub-dimension value is emitted
// under the family's configured sub-field key, and non-finite floats become
// JSON null, the shape chart consumers already handle.
type BucketPayload struct {
	Bucket            stats.Bucket
	SubFieldKey       string
	IncludeSharedArea bool
}

func (p BucketPayload) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"year":           p.Bucket.Year,
		"environment":    nullableSlug(p.Bucket.Environment),
		"total_area":     finiteOrNull(p.Bucket.TotalArea),
		"protected_area": finiteOrNull(p.Bucket.ProtectedArea),
		"coverage":       finiteOrNull(p.Bucket.Coverage),
		"locations":      p.Bucket.Locations,
		"updated_at":     nullableTime(p.Bucket.UpdatedAt),
	}
	if p.SubFieldKey != "" && p.Bucket.SubField != nil {
		m[p.SubFieldKey] = p.Bucket.SubField
	}
	if p.IncludeSharedArea {
		m["has_shared_marine_area"] = p.Bucket.HasSharedMarineArea
	}
	return json.Marshal(m)
}

func toResponse(res *AggregateResult) AggregateResponse {
	buckets := make([]BucketPayload, 0, len(res.Buckets))
	for _, b := range res.Buckets {
		buckets = append(buckets, BucketPayload{
			Bucket:            b,
			SubFieldKey:       res.Family.SubField,
			IncludeSharedArea: res.Family.TracksSharedMarineArea,
		})
	}
	return AggregateResponse{
		Family:  res.Family.Name,
		Count:   len(res.Buckets),
		Buckets: buckets,
	}
}

func finiteOrNull(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nullableSlug(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
