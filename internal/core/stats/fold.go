package stats

import (
	"sort"
	"time"
)

// Bucket is one aggregate output row, identified by its BucketKey.
// TotalArea and ProtectedArea are running sums; Coverage is recomputed from
// them on every fold, never carried between updates.
type Bucket struct {
	Year                *int
	Environment         string
	SubField            *SubFieldValue
	TotalArea           float64
	ProtectedArea       float64
	Coverage            float64
	Locations           []string
	HasSharedMarineArea bool
	UpdatedAt           time.Time
}

// Accumulator folds canonical rows into buckets. Each aggregation call owns
// one accumulator; nothing persists across calls and no locking is needed.
type Accumulator struct {
	// TrackSharedArea enables the OR'd has_shared_marine_area flag for
	// families that display it.
	TrackSharedArea bool

	buckets map[BucketKey]*Bucket
	order   []BucketKey
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(trackSharedArea bool) *Accumulator {
	return &Accumulator{
		TrackSharedArea: trackSharedArea,
		buckets:         make(map[BucketKey]*Bucket),
	}
}

// Fold merges one normalized row into its bucket, creating the bucket on
// first sight of the key. Arithmetic on NaN inputs propagates NaN without
// failing; the bucket is still emitted.
func (a *Accumulator) Fold(row CanonicalStat) {
	key := KeyFor(row.Year, row.Environment, subFieldSlug(row.SubField))

	b, ok := a.buckets[key]
	if !ok {
		// Dimension fields come from the first contributing row.
		b = &Bucket{
			Year:        row.Year,
			Environment: row.Environment,
			SubField:    row.SubField,
			Locations:   []string{},
		}
		a.buckets[key] = b
		a.order = append(a.order, key)
	}

	b.TotalArea += row.TotalArea
	b.ProtectedArea += row.ProtectedArea
	b.Coverage = CoveragePercent(b.ProtectedArea, b.TotalArea)

	// Appended to the back, one entry per contributing row. Codes are not
	// deduplicated: a location appearing in two rows for the same key is
	// listed twice.
	b.Locations = append(b.Locations, row.LocationCode)

	if a.TrackSharedArea && row.HasSharedMarineArea {
		b.HasSharedMarineArea = true
	}

	if b.UpdatedAt.IsZero() || row.UpdatedAt.After(b.UpdatedAt) {
		b.UpdatedAt = row.UpdatedAt
	}
}

// Len returns the number of distinct bucket keys seen so far.
func (a *Accumulator) Len() int {
	return len(a.buckets)
}

// Buckets returns the final snapshot sorted ascending by year. Rows without
// a year sort first; within equal years, first-seen order is kept.
func (a *Accumulator) Buckets() []Bucket {
	out := make([]Bucket, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.buckets[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return yearLess(out[i].Year, out[j].Year)
	})
	return out
}

func yearLess(a, b *int) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return *a < *b
}

func subFieldSlug(v *SubFieldValue) string {
	if v == nil {
		return ""
	}
	return v.Slug
}
