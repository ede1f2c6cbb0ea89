package storage

import (
	"context"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
)

// StatFilter narrows a stat-record query. LocationCodes is the mandatory
// location set; the other fields are optional (zero value = no filter).
type StatFilter struct {
	LocationCodes   []string
	Year            *int
	EnvironmentSlug string
	SubFieldSlug    string
}

// StatStore defines the storage collaborator the aggregation driver and the
// ingestion layer depend on.
type StatStore interface {
	// QueryStatRecords returns all rows of one family matching the filter,
	// each populated with its location reference. Order is unspecified.
	QueryStatRecords(ctx context.Context, family string, filter StatFilter) ([]*v1.StatRecord, error)

	// SaveStatRecords upserts a batch of stat records for one family in a
	// single transaction, keyed on (family, year, location, environment,
	// sub-field). Returns the number of records written.
	SaveStatRecords(ctx context.Context, family string, records []*v1.StatRecord) (int, error)

	// SaveLocations upserts location reference rows in a single transaction.
	SaveLocations(ctx context.Context, locations []*v1.Location) (int, error)
}
