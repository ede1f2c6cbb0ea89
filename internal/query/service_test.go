package query

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
	"github.com/bluecover-lab/project-bluecover/internal/core/storage"
	storagemocks "github.com/bluecover-lab/project-bluecover/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func yptr(y int) *int         { return &y }

func newTestService(t *testing.T, strict bool) (*Service, *storagemocks.StatStore) {
	t.Helper()
	store := storagemocks.NewStatStore(t)
	return NewService(store, stats.NewFamilyRegistry(), "en", strict), store
}

func TestService_Aggregate_Validation(t *testing.T) {
	svc, _ := newTestService(t, false)

	tests := []struct {
		name string
		q    AggregateQuery
	}{
		{
			name: "unknown family",
			q:    AggregateQuery{Family: "no-such-family", Locations: []string{"FRA"}},
		},
		{
			name: "empty locations",
			q:    AggregateQuery{Family: stats.FamilyProtectionCoverage},
		},
		{
			name: "sub-field filter on family without sub-dimension",
			q: AggregateQuery{
				Family:       stats.FamilyProtectionCoverage,
				Locations:    []string{"FRA"},
				SubFieldSlug: "mangroves",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Aggregate(context.Background(), tc.q)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestService_Aggregate_MergesSameKey(t *testing.T) {
	svc, store := newTestService(t, false)

	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.On("QueryStatRecords", mock.Anything, stats.FamilyProtectionCoverage, storage.StatFilter{
		LocationCodes: []string{"FRA", "USA"},
	}).Return([]*v1.StatRecord{
		{ID: "r1", Year: 2020, LocationCode: "FRA", EnvironmentSlug: "marine", ProtectedArea: fptr(100), TotalArea: fptr(1000), UpdatedAt: updated},
		{ID: "r2", Year: 2020, LocationCode: "USA", EnvironmentSlug: "marine", ProtectedArea: fptr(50), TotalArea: fptr(500), UpdatedAt: updated.Add(time.Hour)},
	}, nil).Once()

	res, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:    stats.FamilyProtectionCoverage,
		Locations: []string{"FRA", "USA"},
	})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 1)

	b := res.Buckets[0]
	require.Equal(t, 2020, *b.Year)
	require.Equal(t, 1500.0, b.TotalArea)
	require.Equal(t, 150.0, b.ProtectedArea)
	require.Equal(t, 10.0, b.Coverage)
	require.Equal(t, []string{"FRA", "USA"}, b.Locations)
	require.Equal(t, updated.Add(time.Hour), b.UpdatedAt)
}

func TestService_Aggregate_SortsByYearRegardlessOfInputOrder(t *testing.T) {
	svc, store := newTestService(t, false)

	store.On("QueryStatRecords", mock.Anything, stats.FamilyProtectionCoverage, mock.Anything).
		Return([]*v1.StatRecord{
			{ID: "r1", Year: 2023, LocationCode: "FRA", ProtectedArea: fptr(1), TotalArea: fptr(10)},
			{ID: "r2", Year: 2019, LocationCode: "FRA", ProtectedArea: fptr(1), TotalArea: fptr(10)},
			{ID: "r3", Year: 2021, LocationCode: "FRA", ProtectedArea: fptr(1), TotalArea: fptr(10)},
		}, nil).Once()

	res, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:    stats.FamilyProtectionCoverage,
		Locations: []string{"FRA"},
	})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 3)
	require.Equal(t, 2019, *res.Buckets[0].Year)
	require.Equal(t, 2021, *res.Buckets[1].Year)
	require.Equal(t, 2023, *res.Buckets[2].Year)
}

func TestService_Aggregate_PropagatesFilters(t *testing.T) {
	svc, store := newTestService(t, false)

	store.On("QueryStatRecords", mock.Anything, stats.FamilyHabitat, storage.StatFilter{
		LocationCodes:   []string{"FRA"},
		Year:            yptr(2021),
		EnvironmentSlug: "marine",
		SubFieldSlug:    "mangroves",
	}).Return([]*v1.StatRecord(nil), nil).Once()

	res, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:       stats.FamilyHabitat,
		Locations:    []string{"FRA"},
		Year:         yptr(2021),
		Environment:  "marine",
		SubFieldSlug: "mangroves",
	})
	require.NoError(t, err)
	require.Empty(t, res.Buckets)
}

func TestService_Aggregate_StoreErrorSurfaces(t *testing.T) {
	svc, store := newTestService(t, false)

	store.On("QueryStatRecords", mock.Anything, stats.FamilyProtectionCoverage, mock.Anything).
		Return(nil, fmt.Errorf("db failure")).Once()

	_, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:    stats.FamilyProtectionCoverage,
		Locations: []string{"FRA"},
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidQuery)
	require.Contains(t, err.Error(), "db failure")
}

func TestService_Aggregate_DefaultModeKeepsNaNBuckets(t *testing.T) {
	svc, store := newTestService(t, false)

	// Row missing both protected_area and area: the bucket is emitted with
	// NaN sums rather than dropped.
	store.On("QueryStatRecords", mock.Anything, stats.FamilyProtectionCoverage, mock.Anything).
		Return([]*v1.StatRecord{
			{ID: "r1", Year: 2020, LocationCode: "FRA", TotalArea: fptr(1000)},
		}, nil).Once()

	res, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:    stats.FamilyProtectionCoverage,
		Locations: []string{"FRA"},
	})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 1)
	require.True(t, math.IsNaN(res.Buckets[0].ProtectedArea))
	require.True(t, math.IsNaN(res.Buckets[0].Coverage))
}

func TestService_Aggregate_StrictModeSkipsMalformedRows(t *testing.T) {
	svc, store := newTestService(t, true)

	store.On("QueryStatRecords", mock.Anything, stats.FamilyProtectionCoverage, mock.Anything).
		Return([]*v1.StatRecord{
			{ID: "good", Year: 2020, LocationCode: "FRA", ProtectedArea: fptr(100), TotalArea: fptr(1000)},
			{ID: "bad", Year: 2020, LocationCode: "USA", TotalArea: fptr(500)},
		}, nil).Once()

	res, err := svc.Aggregate(context.Background(), AggregateQuery{
		Family:    stats.FamilyProtectionCoverage,
		Locations: []string{"FRA", "USA"},
	})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 1)
	require.Equal(t, 100.0, res.Buckets[0].ProtectedArea)
	require.Equal(t, []string{"FRA"}, res.Buckets[0].Locations)
}

func TestService_Summary_AggregatesAllFamilies(t *testing.T) {
	svc, store := newTestService(t, false)

	for _, fam := range stats.NewFamilyRegistry().Names() {
		store.On("QueryStatRecords", mock.Anything, fam, mock.Anything).
			Return([]*v1.StatRecord{
				{ID: fam + "-r1", Year: 2020, LocationCode: "FRA", ProtectedArea: fptr(10), TotalArea: fptr(100)},
			}, nil).Once()
	}

	results, err := svc.Summary(context.Background(), SummaryQuery{Locations: []string{"FRA"}})
	require.NoError(t, err)
	require.Len(t, results, 4)
	for fam, res := range results {
		require.Len(t, res.Buckets, 1, "family %s", fam)
		require.Equal(t, 10.0, res.Buckets[0].Coverage)
	}
}

func TestService_Summary_FailsWhenOneFamilyFails(t *testing.T) {
	store := storagemocks.NewStatStore(t)
	svc := NewService(store, stats.NewFamilyRegistry(), "en", false)

	store.On("QueryStatRecords", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("db failure"))

	_, err := svc.Summary(context.Background(), SummaryQuery{Locations: []string{"FRA"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "db failure")
}
