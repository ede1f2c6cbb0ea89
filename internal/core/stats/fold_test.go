package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func yptr(y int) *int { return &y }

func TestAccumulator_MergesRowsWithSameKey(t *testing.T) {
	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), Environment: "marine", LocationCode: "FRA", ProtectedArea: 100, TotalArea: 1000})
	acc.Fold(CanonicalStat{Year: yptr(2020), Environment: "marine", LocationCode: "USA", ProtectedArea: 50, TotalArea: 500})

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)

	b := buckets[0]
	require.Equal(t, 2020, *b.Year)
	require.Equal(t, "marine", b.Environment)
	require.Equal(t, 1500.0, b.TotalArea)
	require.Equal(t, 150.0, b.ProtectedArea)
	require.Equal(t, 10.0, b.Coverage)
	require.Equal(t, []string{"FRA", "USA"}, b.Locations)
}

func TestAccumulator_DistinctYearsSortedAscending(t *testing.T) {
	acc := NewAccumulator(false)
	// Input order deliberately descending.
	acc.Fold(CanonicalStat{Year: yptr(2022), Environment: "marine", LocationCode: "FRA", ProtectedArea: 1, TotalArea: 10})
	acc.Fold(CanonicalStat{Year: yptr(2020), Environment: "marine", LocationCode: "FRA", ProtectedArea: 1, TotalArea: 10})
	acc.Fold(CanonicalStat{Year: yptr(2021), Environment: "marine", LocationCode: "FRA", ProtectedArea: 1, TotalArea: 10})

	buckets := acc.Buckets()
	require.Len(t, buckets, 3)
	require.Equal(t, 2020, *buckets[0].Year)
	require.Equal(t, 2021, *buckets[1].Year)
	require.Equal(t, 2022, *buckets[2].Year)
}

func TestAccumulator_BucketCountMatchesDistinctKeys(t *testing.T) {
	acc := NewAccumulator(false)
	rows := []CanonicalStat{
		{Year: yptr(2020), Environment: "marine", LocationCode: "A", ProtectedArea: 1, TotalArea: 10},
		{Year: yptr(2020), Environment: "terrestrial", LocationCode: "A", ProtectedArea: 1, TotalArea: 10},
		{Year: yptr(2020), Environment: "marine", SubField: &SubFieldValue{Slug: "mangroves"}, LocationCode: "A", ProtectedArea: 1, TotalArea: 10},
		{Year: yptr(2021), Environment: "marine", LocationCode: "A", ProtectedArea: 1, TotalArea: 10},
		{Environment: "marine", LocationCode: "A", ProtectedArea: 1, TotalArea: 10},
		{Year: yptr(2020), Environment: "marine", LocationCode: "B", ProtectedArea: 1, TotalArea: 10},
	}
	for _, row := range rows {
		acc.Fold(row)
	}

	// 5 distinct (year, environment, subField) triples; the last row merges
	// into the first bucket.
	require.Equal(t, 5, acc.Len())
	require.Len(t, acc.Buckets(), 5)
}

func TestAccumulator_SumInvariant(t *testing.T) {
	acc := NewAccumulator(false)
	areas := []float64{12.5, 7.25, 100, 0.25}
	var want float64
	for _, a := range areas {
		want += a
		acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: a, TotalArea: 10})
	}

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)
	require.Equal(t, want, buckets[0].ProtectedArea)
}

func TestAccumulator_RecencyInvariant(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	t2 := t0.Add(48 * time.Hour)

	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: 1, TotalArea: 10, UpdatedAt: t1})
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "B", ProtectedArea: 1, TotalArea: 10, UpdatedAt: t2})
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "C", ProtectedArea: 1, TotalArea: 10, UpdatedAt: t0})

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)
	require.Equal(t, t2, buckets[0].UpdatedAt)
}

func TestAccumulator_SharedMarineAreaORed(t *testing.T) {
	acc := NewAccumulator(true)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: 1, TotalArea: 10})
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "B", ProtectedArea: 1, TotalArea: 10, HasSharedMarineArea: true})
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "C", ProtectedArea: 1, TotalArea: 10})

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)
	require.True(t, buckets[0].HasSharedMarineArea)

	// Tracking disabled: the flag stays false no matter the contributions.
	acc = NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: 1, TotalArea: 10, HasSharedMarineArea: true})
	require.False(t, acc.Buckets()[0].HasSharedMarineArea)
}

func TestAccumulator_DuplicateLocationCodesKept(t *testing.T) {
	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "FRA", ProtectedArea: 1, TotalArea: 10})
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "FRA", ProtectedArea: 1, TotalArea: 10})

	buckets := acc.Buckets()
	require.Equal(t, []string{"FRA", "FRA"}, buckets[0].Locations)
}

func TestAccumulator_NaNRowStillEmitsBucket(t *testing.T) {
	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), Environment: "marine", LocationCode: "FRA", ProtectedArea: math.NaN(), TotalArea: 1000})

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)
	require.True(t, math.IsNaN(buckets[0].ProtectedArea))
	require.True(t, math.IsNaN(buckets[0].Coverage))
	require.Equal(t, []string{"FRA"}, buckets[0].Locations)
}

func TestAccumulator_ZeroTotalAreaYieldsNonFiniteCoverage(t *testing.T) {
	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: 5, TotalArea: 0})

	buckets := acc.Buckets()
	require.Len(t, buckets, 1)
	require.True(t, math.IsInf(buckets[0].Coverage, 1))

	_, finite := FiniteCoverage(buckets[0].ProtectedArea, buckets[0].TotalArea)
	require.False(t, finite)
}

func TestAccumulator_NilYearSortsFirst(t *testing.T) {
	acc := NewAccumulator(false)
	acc.Fold(CanonicalStat{Year: yptr(2020), LocationCode: "A", ProtectedArea: 1, TotalArea: 10})
	acc.Fold(CanonicalStat{LocationCode: "B", ProtectedArea: 1, TotalArea: 10})

	buckets := acc.Buckets()
	require.Len(t, buckets, 2)
	require.Nil(t, buckets[0].Year)
	require.Equal(t, 2020, *buckets[1].Year)
}
