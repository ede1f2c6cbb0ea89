package stats

import "strconv"

// BucketKey uniquely identifies one aggregate bucket. Absent components are
// the empty string, not omitted: (2020, no environment, no sub-field) and an
// explicit (2020, "", "") are the same bucket. That collision is intended:
// both mean "year 2020, no further dimension".
type BucketKey struct {
	Year        string
	Environment string
	SubField    string
}

// KeyFor builds the bucket key for one normalized row. A nil year becomes
// the empty string.
func KeyFor(year *int, environmentSlug, subFieldSlug string) BucketKey {
	k := BucketKey{Environment: environmentSlug, SubField: subFieldSlug}
	if year != nil {
		k.Year = strconv.Itoa(*year)
	}
	return k
}

// String renders the key in "year-environment-subfield" form for logging.
func (k BucketKey) String() string {
	return k.Year + "-" + k.Environment + "-" + k.SubField
}
