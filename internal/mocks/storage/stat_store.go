package storagemocks

import (
	"context"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
	"github.com/bluecover-lab/project-bluecover/internal/core/storage"
	"github.com/stretchr/testify/mock"
)

// StatStore is a testify mock for storage.StatStore.
type StatStore struct {
	mock.Mock
}

// NewStatStore creates a mock wired to the test's cleanup and assertions.
func NewStatStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *StatStore {
	m := &StatStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StatStore) QueryStatRecords(ctx context.Context, family string, filter storage.StatFilter) ([]*v1.StatRecord, error) {
	args := m.Called(ctx, family, filter)
	var records []*v1.StatRecord
	if v := args.Get(0); v != nil {
		records = v.([]*v1.StatRecord)
	}
	return records, args.Error(1)
}

func (m *StatStore) SaveStatRecords(ctx context.Context, family string, records []*v1.StatRecord) (int, error) {
	args := m.Called(ctx, family, records)
	return args.Int(0), args.Error(1)
}

func (m *StatStore) SaveLocations(ctx context.Context, locations []*v1.Location) (int, error) {
	args := m.Called(ctx, locations)
	return args.Int(0), args.Error(1)
}
