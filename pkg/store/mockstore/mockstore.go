// Package mockstore provides a testify mock of store.Store.
package mockstore

import (
	"github.com/stretchr/testify/mock"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/store"
)

// Store is a mock implementation of store.Store for testing.
type Store struct {
	mock.Mock

	// Tree, when set, serves SearchMetadata instead of the mock expectations.
	Tree *Tree
}

var _ store.Store = (*Store)(nil)

func (m *Store) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *Store) SpaceInfo(slots uint64) ([]models.SpaceBucket, uint64, error) {
	args := m.Called(slots)
	buckets, _ := args.Get(0).([]models.SpaceBucket)
	total, _ := args.Get(1).(uint64)
	return buckets, total, args.Error(2)
}

func (m *Store) SearchMetadata(treeID uint64, r store.KeyRange, maxItems int) ([]store.SearchItem, error) {
	if m.Tree != nil {
		return m.Tree.Search(treeID, r, maxItems)
	}
	args := m.Called(treeID, r, maxItems)
	items, _ := args.Get(0).([]store.SearchItem)
	return items, args.Error(1)
}

func (m *Store) FilesystemInfo() (*models.FilesystemInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FilesystemInfo), args.Error(1)
}

func (m *Store) DeviceInfo(devid uint64) (*models.DeviceInfo, error) {
	args := m.Called(devid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceInfo), args.Error(1)
}

func (m *Store) DeviceRawCapacity(path string) (uint64, error) {
	args := m.Called(path)
	size, _ := args.Get(0).(uint64)
	return size, args.Error(1)
}

func (m *Store) TotalCapacity() uint64 {
	args := m.Called()
	size, _ := args.Get(0).(uint64)
	return size
}

func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}
