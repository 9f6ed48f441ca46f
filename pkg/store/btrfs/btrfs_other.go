//go:build !linux

package btrfs

import (
	"errors"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/store"
)

var errUnsupported = errors.New("btrfs is only supported on Linux")

// Store is not implemented on non-Linux platforms.
type Store struct {
	path string
}

var _ store.Store = (*Store)(nil)

// Open always fails on non-Linux platforms.
func Open(path string) (*Store, error) {
	return nil, store.IOError{Path: path, Op: "access", Err: errUnsupported}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return nil }

func (s *Store) SpaceInfo(uint64) ([]models.SpaceBucket, uint64, error) {
	return nil, 0, errUnsupported
}

func (s *Store) SearchMetadata(uint64, store.KeyRange, int) ([]store.SearchItem, error) {
	return nil, errUnsupported
}

func (s *Store) FilesystemInfo() (*models.FilesystemInfo, error) {
	return nil, errUnsupported
}

func (s *Store) DeviceInfo(uint64) (*models.DeviceInfo, error) {
	return nil, errUnsupported
}

func (s *Store) DeviceRawCapacity(string) (uint64, error) {
	return 0, errUnsupported
}

func (s *Store) TotalCapacity() uint64 { return 0 }
