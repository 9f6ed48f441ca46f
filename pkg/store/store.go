package store

import (
	"btrfsusage/pkg/models"
)

// ChunkTreeID is the id of the tree holding chunk items.
const ChunkTreeID = 3

// SearchItem is one item returned by a metadata search.
type SearchItem struct {
	Key     Key
	TransID uint64
	Data    []byte
}

// Store defines the queries a report needs from an open filesystem.
type Store interface {
	// Path returns the path the store was opened on.
	Path() string

	// SpaceInfo returns at most slots space buckets together with the number
	// of buckets the filesystem holds. A zero slots value only probes the count.
	SpaceInfo(slots uint64) ([]models.SpaceBucket, uint64, error)

	// SearchMetadata returns up to maxItems items of tree treeID within r, in
	// key order. Fewer than maxItems items means r holds no more items.
	SearchMetadata(treeID uint64, r KeyRange, maxItems int) ([]SearchItem, error)

	// FilesystemInfo returns the device count and the highest device id.
	FilesystemInfo() (*models.FilesystemInfo, error)

	// DeviceInfo returns the descriptor of device devid.
	// Returns NotFoundError when no device has that id.
	DeviceInfo(devid uint64) (*models.DeviceInfo, error)

	// DeviceRawCapacity returns the size in bytes of the device at path.
	DeviceRawCapacity(path string) (uint64, error)

	// TotalCapacity returns the filesystem size, or 0 when it is unavailable.
	TotalCapacity() uint64

	// Close releases the filesystem handle.
	Close() error
}
