package models

import "github.com/google/uuid"

// DeviceInfo describes one physical device of a filesystem.
type DeviceInfo struct {
	DevID     uint64    `json:"devid"`
	UUID      uuid.UUID `json:"uuid"`
	Path      string    `json:"path"`
	Size      uint64    `json:"size"`       // Raw capacity in bytes
	BytesUsed uint64    `json:"bytes_used"` // As reported by the filesystem
}

// FilesystemInfo carries the device bookkeeping of a mounted filesystem.
type FilesystemInfo struct {
	FSID       uuid.UUID `json:"fsid"`
	NumDevices uint64    `json:"num_devices"`
	MaxID      uint64    `json:"max_id"`
}
