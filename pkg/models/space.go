package models

import "btrfsusage/pkg/profile"

// SpaceBucket is one entry of the filesystem's own space accounting.
type SpaceBucket struct {
	Flags      profile.Flags `json:"flags"`
	TotalBytes uint64        `json:"total_bytes"` // Logical bytes allocated to chunks
	UsedBytes  uint64        `json:"used_bytes"`  // Logical bytes in use
}

// ChunkRecord is the physical footprint of one allocation class on one device.
type ChunkRecord struct {
	Type  profile.Flags `json:"type"`
	DevID uint64        `json:"devid"`
	Size  uint64        `json:"size"` // Physical bytes
}
