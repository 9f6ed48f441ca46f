// Package btrfs implements store.Store on a mounted btrfs filesystem through
// its ioctl interface.
package btrfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/store"
)

// Argument sizes of the ioctls used here.
const (
	spaceArgsHeaderSize = 16
	spaceInfoSize       = 24
	searchArgsSize      = 4096
	searchKeySize       = 104
	searchHeaderSize    = 32
	fsInfoArgsSize      = 1024
	devInfoArgsSize     = 4096
	devInfoPathOffset   = 3072
)

var (
	errShortBuffer   = errors.New("short ioctl buffer")
	errTruncatedItem = errors.New("search item exceeds result buffer")
)

var ne = binary.NativeEndian

// encodeSpaceArgs returns a btrfs_ioctl_space_args buffer with room for slots entries.
func encodeSpaceArgs(slots uint64) []byte {
	buf := make([]byte, spaceArgsHeaderSize+slots*spaceInfoSize)
	ne.PutUint64(buf[0:], slots)
	return buf
}

// decodeSpaceArgs reads the entries the kernel filled in and the count it reported.
func decodeSpaceArgs(buf []byte) ([]models.SpaceBucket, uint64, error) {
	if len(buf) < spaceArgsHeaderSize {
		return nil, 0, errShortBuffer
	}
	slots := ne.Uint64(buf[0:])
	total := ne.Uint64(buf[8:])

	n := min(slots, total, uint64(len(buf)-spaceArgsHeaderSize)/spaceInfoSize)
	buckets := make([]models.SpaceBucket, 0, n)
	for i := uint64(0); i < n; i++ {
		entry := buf[spaceArgsHeaderSize+i*spaceInfoSize:]
		buckets = append(buckets, models.SpaceBucket{
			Flags:      profile.Flags(ne.Uint64(entry[0:])),
			TotalBytes: ne.Uint64(entry[8:]),
			UsedBytes:  ne.Uint64(entry[16:]),
		})
	}
	return buckets, total, nil
}

// encodeSearchKey fills the btrfs_ioctl_search_key at the head of buf.
func encodeSearchKey(buf []byte, treeID uint64, from, to store.Key, nrItems uint32) {
	clear(buf[:searchKeySize])
	ne.PutUint64(buf[0:], treeID)
	ne.PutUint64(buf[8:], from.ObjectID)
	ne.PutUint64(buf[16:], to.ObjectID)
	ne.PutUint64(buf[24:], from.Offset)
	ne.PutUint64(buf[32:], to.Offset)
	ne.PutUint64(buf[40:], 0)
	ne.PutUint64(buf[48:], ^uint64(0))
	ne.PutUint32(buf[56:], uint32(from.Type))
	ne.PutUint32(buf[60:], uint32(to.Type))
	ne.PutUint32(buf[64:], nrItems)
}

// decodeSearchResult parses the items the kernel placed after the search key.
func decodeSearchResult(buf []byte) ([]store.SearchItem, error) {
	if len(buf) < searchKeySize {
		return nil, errShortBuffer
	}
	nr := ne.Uint32(buf[64:])
	items := make([]store.SearchItem, 0, nr)

	off := searchKeySize
	for i := uint32(0); i < nr; i++ {
		if off+searchHeaderSize > len(buf) {
			return nil, errTruncatedItem
		}
		hdr := buf[off:]
		length := int(ne.Uint32(hdr[28:]))
		off += searchHeaderSize
		if off+length > len(buf) {
			return nil, errTruncatedItem
		}
		items = append(items, store.SearchItem{
			TransID: ne.Uint64(hdr[0:]),
			Key: store.Key{
				ObjectID: ne.Uint64(hdr[8:]),
				Offset:   ne.Uint64(hdr[16:]),
				Type:     uint8(ne.Uint32(hdr[24:])), //nolint:gosec // key types are 8 bit
			},
			Data: bytes.Clone(buf[off : off+length]),
		})
		off += length
	}
	return items, nil
}

// decodeFSInfo parses btrfs_ioctl_fs_info_args.
func decodeFSInfo(buf []byte) (*models.FilesystemInfo, error) {
	if len(buf) < fsInfoArgsSize {
		return nil, errShortBuffer
	}
	fsid, err := uuid.FromBytes(buf[16:32])
	if err != nil {
		return nil, fmt.Errorf("failed to decode fsid: %w", err)
	}
	return &models.FilesystemInfo{
		MaxID:      ne.Uint64(buf[0:]),
		NumDevices: ne.Uint64(buf[8:]),
		FSID:       fsid,
	}, nil
}

// encodeDevInfo returns a btrfs_ioctl_dev_info_args buffer asking for devid.
func encodeDevInfo(devid uint64) []byte {
	buf := make([]byte, devInfoArgsSize)
	ne.PutUint64(buf[0:], devid)
	return buf
}

// decodeDevInfo parses btrfs_ioctl_dev_info_args.
func decodeDevInfo(buf []byte) (*models.DeviceInfo, error) {
	if len(buf) < devInfoArgsSize {
		return nil, errShortBuffer
	}
	devUUID, err := uuid.FromBytes(buf[8:24])
	if err != nil {
		return nil, fmt.Errorf("failed to decode device uuid: %w", err)
	}
	path := buf[devInfoPathOffset:devInfoArgsSize]
	if i := bytes.IndexByte(path, 0); i >= 0 {
		path = path[:i]
	}
	return &models.DeviceInfo{
		DevID:     ne.Uint64(buf[0:]),
		UUID:      devUUID,
		BytesUsed: ne.Uint64(buf[24:]),
		Size:      ne.Uint64(buf[32:]),
		Path:      string(path),
	}, nil
}
