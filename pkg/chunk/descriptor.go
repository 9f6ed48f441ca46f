// Package chunk walks the chunk tree of a filesystem and folds its chunks
// into per device physical usage.
package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"

	"btrfsusage/pkg/profile"
)

const (
	// Layout of struct btrfs_chunk as stored in the chunk tree.
	chunkHeaderSize = 48
	stripeSize      = 32

	offLength     = 0
	offType       = 24
	offNumStripes = 44
	offSubStripes = 46
)

var errShortChunk = errors.New("chunk item too short")

// Descriptor is one chunk as read from the chunk tree.
type Descriptor struct {
	Offset     uint64 // Logical start, from the item key
	Type       profile.Flags
	Length     uint64 // Logical length
	NumStripes uint16
	SubStripes uint16
	Devices    []uint64 // Device id of every stripe
}

// Decode parses a chunk item payload. Chunk items are little-endian on disk.
func Decode(offset uint64, data []byte) (Descriptor, error) {
	if len(data) < chunkHeaderSize {
		return Descriptor{}, fmt.Errorf("%w: %d bytes", errShortChunk, len(data))
	}

	le := binary.LittleEndian
	d := Descriptor{
		Offset:     offset,
		Length:     le.Uint64(data[offLength:]),
		Type:       profile.Flags(le.Uint64(data[offType:])),
		NumStripes: le.Uint16(data[offNumStripes:]),
		SubStripes: le.Uint16(data[offSubStripes:]),
	}

	need := chunkHeaderSize + int(d.NumStripes)*stripeSize
	if len(data) < need {
		return Descriptor{}, fmt.Errorf("%w: %d stripes need %d bytes, have %d",
			errShortChunk, d.NumStripes, need, len(data))
	}

	d.Devices = make([]uint64, d.NumStripes)
	for i := range d.Devices {
		d.Devices[i] = le.Uint64(data[chunkHeaderSize+i*stripeSize:])
	}
	return d, nil
}

// Encode returns the chunk item payload for d. Stripe offsets and uuids are zero.
func Encode(d Descriptor) []byte {
	data := make([]byte, chunkHeaderSize+len(d.Devices)*stripeSize)

	le := binary.LittleEndian
	le.PutUint64(data[offLength:], d.Length)
	le.PutUint64(data[offType:], uint64(d.Type))
	le.PutUint16(data[offNumStripes:], d.NumStripes)
	le.PutUint16(data[offSubStripes:], d.SubStripes)
	for i, devid := range d.Devices {
		le.PutUint64(data[chunkHeaderSize+i*stripeSize:], devid)
	}
	return data
}
