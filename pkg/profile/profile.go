// Package profile classifies btrfs allocation flags into a content class and a
// redundancy profile, and provides the ordering and divisors derived from them.
package profile

// Flags is the block group flag set carried by chunks and space info entries.
type Flags uint64

// Content class bits.
const (
	Data     Flags = 1 << 0
	System   Flags = 1 << 1
	Metadata Flags = 1 << 2
)

// Redundancy profile bits.
const (
	RAID0  Flags = 1 << 3
	RAID1  Flags = 1 << 4
	DUP    Flags = 1 << 5
	RAID10 Flags = 1 << 6
)

// GlobalReserve marks the space info pseudo entry for the global block
// reserve. It is not a chunk allocation.
const GlobalReserve Flags = 1 << 49

const (
	// TypeMask selects the content class bits.
	TypeMask = Data | System | Metadata
	// ProfileMask selects the redundancy profile bits.
	ProfileMask = RAID0 | RAID1 | DUP | RAID10
)

// ClassLabel returns the display label of the content class.
func ClassLabel(f Flags) string {
	switch {
	case f&System != 0:
		return "System"
	case f&Data != 0 && f&Metadata != 0:
		return "Data+Metadata"
	case f&Data != 0:
		return "Data"
	case f&Metadata != 0:
		return "Metadata"
	default:
		return "Unknown"
	}
}

// ProfileLabel returns the display label of the redundancy profile.
func ProfileLabel(f Flags) string {
	switch {
	case f&RAID0 != 0:
		return "RAID0"
	case f&RAID1 != 0:
		return "RAID1"
	case f&DUP != 0:
		return "DUP"
	case f&RAID10 != 0:
		return "RAID10"
	default:
		return "Single"
	}
}

// String renders the flags as "Class,Profile".
func (f Flags) String() string {
	return ClassLabel(f) + "," + ProfileLabel(f)
}

// IsGlobalReserve reports whether f describes the global reserve pseudo entry.
func (f Flags) IsGlobalReserve() bool {
	return f&GlobalReserve != 0
}

// SameBucket reports whether a and b share both content class and profile.
func SameBucket(a, b Flags) bool {
	return a&(TypeMask|ProfileMask) == b&(TypeMask|ProfileMask)
}

// Compare orders flags for display. Equal content classes compare by profile
// bits; otherwise System sorts first and the rest compare by class bits.
// Only class and profile bits take part, so the order is total over them.
func Compare(a, b Flags) int {
	var mask Flags

	aSys, bSys := a&System != 0, b&System != 0
	switch {
	case a&TypeMask == b&TypeMask:
		mask = ProfileMask
	case aSys && !bSys:
		return -1
	case bSys && !aSys:
		return +1
	default:
		mask = TypeMask
	}

	switch {
	case a&mask > b&mask:
		return +1
	case a&mask < b&mask:
		return -1
	default:
		return 0
	}
}

// RedundancyDivisor returns the number of physical copies a profile keeps of
// its logical data: 2 for RAID1, DUP and RAID10, 1 otherwise.
func RedundancyDivisor(f Flags) uint64 {
	switch {
	case f&RAID0 != 0:
		return 1
	case f&(RAID1|DUP|RAID10) != 0:
		return 2
	default:
		return 1
	}
}

// StripeDivisor returns how many ways one chunk's logical length is split
// across its stripes. Mirrored profiles hold the full length on every stripe,
// RAID10 splits across stripes/substripes mirrors, anything else splits across
// every stripe. The result is never zero.
func StripeDivisor(f Flags, numStripes, subStripes uint16) uint64 {
	var div uint64

	switch {
	case f&(RAID1|DUP) != 0:
		div = 1
	case f&RAID10 != 0:
		if subStripes > 0 {
			div = uint64(numStripes / subStripes)
		}
	default:
		div = uint64(numStripes)
	}

	if div == 0 {
		return 1
	}
	return div
}
