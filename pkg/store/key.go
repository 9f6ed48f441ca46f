package store

import (
	"fmt"
	"math"
)

// Key is a btrfs tree key. Keys order by object id, then type, then offset.
type Key struct {
	ObjectID uint64
	Type     uint8
	Offset   uint64
}

// MaxKey is the largest key.
var MaxKey = Key{ObjectID: math.MaxUint64, Type: math.MaxUint8, Offset: math.MaxUint64}

// KeyRange bounds a search. Both ends are inclusive.
type KeyRange struct {
	Min Key
	Max Key
}

// Compare returns -1, 0 or +1 as k sorts before, equal to or after o.
func (k Key) Compare(o Key) int {
	switch {
	case k.ObjectID != o.ObjectID:
		return compareUint(k.ObjectID, o.ObjectID)
	case k.Type != o.Type:
		return compareUint(uint64(k.Type), uint64(o.Type))
	default:
		return compareUint(k.Offset, o.Offset)
	}
}

// Next returns the key immediately after k. The offset is incremented first,
// carrying into the type and then the object id. ok is false once the object
// id overflows, which means k was MaxKey.
func (k Key) Next() (next Key, ok bool) {
	next = k
	next.Offset++
	if next.Offset != 0 {
		return next, true
	}
	next.Type++
	if next.Type != 0 {
		return next, true
	}
	next.ObjectID++
	if next.ObjectID != 0 {
		return next, true
	}
	return Key{}, false
}

// Contains reports whether k lies within r.
func (r KeyRange) Contains(k Key) bool {
	return r.Min.Compare(k) <= 0 && k.Compare(r.Max) <= 0
}

func (k Key) String() string {
	return fmt.Sprintf("(%d %d %d)", k.ObjectID, k.Type, k.Offset)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return +1
	default:
		return 0
	}
}
