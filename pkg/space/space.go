// Package space loads the filesystem's own space accounting and derives the
// aggregate usage figures from it.
package space

import (
	"slices"

	"btrfsusage/pkg/log"
	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/store"
)

// MaxSlots bounds the number of space buckets a single query may allocate.
const MaxSlots = 1 << 16

// Load returns the space buckets of s sorted by allocation class. It probes
// the bucket count first and then asks for exactly that many; buckets added
// in between are not reported.
func Load(s store.Store) ([]models.SpaceBucket, error) {
	_, count, err := s.SpaceInfo(0)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, store.NoAllocationsError{Path: s.Path()}
	}
	if count > MaxSlots {
		return nil, store.ResourceExhaustionError{What: "space slots", Count: count}
	}

	buckets, total, err := s.SpaceInfo(count)
	if err != nil {
		return nil, err
	}
	if total != count {
		log.Debug().Str("path", s.Path()).Uint64("probed", count).Uint64("reported", total).
			Msg("Space info changed between probe and query")
	}
	if len(buckets) == 0 {
		return nil, store.NoAllocationsError{Path: s.Path()}
	}

	Sort(buckets)
	return buckets, nil
}

// Sort orders buckets by allocation class.
func Sort(buckets []models.SpaceBucket) {
	slices.SortStableFunc(buckets, func(a, b models.SpaceBucket) int {
		return profile.Compare(a.Flags, b.Flags)
	})
}
