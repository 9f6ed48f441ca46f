package space

import (
	"math"

	"github.com/ccoveille/go-safecast/v2"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/store"
)

// Usage is the aggregate view of a filesystem's space.
type Usage struct {
	TotalDisk     uint64  // Sum of device sizes
	Allocated     uint64  // Physical bytes held by chunks
	Unallocated   uint64  // TotalDisk - Allocated
	Used          uint64  // Logical bytes in use
	Free          uint64  // Logical bytes allocated but unused
	Ratio         float64 // (Used + Free) / Allocated
	FreeEstimated uint64  // Ratio * TotalDisk - Used
	FreeMax       uint64  // Unallocated + Free
	FreeMin       uint64  // Unallocated/2 + Free, unallocated space taken at 2x redundancy
}

// Calculate derives usage from the total disk size and the space buckets.
// At least one bucket must have allocated space.
func Calculate(totalDisk uint64, buckets []models.SpaceBucket) (*Usage, error) {
	u := &Usage{TotalDisk: totalDisk}

	for _, b := range buckets {
		if b.Flags.IsGlobalReserve() {
			continue
		}
		u.Allocated += b.TotalBytes * profile.RedundancyDivisor(b.Flags)
		u.Used += b.UsedBytes
		if b.TotalBytes > b.UsedBytes {
			u.Free += b.TotalBytes - b.UsedBytes
		}
	}

	if u.Allocated == 0 {
		return nil, store.PreconditionError{Reason: "no allocated space"}
	}

	if totalDisk > u.Allocated {
		u.Unallocated = totalDisk - u.Allocated
	}

	u.Ratio = (float64(u.Used) + float64(u.Free)) / float64(u.Allocated)

	// Over-committed estimates are reported as nothing left
	estimate, err := safecast.Convert[uint64](math.Floor(u.Ratio*float64(totalDisk) - float64(u.Used)))
	if err != nil {
		estimate = 0
	}
	u.FreeEstimated = estimate
	u.FreeMax = u.Unallocated + u.Free
	u.FreeMin = u.Unallocated/2 + u.Free
	return u, nil
}
