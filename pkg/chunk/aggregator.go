package chunk

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/store"
)

type recordKey struct {
	flags profile.Flags
	devid uint64
}

// Aggregate folds every chunk of src into one record per (type, device),
// holding the physical bytes that device stores for that type. Nothing is
// returned if src fails.
func Aggregate(src Source) ([]models.ChunkRecord, error) {
	totals := make(map[recordKey]uint64)

	for src.Next() {
		d := src.Chunk()
		share := d.Length / profile.StripeDivisor(d.Type, d.NumStripes, d.SubStripes)
		for _, devid := range d.Devices {
			totals[recordKey{flags: d.Type, devid: devid}] += share
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	records := lo.MapToSlice(totals, func(k recordKey, size uint64) models.ChunkRecord {
		return models.ChunkRecord{Type: k.flags, DevID: k.devid, Size: size}
	})
	SortRecords(records)
	return records, nil
}

// Load scans the chunk tree of s and aggregates it.
func Load(s store.Store, batchSize int) ([]models.ChunkRecord, error) {
	return Aggregate(NewScanner(s, batchSize))
}

// SortRecords orders records by allocation class, then device id.
func SortRecords(records []models.ChunkRecord) {
	slices.SortFunc(records, func(a, b models.ChunkRecord) int {
		if c := profile.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return cmp.Compare(a.DevID, b.DevID)
	})
}

// DeviceTotal returns the physical bytes allocated on devid across all types.
func DeviceTotal(records []models.ChunkRecord, devid uint64) uint64 {
	return lo.SumBy(records, func(r models.ChunkRecord) uint64 {
		if r.DevID != devid {
			return 0
		}
		return r.Size
	})
}

// Find returns the record for a bucket flags value on devid.
func Find(records []models.ChunkRecord, flags profile.Flags, devid uint64) (models.ChunkRecord, bool) {
	return lo.Find(records, func(r models.ChunkRecord) bool {
		return r.DevID == devid && profile.SameBucket(r.Type, flags)
	})
}
