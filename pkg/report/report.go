package report

import (
	"errors"
	"io"

	"btrfsusage/pkg/chunk"
	"btrfsusage/pkg/device"
	"btrfsusage/pkg/log"
	"btrfsusage/pkg/space"
	"btrfsusage/pkg/store"
)

// Options controls how reports are gathered and printed.
type Options struct {
	Units     Units
	Tabular   bool
	BatchSize int // Chunk tree search batch size
}

// DiskFree writes the aggregate space summary of s.
func DiskFree(s store.Store, w io.Writer, opts Options) error {
	buckets, err := space.Load(s)
	if err != nil {
		return err
	}

	totalDisk, err := diskSize(s)
	if err != nil {
		return err
	}

	u, err := space.Calculate(totalDisk, buckets)
	if err != nil {
		return store.PreconditionError{Path: s.Path(), Reason: err.Error()}
	}
	return WriteDiskFree(w, u, opts.Units)
}

// DiskUsage writes the per allocation class breakdown of s, either as a
// listing or as a table.
func DiskUsage(s store.Store, w io.Writer, opts Options) error {
	d, err := LoadDetail(s, opts.BatchSize)
	if err != nil {
		return err
	}
	if opts.Tabular {
		return WriteDiskUsageTabular(w, *d, opts.Units)
	}
	return WriteDiskUsageLinear(w, *d, opts.Units)
}

// DeviceUsage writes the per device breakdown of s.
func DeviceUsage(s store.Store, w io.Writer, opts Options) error {
	d, err := LoadDetail(s, opts.BatchSize)
	if err != nil {
		return err
	}
	return WriteDeviceUsage(w, *d, opts.Units)
}

// LoadDetail gathers space buckets, chunk records and devices of s.
func LoadDetail(s store.Store, batchSize int) (*Detail, error) {
	buckets, err := space.Load(s)
	if err != nil {
		return nil, err
	}
	records, err := chunk.Load(s, batchSize)
	if err != nil {
		return nil, err
	}
	devices, err := device.Load(s)
	if err != nil {
		return nil, err
	}
	return &Detail{Buckets: buckets, Records: records, Devices: devices}, nil
}

// diskSize returns the raw size of all devices of s, falling back to the
// filesystem capacity when the devices cannot be listed.
func diskSize(s store.Store) (uint64, error) {
	devices, err := device.Load(s)
	if err == nil {
		if total := device.TotalSize(devices); total > 0 {
			return total, nil
		}
	} else {
		var exhausted store.ResourceExhaustionError
		if errors.As(err, &exhausted) {
			return 0, err
		}
		log.Debug().Err(err).Str("path", s.Path()).Msg("Device list unavailable, using filesystem capacity")
	}

	if total := s.TotalCapacity(); total > 0 {
		return total, nil
	}
	return 0, store.PreconditionError{Path: s.Path(), Reason: "couldn't get total disk size"}
}
