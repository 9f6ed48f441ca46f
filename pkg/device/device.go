// Package device enumerates the devices of a filesystem.
package device

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"btrfsusage/pkg/log"
	"btrfsusage/pkg/models"
	"btrfsusage/pkg/store"
)

// Load returns every device of s with its raw capacity, sorted by path.
// Device ids may have holes; the number found must match the reported count.
func Load(s store.Store) ([]models.DeviceInfo, error) {
	fsInfo, err := s.FilesystemInfo()
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", s.Path()).Str("fsid", fsInfo.FSID.String()).
		Uint64("num_devices", fsInfo.NumDevices).Uint64("max_id", fsInfo.MaxID).
		Msg("Filesystem info")

	var devices []models.DeviceInfo
	for devid := uint64(0); ; devid++ {
		info, err := loadDevice(s, devid)
		if err != nil {
			return nil, err
		}
		if info != nil {
			devices = append(devices, *info)
		}

		// MaxID may be the largest uint64
		if devid == fsInfo.MaxID {
			break
		}
	}

	if uint64(len(devices)) != fsInfo.NumDevices {
		return nil, store.PreconditionError{
			Path: s.Path(),
			Reason: fmt.Sprintf("found %d devices, filesystem reports %d",
				len(devices), fsInfo.NumDevices),
		}
	}

	slices.SortStableFunc(devices, func(a, b models.DeviceInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return devices, nil
}

// loadDevice returns the descriptor of devid with its raw capacity, or nil
// when there is no such device.
func loadDevice(s store.Store, devid uint64) (*models.DeviceInfo, error) {
	info, err := s.DeviceInfo(devid)
	if err != nil {
		var notFound store.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		log.Error().Err(err).Str("path", s.Path()).Uint64("devid", devid).Msg("Failed to get device info")
		return nil, err
	}

	size, err := s.DeviceRawCapacity(info.Path)
	if err != nil {
		log.Error().Err(err).Str("device", info.Path).Uint64("devid", devid).Msg("Failed to get device size")
		return nil, err
	}
	info.Size = size
	return info, nil
}

// TotalSize returns the sum of the raw capacities of devices.
func TotalSize(devices []models.DeviceInfo) uint64 {
	return lo.SumBy(devices, func(d models.DeviceInfo) uint64 {
		return d.Size
	})
}
