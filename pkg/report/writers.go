package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/samber/lo"

	"btrfsusage/pkg/chunk"
	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/space"
	"btrfsusage/pkg/table"
)

// Detail is everything the per-device reports are built from.
type Detail struct {
	Buckets []models.SpaceBucket
	Records []models.ChunkRecord
	Devices []models.DeviceInfo
}

// allocations returns the buckets backed by chunks, in report order.
func (d Detail) allocations() []models.SpaceBucket {
	return lo.Filter(d.Buckets, func(b models.SpaceBucket, _ int) bool {
		return !b.Flags.IsGlobalReserve()
	})
}

// unallocated returns the raw bytes of dev not held by any chunk.
func (d Detail) unallocated(dev models.DeviceInfo) uint64 {
	allocated := chunk.DeviceTotal(d.Records, dev.DevID)
	if allocated > dev.Size {
		return 0
	}
	return dev.Size - allocated
}

// WriteDiskFree writes the aggregate summary of u.
func WriteDiskFree(w io.Writer, u *space.Usage, units Units) error {
	bw := bufio.NewWriter(w)
	width := units.width()

	fmt.Fprintf(bw, "Disk size:\t\t%*s\n", width, units.Format(u.TotalDisk))
	fmt.Fprintf(bw, "Disk allocated:\t\t%*s\n", width, units.Format(u.Allocated))
	fmt.Fprintf(bw, "Disk unallocated:\t%*s\n", width, units.Format(u.Unallocated))
	fmt.Fprintf(bw, "Used:\t\t\t%*s\n", width, units.Format(u.Used))
	fmt.Fprintf(bw, "Free (Estimated):\t%*s\t(Max: %s, min: %s)\n", width,
		units.Format(u.FreeEstimated), units.Format(u.FreeMax), units.Format(u.FreeMin))
	fmt.Fprintf(bw, "Data to disk ratio:\t%*.0f %%\n", width-2, u.Ratio*100)

	return bw.Flush()
}

// WriteDiskUsageLinear writes one block per allocation class listing the
// devices that hold it, followed by the unallocated space of every device.
func WriteDiskUsageLinear(w io.Writer, d Detail, units Units) error {
	bw := bufio.NewWriter(w)

	for _, b := range d.allocations() {
		fmt.Fprintf(bw, "%s: Size:%s, Used:%s\n", b.Flags, units.Format(b.TotalBytes), units.Format(b.UsedBytes))
		for _, dev := range d.Devices {
			r, ok := chunk.Find(d.Records, b.Flags, dev.DevID)
			if !ok {
				continue
			}
			fmt.Fprintf(bw, "   %s\t%10s\n", dev.Path, units.Format(r.Size))
		}
		bw.WriteByte('\n')
	}

	bw.WriteString("Unallocated:\n")
	for _, dev := range d.Devices {
		fmt.Fprintf(bw, "   %s\t%10s\n", dev.Path, units.Format(d.unallocated(dev)))
	}

	return bw.Flush()
}

// WriteDiskUsageTabular writes a device by allocation class grid.
func WriteDiskUsageTabular(w io.Writer, d Detail, units Units) error {
	buckets := d.allocations()
	cols := len(buckets) + 2
	rows := len(d.Devices) + 5
	t := table.New(cols, rows)

	// Setting cells inside the fixed dimensions cannot fail.
	set := func(col, row int, align table.Alignment, text string) {
		_ = t.Set(col, row, align, text)
	}

	ruleRow := len(d.Devices) + 2
	totalRow := ruleRow + 1
	usedRow := ruleRow + 2
	unallocCol := cols - 1

	for i, b := range buckets {
		col := i + 1
		set(col, 0, table.Left, profile.ClassLabel(b.Flags))
		set(col, 1, table.Left, profile.ProfileLabel(b.Flags))
		set(col, totalRow, table.Right, units.Format(b.TotalBytes))
		set(col, usedRow, table.Right, units.Format(b.UsedBytes))

		for j, dev := range d.Devices {
			if r, ok := chunk.Find(d.Records, b.Flags, dev.DevID); ok {
				set(col, j+2, table.Right, units.Format(r.Size))
			} else {
				set(col, j+2, table.Right, "-")
			}
		}
	}

	set(unallocCol, 1, table.Left, "Unallocated")
	var unallocated uint64
	for j, dev := range d.Devices {
		free := d.unallocated(dev)
		unallocated += free
		set(0, j+2, table.Left, dev.Path)
		set(unallocCol, j+2, table.Right, units.Format(free))
	}

	for col := 0; col < cols; col++ {
		set(col, ruleRow, table.Rule, "")
	}
	set(0, totalRow, table.Left, "Total")
	set(unallocCol, totalRow, table.Right, units.Format(unallocated))
	set(0, usedRow, table.Left, "Used")

	return t.Render(w)
}

// WriteDeviceUsage writes, for every device, its size, the space each
// allocation class holds on it and what is left unallocated.
func WriteDeviceUsage(w io.Writer, d Detail, units Units) error {
	bw := bufio.NewWriter(w)

	for _, dev := range d.Devices {
		fmt.Fprintf(bw, "%s, ID: %d\n", dev.Path, dev.DevID)
		fmt.Fprintf(bw, "   %-24s%10s\n", "Device size:", units.Format(dev.Size))
		for _, b := range d.allocations() {
			r, ok := chunk.Find(d.Records, b.Flags, dev.DevID)
			if !ok {
				continue
			}
			fmt.Fprintf(bw, "   %-24s%10s\n", b.Flags.String()+":", units.Format(r.Size))
		}
		fmt.Fprintf(bw, "   %-24s%10s\n", "Unallocated:", units.Format(d.unallocated(dev)))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
