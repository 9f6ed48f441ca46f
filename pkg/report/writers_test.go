package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/space"
)

const (
	diskFreeBytes = "Disk size:\t\t              1000\n" +
		"Disk allocated:\t\t               800\n" +
		"Disk unallocated:\t               200\n" +
		"Used:\t\t\t               100\n" +
		"Free (Estimated):\t               400\t(Max: 500, min: 400)\n" +
		"Data to disk ratio:\t              50 %\n"

	diskUsageLinear = "System,DUP: Size:8, Used:1\n" +
		"   /dev/sda\t        16\n" +
		"\n" +
		"Data,Single: Size:100, Used:60\n" +
		"   /dev/sda\t       100\n" +
		"\n" +
		"Metadata,RAID1: Size:50, Used:5\n" +
		"   /dev/sda\t        50\n" +
		"   /dev/sdb\t        50\n" +
		"\n" +
		"Unallocated:\n" +
		"   /dev/sda\t       834\n" +
		"   /dev/sdb\t       950\n"

	diskUsageTabular = "         System Data   Metadata            \n" +
		"         DUP    Single RAID1    Unallocated\n" +
		"/dev/sda     16    100       50         834\n" +
		"/dev/sdb      -      -       50         950\n" +
		"======== ====== ====== ======== ===========\n" +
		"Total         8    100       50        1784\n" +
		"Used          1     60        5            \n"

	deviceUsage = "/dev/sda, ID: 1\n" +
		"   Device size:                  1000\n" +
		"   System,DUP:                     16\n" +
		"   Data,Single:                   100\n" +
		"   Metadata,RAID1:                 50\n" +
		"   Unallocated:                   834\n" +
		"\n" +
		"/dev/sdb, ID: 2\n" +
		"   Device size:                  1000\n" +
		"   Metadata,RAID1:                 50\n" +
		"   Unallocated:                   950\n" +
		"\n"
)

// sampleDetail is a two device filesystem with system, data and metadata
// allocations plus the global reserve.
func sampleDetail() Detail {
	return Detail{
		Buckets: []models.SpaceBucket{
			{Flags: profile.System | profile.DUP, TotalBytes: 8, UsedBytes: 1},
			{Flags: profile.Data, TotalBytes: 100, UsedBytes: 60},
			{Flags: profile.Metadata | profile.RAID1, TotalBytes: 50, UsedBytes: 5},
			{Flags: profile.GlobalReserve, TotalBytes: 4},
		},
		Records: []models.ChunkRecord{
			{Type: profile.System | profile.DUP, DevID: 1, Size: 16},
			{Type: profile.Data, DevID: 1, Size: 100},
			{Type: profile.Metadata | profile.RAID1, DevID: 1, Size: 50},
			{Type: profile.Metadata | profile.RAID1, DevID: 2, Size: 50},
		},
		Devices: []models.DeviceInfo{
			{DevID: 1, Path: "/dev/sda", Size: 1000},
			{DevID: 2, Path: "/dev/sdb", Size: 1000},
		},
	}
}

// WritersTestSuite tests the report writers
type WritersTestSuite struct {
	suite.Suite
	buf bytes.Buffer
}

// SetupTest runs before each test
func (s *WritersTestSuite) SetupTest() {
	s.buf.Reset()
}

// TestUnits tests human and raw size formatting
func (s *WritersTestSuite) TestUnits() {
	s.Equal("1610612736", Bytes.Format(1610612736))
	s.Equal("1.5GiB", Human.Format(1610612736))
	s.Equal("512MiB", Human.Format(512<<20))
	s.Equal("0B", Human.Format(0))
	s.Equal(Human, UnitsFor(true))
	s.Equal(Bytes, UnitsFor(false))
}

// TestDiskFree tests the aggregate summary
func (s *WritersTestSuite) TestDiskFree() {
	u, err := space.Calculate(1000, []models.SpaceBucket{
		{Flags: profile.Data | profile.RAID1, TotalBytes: 400, UsedBytes: 100},
	})
	s.Require().NoError(err)

	s.Require().NoError(WriteDiskFree(&s.buf, u, Bytes))
	s.Equal(diskFreeBytes, s.buf.String())
}

// TestDiskFreeHuman tests the narrower value column of human units
func (s *WritersTestSuite) TestDiskFreeHuman() {
	u, err := space.Calculate(10<<30, []models.SpaceBucket{
		{Flags: profile.Data, TotalBytes: 1 << 30, UsedBytes: 512 << 20},
	})
	s.Require().NoError(err)

	s.Require().NoError(WriteDiskFree(&s.buf, u, Human))
	s.Contains(s.buf.String(), "Disk size:\t\t    10GiB\n")
	s.Contains(s.buf.String(), "Disk allocated:\t\t   1.0GiB\n")
	s.Contains(s.buf.String(), "Used:\t\t\t   512MiB\n")
}

// TestDiskUsageLinear tests the listing grouped by allocation class
func (s *WritersTestSuite) TestDiskUsageLinear() {
	s.Require().NoError(WriteDiskUsageLinear(&s.buf, sampleDetail(), Bytes))
	s.Equal(diskUsageLinear, s.buf.String())
}

// TestDiskUsageTabular tests the device by class grid
func (s *WritersTestSuite) TestDiskUsageTabular() {
	s.Require().NoError(WriteDiskUsageTabular(&s.buf, sampleDetail(), Bytes))
	s.Equal(diskUsageTabular, s.buf.String())
}

// TestDeviceUsage tests the per device listing
func (s *WritersTestSuite) TestDeviceUsage() {
	s.Require().NoError(WriteDeviceUsage(&s.buf, sampleDetail(), Bytes))
	s.Equal(deviceUsage, s.buf.String())
}

// TestOverallocatedDevice tests that unallocated space never underflows
func (s *WritersTestSuite) TestOverallocatedDevice() {
	d := sampleDetail()
	d.Devices[1].Size = 10

	s.Require().NoError(WriteDeviceUsage(&s.buf, d, Bytes))
	s.Contains(s.buf.String(), "   Unallocated:                     0\n")
}

// TestWritersSuite runs the writers test suite
func TestWritersSuite(t *testing.T) {
	suite.Run(t, new(WritersTestSuite))
}
