package report

import (
	"bytes"
	"syscall"
	"testing"

	"github.com/stretchr/testify/suite"

	"btrfsusage/pkg/chunk"
	"btrfsusage/pkg/models"
	"btrfsusage/pkg/profile"
	"btrfsusage/pkg/store"
	"btrfsusage/pkg/store/mockstore"
)

// ReportTestSuite tests building reports from a store
type ReportTestSuite struct {
	suite.Suite
	mockStore *mockstore.Store
	buf       bytes.Buffer
}

// SetupTest runs before each test
func (s *ReportTestSuite) SetupTest() {
	s.buf.Reset()
	s.mockStore = new(mockstore.Store)
	s.mockStore.On("Path").Return("/mnt/data").Maybe()
}

// TearDownTest runs after each test
func (s *ReportTestSuite) TearDownTest() {
	s.mockStore.AssertExpectations(s.T())
}

func (s *ReportTestSuite) expectSpace(buckets ...models.SpaceBucket) {
	n := uint64(len(buckets))
	s.mockStore.On("SpaceInfo", uint64(0)).Return(nil, n, nil).Once()
	s.mockStore.On("SpaceInfo", n).Return(buckets, n, nil).Once()
}

func (s *ReportTestSuite) expectDevices(devices ...models.DeviceInfo) {
	var maxID uint64
	for _, d := range devices {
		maxID = max(maxID, d.DevID)
	}
	s.mockStore.On("FilesystemInfo").
		Return(&models.FilesystemInfo{NumDevices: uint64(len(devices)), MaxID: maxID}, nil).Once()

	present := make(map[uint64]models.DeviceInfo)
	for _, d := range devices {
		present[d.DevID] = d
	}
	for devid := uint64(0); devid <= maxID; devid++ {
		d, ok := present[devid]
		if !ok {
			s.mockStore.On("DeviceInfo", devid).Return(nil, store.NotFoundError{DevID: devid}).Once()
			continue
		}
		size := d.Size
		d.Size = 0
		s.mockStore.On("DeviceInfo", devid).Return(&d, nil).Once()
		s.mockStore.On("DeviceRawCapacity", d.Path).Return(size, nil).Once()
	}
}

func chunkItem(offset uint64, d chunk.Descriptor) store.SearchItem {
	return store.SearchItem{
		Key:  store.Key{ObjectID: 256, Type: 228, Offset: offset},
		Data: chunk.Encode(d),
	}
}

// TestDiskFree tests the summary using the device sizes
func (s *ReportTestSuite) TestDiskFree() {
	s.expectSpace(models.SpaceBucket{Flags: profile.Data | profile.RAID1, TotalBytes: 400, UsedBytes: 100})
	s.expectDevices(models.DeviceInfo{DevID: 1, Path: "/dev/sda", Size: 1000})

	s.Require().NoError(DiskFree(s.mockStore, &s.buf, Options{Units: Bytes}))
	s.Equal(diskFreeBytes, s.buf.String())
}

// TestDiskFreeCapacityFallback tests falling back to the filesystem capacity
func (s *ReportTestSuite) TestDiskFreeCapacityFallback() {
	s.expectSpace(models.SpaceBucket{Flags: profile.Data | profile.RAID1, TotalBytes: 400, UsedBytes: 100})
	s.mockStore.On("FilesystemInfo").
		Return(nil, store.IOError{Path: "/mnt/data", Op: "get filesystem info", Err: syscall.EPERM}).Once()
	s.mockStore.On("TotalCapacity").Return(uint64(1000)).Once()

	s.Require().NoError(DiskFree(s.mockStore, &s.buf, Options{Units: Bytes}))
	s.Equal(diskFreeBytes, s.buf.String())
}

// TestDiskFreeNoSize tests a filesystem whose size cannot be determined
func (s *ReportTestSuite) TestDiskFreeNoSize() {
	s.expectSpace(models.SpaceBucket{Flags: profile.Data, TotalBytes: 400, UsedBytes: 100})
	s.mockStore.On("FilesystemInfo").
		Return(nil, store.IOError{Path: "/mnt/data", Op: "get filesystem info", Err: syscall.EPERM}).Once()
	s.mockStore.On("TotalCapacity").Return(uint64(0)).Once()

	err := DiskFree(s.mockStore, &s.buf, Options{Units: Bytes})
	s.IsType(store.PreconditionError{}, err)
	s.Empty(s.buf.String())
}

// TestDiskFreeNoAllocations tests the summary of a filesystem without chunks
func (s *ReportTestSuite) TestDiskFreeNoAllocations() {
	s.mockStore.On("SpaceInfo", uint64(0)).Return(nil, uint64(0), nil).Once()

	err := DiskFree(s.mockStore, &s.buf, Options{Units: Bytes})
	s.IsType(store.NoAllocationsError{}, err)
	s.Empty(s.buf.String())
}

func (s *ReportTestSuite) expectSample() {
	d := sampleDetail()
	s.expectSpace(d.Buckets...)
	s.expectDevices(d.Devices...)

	tree := &mockstore.Tree{TreeID: store.ChunkTreeID}
	tree.Add(
		chunkItem(0, chunk.Descriptor{Type: profile.System | profile.DUP, Length: 8, NumStripes: 2, Devices: []uint64{1, 1}}),
		chunkItem(8, chunk.Descriptor{Type: profile.Data, Length: 100, NumStripes: 1, Devices: []uint64{1}}),
		chunkItem(108, chunk.Descriptor{Type: profile.Metadata | profile.RAID1, Length: 50, NumStripes: 2, Devices: []uint64{1, 2}}),
	)
	s.mockStore.Tree = tree
}

// TestDiskUsageLinear tests the detailed listing built from the chunk tree
func (s *ReportTestSuite) TestDiskUsageLinear() {
	s.expectSample()

	s.Require().NoError(DiskUsage(s.mockStore, &s.buf, Options{Units: Bytes, BatchSize: 2}))
	s.Equal(diskUsageLinear, s.buf.String())
}

// TestDiskUsageTabular tests the detailed grid built from the chunk tree
func (s *ReportTestSuite) TestDiskUsageTabular() {
	s.expectSample()

	s.Require().NoError(DiskUsage(s.mockStore, &s.buf, Options{Units: Bytes, Tabular: true}))
	s.Equal(diskUsageTabular, s.buf.String())
}

// TestDeviceUsage tests the per device listing built from the chunk tree
func (s *ReportTestSuite) TestDeviceUsage() {
	s.expectSample()

	s.Require().NoError(DeviceUsage(s.mockStore, &s.buf, Options{Units: Bytes}))
	s.Equal(deviceUsage, s.buf.String())
}

// TestDiskUsageScanError tests that a failed scan prints nothing
func (s *ReportTestSuite) TestDiskUsageScanError() {
	d := sampleDetail()
	s.expectSpace(d.Buckets...)
	s.mockStore.Tree = &mockstore.Tree{
		TreeID: store.ChunkTreeID,
		Err:    store.IOError{Path: "/mnt/data", Op: "search chunk tree", Err: syscall.EPERM},
		FailAt: 1,
	}

	err := DiskUsage(s.mockStore, &s.buf, Options{Units: Bytes})
	s.ErrorIs(err, syscall.EPERM)
	s.Empty(s.buf.String())
}

// TestReportSuite runs the report test suite
func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}
