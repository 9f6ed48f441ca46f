//go:build linux

package btrfs

import (
	"errors"
	"os"
	"unsafe"

	"github.com/ccoveille/go-safecast/v2"
	"golang.org/x/sys/unix"

	"btrfsusage/pkg/log"
	"btrfsusage/pkg/models"
	"btrfsusage/pkg/store"
)

const (
	iocWrite     = 1
	iocRead      = 2
	iocDirShift  = 30
	iocSizeShift = 16
	iocTypeShift = 8

	btrfsIoctlMagic = 0x94

	ioctlTreeSearch = (iocRead|iocWrite)<<iocDirShift | searchArgsSize<<iocSizeShift | btrfsIoctlMagic<<iocTypeShift | 17
	ioctlSpaceInfo  = (iocRead|iocWrite)<<iocDirShift | spaceArgsHeaderSize<<iocSizeShift | btrfsIoctlMagic<<iocTypeShift | 20
	ioctlDevInfo    = (iocRead|iocWrite)<<iocDirShift | devInfoArgsSize<<iocSizeShift | btrfsIoctlMagic<<iocTypeShift | 30
	ioctlFSInfo     = iocRead<<iocDirShift | fsInfoArgsSize<<iocSizeShift | btrfsIoctlMagic<<iocTypeShift | 31
)

var errNotBtrfs = errors.New("not a btrfs filesystem")

// Store implements the store.Store interface on an open btrfs mount.
type Store struct {
	path string
	fd   int
}

var _ store.Store = (*Store)(nil)

// Open opens the filesystem containing path, which may be a file or a directory.
func Open(path string) (*Store, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, store.IOError{Path: path, Op: "access", Err: err}
	}

	var stat unix.Statfs_t
	if err := unix.Fstatfs(fd, &stat); err != nil {
		_ = unix.Close(fd)
		return nil, store.IOError{Path: path, Op: "access", Err: err}
	}
	if uint64(stat.Type) != unix.BTRFS_SUPER_MAGIC { //nolint:gosec // magic numbers are positive
		_ = unix.Close(fd)
		return nil, store.IOError{Path: path, Op: "access", Err: errNotBtrfs}
	}

	log.Debug().Str("path", path).Int("fd", fd).Msg("Opened filesystem")
	return &Store{path: path, fd: fd}, nil
}

// Path returns the path the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Close releases the filesystem handle.
func (s *Store) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

// SpaceInfo issues BTRFS_IOC_SPACE_INFO with room for slots entries.
func (s *Store) SpaceInfo(slots uint64) ([]models.SpaceBucket, uint64, error) {
	buf := encodeSpaceArgs(slots)
	if err := ioctl(s.fd, ioctlSpaceInfo, unsafe.Pointer(&buf[0])); err != nil {
		return nil, 0, store.IOError{Path: s.path, Op: "get space info", Err: err}
	}

	buckets, total, err := decodeSpaceArgs(buf)
	if err != nil {
		return nil, 0, store.IOError{Path: s.path, Op: "get space info", Err: err}
	}
	return buckets, total, nil
}

// SearchMetadata issues BTRFS_IOC_TREE_SEARCH until maxItems items are
// collected or the kernel has nothing left in r. A single call is bounded by
// its result buffer, so one batch may take several calls.
func (s *Store) SearchMetadata(treeID uint64, r store.KeyRange, maxItems int) ([]store.SearchItem, error) {
	var items []store.SearchItem
	var args [searchArgsSize]byte

	cursor := r.Min
	for len(items) < maxItems {
		want, err := safecast.Convert[uint32](maxItems - len(items))
		if err != nil {
			return nil, store.IOError{Path: s.path, Op: "search tree", Err: err}
		}
		encodeSearchKey(args[:], treeID, cursor, r.Max, want)

		if err := ioctl(s.fd, ioctlTreeSearch, unsafe.Pointer(&args[0])); err != nil {
			return nil, store.IOError{Path: s.path, Op: "search tree", Err: err}
		}

		batch, err := decodeSearchResult(args[:])
		if err != nil {
			return nil, store.IOError{Path: s.path, Op: "search tree", Err: err}
		}
		if len(batch) == 0 {
			break
		}
		items = append(items, batch...)

		next, ok := batch[len(batch)-1].Key.Next()
		if !ok || r.Max.Compare(next) < 0 {
			break
		}
		cursor = next
	}

	log.Debug().Str("path", s.path).Uint64("tree", treeID).Int("items", len(items)).
		Str("from", r.Min.String()).Msg("Tree search batch")
	return items, nil
}

// FilesystemInfo issues BTRFS_IOC_FS_INFO.
func (s *Store) FilesystemInfo() (*models.FilesystemInfo, error) {
	var buf [fsInfoArgsSize]byte
	if err := ioctl(s.fd, ioctlFSInfo, unsafe.Pointer(&buf[0])); err != nil {
		return nil, store.IOError{Path: s.path, Op: "get filesystem info", Err: err}
	}

	info, err := decodeFSInfo(buf[:])
	if err != nil {
		return nil, store.IOError{Path: s.path, Op: "get filesystem info", Err: err}
	}
	return info, nil
}

// DeviceInfo issues BTRFS_IOC_DEV_INFO for devid.
func (s *Store) DeviceInfo(devid uint64) (*models.DeviceInfo, error) {
	buf := encodeDevInfo(devid)
	if err := ioctl(s.fd, ioctlDevInfo, unsafe.Pointer(&buf[0])); err != nil {
		if errors.Is(err, unix.ENODEV) {
			return nil, store.NotFoundError{DevID: devid}
		}
		return nil, store.IOError{Path: s.path, Op: "get device info", Err: err}
	}

	info, err := decodeDevInfo(buf)
	if err != nil {
		return nil, store.IOError{Path: s.path, Op: "get device info", Err: err}
	}
	return info, nil
}

// DeviceRawCapacity returns the size of the block device or image file at path.
func (s *Store) DeviceRawCapacity(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, store.IOError{Path: path, Op: "open device", Err: err}
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return 0, store.IOError{Path: path, Op: "stat device", Err: err}
	}
	if fileInfo.Mode().IsRegular() {
		size, err := safecast.Convert[uint64](fileInfo.Size())
		if err != nil {
			return 0, store.IOError{Path: path, Op: "stat device", Err: err}
		}
		return size, nil
	}

	var size uint64
	if err := ioctl(int(file.Fd()), unix.BLKGETSIZE64, unsafe.Pointer(&size)); err != nil { //nolint:gosec // fd fits in int
		return 0, store.IOError{Path: path, Op: "get device size", Err: err}
	}
	return size, nil
}

// TotalCapacity returns the filesystem size reported by statfs, 0 on failure.
func (s *Store) TotalCapacity() uint64 {
	var stat unix.Statfs_t
	if err := unix.Fstatfs(s.fd, &stat); err != nil {
		log.Debug().Str("path", s.path).Err(err).Msg("Failed to statfs filesystem")
		return 0
	}

	bsize, err := safecast.Convert[uint64](stat.Bsize)
	if err != nil {
		log.Debug().Str("path", s.path).Err(err).Msg("Invalid block size")
		return 0
	}
	return stat.Blocks * bsize
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
