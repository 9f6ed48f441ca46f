// Package loop creates btrfs filesystems on loop mounted image files. It is
// used to exercise the ioctl store against a real filesystem.
package loop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"btrfsusage/pkg/log"
)

const (
	dirPerm        = 0750
	imagePerm      = 0600
	commandTimeout = 60 * time.Second // Timeout for exec commands

	// MinImageSize is the smallest image mkfs.btrfs formats with default options.
	MinImageSize = 128 << 20
)

// Image is a sparse image file formatted with btrfs.
type Image struct {
	Path       string
	MountPoint string
	Size       int64
}

// Available reports whether images can be formatted and mounted here.
func Available() bool {
	if os.Geteuid() != 0 {
		return false
	}
	for _, tool := range []string{"mkfs.btrfs", "mount", "umount", "mountpoint"} {
		if _, err := exec.LookPath(tool); err != nil {
			log.Debug().Str("tool", tool).Msg("Loop image tool not found")
			return false
		}
	}
	return true
}

// Create makes a sparse image of size bytes named name under dir and formats
// it with btrfs. mkfsArgs are passed to mkfs.btrfs, e.g. "-m", "dup".
func Create(dir, name string, size int64, mkfsArgs ...string) (*Image, error) {
	if size < MinImageSize {
		return nil, fmt.Errorf("image size %d is below the minimum of %d", size, MinImageSize)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		log.Error().Err(err).Str("image_dir", dir).Msg("Failed to create image directory")
		return nil, err
	}

	img := &Image{
		Path:       filepath.Join(dir, name+".img"),
		MountPoint: filepath.Join(dir, name),
		Size:       size,
	}

	f, err := os.OpenFile(img.Path, os.O_RDWR|os.O_CREATE|os.O_EXCL, imagePerm)
	if err != nil {
		log.Error().Err(err).Str("image", img.Path).Msg("Failed to create image file")
		return nil, err
	}
	err = f.Truncate(size)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Error().Err(err).Str("image", img.Path).Msg("Failed to size image file")
		_ = img.removeFile()
		return nil, err
	}

	args := append([]string{"-q", "-f"}, mkfsArgs...)
	args = append(args, img.Path)
	if err := run("mkfs.btrfs", args...); err != nil {
		_ = img.removeFile()
		return nil, err
	}

	log.Info().Str("image", img.Path).Int64("size", size).Msg("Image created and formatted")
	return img, nil
}

// Mount mounts the image on its mount point.
func (img *Image) Mount() error {
	if err := os.MkdirAll(img.MountPoint, dirPerm); err != nil {
		log.Error().Err(err).Str("mount_point", img.MountPoint).Msg("Failed to create mount point")
		return err
	}

	if img.IsMounted() {
		log.Debug().Str("mount_point", img.MountPoint).Msg("Image already mounted")
		return nil
	}

	if err := run("mount", "-o", "loop", img.Path, img.MountPoint); err != nil {
		return err
	}

	log.Info().Str("image", img.Path).Str("mount_point", img.MountPoint).Msg("Image mounted")
	return nil
}

// Unmount unmounts the image if it is mounted.
func (img *Image) Unmount() error {
	if !img.IsMounted() {
		log.Debug().Str("mount_point", img.MountPoint).Msg("Image not mounted")
		return nil
	}

	if err := run("umount", img.MountPoint); err != nil {
		return err
	}

	log.Info().Str("mount_point", img.MountPoint).Msg("Image unmounted")
	return nil
}

// IsMounted checks if the mount point is currently mounted.
func (img *Image) IsMounted() bool {
	return run("mountpoint", "-q", img.MountPoint) == nil
}

// Remove unmounts the image and deletes it with its mount point.
func (img *Image) Remove() error {
	if err := img.Unmount(); err != nil {
		return err
	}
	if err := os.Remove(img.MountPoint); err != nil && !os.IsNotExist(err) {
		return err
	}
	return img.removeFile()
}

func (img *Image) removeFile() error {
	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("image", img.Path).Msg("Failed to remove image file")
		return err
	}
	return nil
}

// run executes an external command, including its output in the error.
func run(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	//nolint:gosec // commands and arguments come from this package
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		log.Debug().Err(err).Str("command", name).Strs("args", args).Str("output", msg).Msg("Command failed")
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return nil
}
