// Package ext2image maps an ext2 disk image file into memory.
package ext2image

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Size is the fixed size of every image this package maps: a single-group
// ext2 image with 128 blocks of 1024 bytes each.
const Size = 128 * 1024

// Image is a host file mapped as a mutable contiguous byte buffer. Writes to
// Bytes() are visible to any other mapping of the same file and are written
// back by the kernel; no explicit sync call is part of this API.
type Image struct {
	file *os.File
	data []byte
}

// Open maps path read-write. The file must already exist and be exactly
// Size bytes long.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	if info.Size() != Size {
		f.Close()
		return nil, fmt.Errorf("cannot open %s: expected %d bytes, got %d", path, Size, info.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot map %s: %w", path, err)
	}

	return &Image{file: f, data: data}, nil
}

// Bytes returns the mapped buffer. The slice is valid until Close.
func (img *Image) Bytes() []byte {
	return img.data
}

// Close unmaps the image and closes the underlying file descriptor.
func (img *Image) Close() error {
	if img.data != nil {
		if err := unix.Munmap(img.data); err != nil {
			img.file.Close()
			return fmt.Errorf("cannot unmap: %w", err)
		}
		img.data = nil
	}
	return img.file.Close()
}
