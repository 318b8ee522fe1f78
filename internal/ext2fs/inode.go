package ext2fs

import (
	"bytes"
	"encoding/binary"
)

// Inode is the fixed 128-byte on-disk inode record.
type Inode struct {
	Mode       uint16
	UID        uint16
	Size       uint32
	Atime      uint32
	Ctime      uint32
	Mtime      uint32
	Dtime      uint32
	GID        uint16
	LinksCount uint16
	Blocks     uint32
	Flags      uint32
	OSD1       uint32
	Block      [NumBlockPointers]uint32
	Generation uint32
	FileACL    uint32
	DirACL     uint32
	FAddr      uint32
	OSD2       [12]byte
}

// inodeOffset returns the byte offset of inode number ino (1-based) within
// the image. Callers must have already validated ino is in range.
func inodeOffset(ino uint32) int64 {
	return offset(InodeTableBlock) + int64(ino-1)*InodeSize
}

// ReadInode decodes inode number ino from the inode table.
func ReadInode(img []byte, ino uint32) (*Inode, error) {
	off := inodeOffset(ino)
	buf := img[off : off+InodeSize]
	in := &Inode{}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, in); err != nil {
		return nil, err
	}
	return in, nil
}

// WriteInode encodes in into inode number ino's slot in the inode table.
func WriteInode(img []byte, ino uint32, in *Inode) error {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, in); err != nil {
		return err
	}
	off := inodeOffset(ino)
	copy(img[off:off+InodeSize], b.Bytes())
	return nil
}

// IsDir reports whether in is a directory.
func (in *Inode) IsDir() bool { return in.Mode&ModeFmt == ModeDir }

// IsRegular reports whether in is a regular file.
func (in *Inode) IsRegular() bool { return in.Mode&ModeFmt == ModeReg }

// IsSymlink reports whether in is a symbolic link.
func (in *Inode) IsSymlink() bool { return in.Mode&ModeFmt == ModeLnk }

// Deleted reports whether in carries a non-zero deletion time, i.e. it is a
// free slot that still holds tombstone data.
func (in *Inode) Deleted() bool { return in.Dtime != 0 }
