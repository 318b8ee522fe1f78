package ext2fs

import (
	"bytes"
	"encoding/binary"
)

// GroupDescriptor is the single block-group descriptor this single-group
// image carries, packed to exactly 32 bytes.
type GroupDescriptor struct {
	BlockBitmap     uint32
	InodeBitmap     uint32
	InodeTable      uint32
	FreeBlocksCount uint16
	FreeInodesCount uint16
	UsedDirsCount   uint16
	Pad             uint16
	Reserved        [3]uint32
}

// ReadGroupDescriptor decodes the group descriptor from block GroupDescBlock.
func ReadGroupDescriptor(img []byte) (*GroupDescriptor, error) {
	buf := img[offset(GroupDescBlock) : offset(GroupDescBlock)+BlockSize]
	gd := &GroupDescriptor{}
	if err := binary.Read(bytes.NewReader(buf[:32]), binary.LittleEndian, gd); err != nil {
		return nil, err
	}
	return gd, nil
}

// WriteGroupDescriptor encodes gd into block GroupDescBlock.
func WriteGroupDescriptor(img []byte, gd *GroupDescriptor) error {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, gd); err != nil {
		return err
	}
	dst := img[offset(GroupDescBlock) : offset(GroupDescBlock)+BlockSize]
	clear(dst)
	copy(dst, b.Bytes())
	return nil
}
