package ext2fs

import (
	"bytes"
	"encoding/binary"
)

// Superblock mirrors the on-disk ext2 superblock fields this implementation
// reads and maintains, in classic ext2 order from s_inodes_count through
// s_block_group_nr. The struct is packed to exactly 92 bytes; fields after
// s_block_group_nr are not represented and the remainder of the 1024-byte
// block is left zeroed padding.
type Superblock struct {
	InodesCount     uint32
	BlocksCount     uint32
	ReservedBlocks  uint32
	FreeBlocksCount uint32
	FreeInodesCount uint32
	FirstDataBlock  uint32
	LogBlockSize    uint32
	LogFragSize     uint32
	BlocksPerGroup  uint32
	FragsPerGroup   uint32
	InodesPerGroup  uint32
	Mtime           uint32
	Wtime           uint32
	MountCount      uint16
	MaxMountCount   uint16
	Magic           uint16
	State           uint16
	Errors          uint16
	MinorRevLevel   uint16
	LastCheck       uint32
	CheckInterval   uint32
	CreatorOS       uint32
	RevLevel        uint32
	DefResuid       uint16
	DefResgid       uint16
	FirstIno        uint32
	InodeSize       uint16
	BlockGroupNr    uint16
}

// Ext2Magic is the fixed s_magic value identifying an ext2 superblock.
const Ext2Magic = 0xEF53

// ReadSuperblock decodes the superblock from block SuperblockBlock of img.
func ReadSuperblock(img []byte) (*Superblock, error) {
	buf := img[offset(SuperblockBlock) : offset(SuperblockBlock)+BlockSize]
	sb := &Superblock{}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, sb); err != nil {
		return nil, err
	}
	return sb, nil
}

// WriteSuperblock encodes sb into block SuperblockBlock of img.
func WriteSuperblock(img []byte, sb *Superblock) error {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, sb); err != nil {
		return err
	}
	dst := img[offset(SuperblockBlock) : offset(SuperblockBlock)+BlockSize]
	clear(dst)
	copy(dst, b.Bytes())
	return nil
}
