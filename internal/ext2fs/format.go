package ext2fs

// Format lays out a blank, internally-consistent image in img, which must
// already be exactly ext2image.Size bytes (the caller owns allocating and
// mapping the buffer). It writes the superblock and group descriptor,
// zeroes and pre-marks the bitmaps for the reserved metadata blocks and
// reserved inodes, and creates the root directory with "." and ".." both
// pointing at itself.
//
// This is ambient test-fixture tooling, not one of the specified CLI tools
// — it exists so tests can build images without shelling out to mkfs.
// Grounded on the bootstrap-a-blank-store-on-first-use shape of
// akfs/internal/storage/storage.go's create(), adapted to ext2's layout.
func Format(img []byte) error {
	clear(img)

	sb := &Superblock{
		InodesCount:     InodesCount,
		BlocksCount:     BlocksCount,
		ReservedBlocks:  0,
		FreeBlocksCount: BlocksCount - FirstDataBlock,
		FreeInodesCount: InodesCount - (FirstIno - 1),
		FirstDataBlock:  1,
		LogBlockSize:    0,
		LogFragSize:     0,
		BlocksPerGroup:  BlocksCount,
		FragsPerGroup:   BlocksCount,
		InodesPerGroup:  InodesCount,
		MountCount:      0,
		MaxMountCount:   0xFFFF,
		Magic:           Ext2Magic,
		State:           1,
		Errors:          1,
		RevLevel:        1,
		FirstIno:        FirstIno,
		InodeSize:       InodeSize,
		BlockGroupNr:    0,
	}

	gd := &GroupDescriptor{
		BlockBitmap:     BlockBitmapBlock,
		InodeBitmap:     InodeBitmapBlock,
		InodeTable:      InodeTableBlock,
		FreeBlocksCount: uint16(sb.FreeBlocksCount),
		FreeInodesCount: uint16(sb.FreeInodesCount),
		UsedDirsCount:   1,
	}

	blockBm := BlockBitmap(img)
	for i := 0; i < FirstDataBlock; i++ {
		blockBm.Set(i)
	}

	inodeBm := InodeBitmap(img)
	for i := 0; i < FirstIno-1; i++ {
		inodeBm.Set(i)
	}

	rootBlock, err := AllocBlock(img, sb, gd)
	if err != nil {
		return err
	}
	formatNewDirBlock(img, rootBlock, RootIno, RootIno)

	root := &Inode{
		Mode:       ModeDir | 0755,
		LinksCount: 2,
		Size:       BlockSize,
		Blocks:     1,
	}
	root.Block[0] = rootBlock
	if err := WriteInode(img, RootIno, root); err != nil {
		return err
	}

	if err := WriteSuperblock(img, sb); err != nil {
		return err
	}
	return WriteGroupDescriptor(img, gd)
}
