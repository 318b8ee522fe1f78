package ext2fs

// AllocInode finds the lowest-numbered free inode at index >= FirstIno-1,
// marks it allocated in the inode bitmap, and decrements the free-inode
// counters in the superblock and group descriptor. Grounded on
// original_source/utils.c:new_inode, which scans the inode bitmap starting
// from the first non-reserved inode rather than from zero.
func AllocInode(img []byte, sb *Superblock, gd *GroupDescriptor) (uint32, error) {
	bm := InodeBitmap(img)
	for i := FirstIno - 1; i < InodesCount; i++ {
		if !bm.Test(i) {
			bm.Set(i)
			sb.FreeInodesCount--
			gd.FreeInodesCount--
			return uint32(i + 1), nil
		}
	}
	return 0, ErrNoSpaceInode
}

// FreeInode clears ino's bit in the inode bitmap and restores the free
// counters. It does not touch the inode record itself.
func FreeInode(img []byte, sb *Superblock, gd *GroupDescriptor, ino uint32) {
	bm := InodeBitmap(img)
	i := int(ino) - 1
	if bm.Test(i) {
		bm.Clear(i)
		sb.FreeInodesCount++
		gd.FreeInodesCount++
	}
}

// AllocBlock finds the lowest-numbered free data block at index >=
// FirstDataBlock, marks it allocated, and decrements the free-block
// counters. Grounded on original_source/utils.c:new_block.
func AllocBlock(img []byte, sb *Superblock, gd *GroupDescriptor) (uint32, error) {
	bm := BlockBitmap(img)
	for i := FirstDataBlock; i < BlocksCount; i++ {
		if !bm.Test(i) {
			bm.Set(i)
			sb.FreeBlocksCount--
			gd.FreeBlocksCount--
			return uint32(i), nil
		}
	}
	return 0, ErrNoSpaceBlock
}

// FreeBlock clears block b's bit in the block bitmap and restores the free
// counters. b must be the actual block number being released — the original
// reference implementation's ext2_rm.c:free_block mistakenly clears the bit
// at the target's *inode number* instead, a bug this implementation fixes.
func FreeBlock(img []byte, sb *Superblock, gd *GroupDescriptor, b uint32) {
	bm := BlockBitmap(img)
	i := int(b)
	if bm.Test(i) {
		bm.Clear(i)
		sb.FreeBlocksCount++
		gd.FreeBlocksCount++
	}
}

// initInode zero-initializes inode number ino's on-disk record and writes
// the given mode/links, clearing any tombstone data (dtime, stale block
// pointers) left by a previous occupant. Grounded on
// original_source/utils.c:init_inode, whose inode-table index is off by one
// (it writes at index N instead of N-1); this implementation indexes
// correctly via inodeOffset's N-1 convention.
func initInode(img []byte, ino uint32, mode uint16, links uint16) *Inode {
	in := &Inode{Mode: mode, LinksCount: links}
	WriteInode(img, ino, in)
	return in
}
