package ext2fs

import "fmt"

// CheckResult reports what the consistency checker found and repaired.
type CheckResult struct {
	FixedCount int
	Messages   []string
}

func (r *CheckResult) fix(msg string) {
	r.FixedCount++
	r.Messages = append(r.Messages, msg)
}

// Check runs the five-rule consistency scan and repairs any inconsistency it
// finds, trusting the bitmaps over the stale counters they mirror and the
// inode's own i_mode over a stale directory-entry file_type. Idempotent: a
// second run against an already-repaired image reports zero fixes. Grounded
// on original_source/ext2_checker.c in full.
func Check(img []byte) (*CheckResult, error) {
	sb, err := ReadSuperblock(img)
	if err != nil {
		return nil, err
	}
	gd, err := ReadGroupDescriptor(img)
	if err != nil {
		return nil, err
	}
	res := &CheckResult{}

	checkCounters(img, sb, gd, res)

	root, err := ReadInode(img, RootIno)
	if err != nil {
		return nil, err
	}
	checkDir(img, sb, gd, root, res, map[uint32]bool{})

	if err := WriteSuperblock(img, sb); err != nil {
		return nil, err
	}
	if err := WriteGroupDescriptor(img, gd); err != nil {
		return nil, err
	}
	return res, nil
}

// absDelta32 returns the absolute difference between a and b, subtracting
// the smaller from the larger so the unsigned result cannot wrap.
func absDelta32(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// checkCounters implements rule (a): superblock/group-descriptor free
// inode/block counters must match what the bitmaps actually show, and the
// fix message reports the absolute magnitude of the correction.
func checkCounters(img []byte, sb *Superblock, gd *GroupDescriptor, res *CheckResult) {
	inodeBm := InodeBitmap(img)
	actualFreeInodes := uint32(InodesCount) - uint32(inodeBm.Count(InodesCount))
	if sb.FreeInodesCount != actualFreeInodes {
		res.fix(fmt.Sprintf("superblock's free inodes counter was off by %d", absDelta32(sb.FreeInodesCount, actualFreeInodes)))
		sb.FreeInodesCount = actualFreeInodes
	}
	if gd.FreeInodesCount != uint16(actualFreeInodes) {
		res.fix(fmt.Sprintf("block group's free inodes counter was off by %d", absDelta32(uint32(gd.FreeInodesCount), actualFreeInodes)))
		gd.FreeInodesCount = uint16(actualFreeInodes)
	}

	blockBm := BlockBitmap(img)
	actualFreeBlocks := uint32(BlocksCount) - uint32(blockBm.Count(BlocksCount))
	if sb.FreeBlocksCount != actualFreeBlocks {
		res.fix(fmt.Sprintf("superblock's free blocks counter was off by %d", absDelta32(sb.FreeBlocksCount, actualFreeBlocks)))
		sb.FreeBlocksCount = actualFreeBlocks
	}
	if gd.FreeBlocksCount != uint16(actualFreeBlocks) {
		res.fix(fmt.Sprintf("block group's free blocks counter was off by %d", absDelta32(uint32(gd.FreeBlocksCount), actualFreeBlocks)))
		gd.FreeBlocksCount = uint16(actualFreeBlocks)
	}
}

// checkDir implements rules (b)-(e) across every live entry reachable from
// dir, recursing into subdirectories (skipping "." and ".."). visited guards
// against an already-corrupt tree looping forever on a cyclic entry.
func checkDir(img []byte, sb *Superblock, gd *GroupDescriptor, dir *Inode, res *CheckResult, visited map[uint32]bool) {
	for _, b := range dirBlocks(dir) {
		block := blockBytes(img, b)
		for _, e := range scanBlock(block) {
			if e.Ino == 0 {
				continue
			}
			in, err := ReadInode(img, e.Ino)
			if err != nil {
				continue
			}
			checkMode(block, e, in, res)
			checkAllocated(img, sb, gd, e.Ino, res)
			checkDtime(in, e.Ino, res)
			checkBlockAlloc(img, sb, gd, in, e.Ino, res)

			if err := WriteInode(img, e.Ino, in); err != nil {
				continue
			}

			if in.IsDir() && e.Name != "." && e.Name != ".." && !visited[e.Ino] {
				visited[e.Ino] = true
				checkDir(img, sb, gd, in, res, visited)
			}
		}
	}
}

// checkMode implements rule (b): the directory entry's file_type must match
// the inode's actual i_mode; the inode wins on mismatch.
func checkMode(block []byte, e DirEntry, in *Inode, res *CheckResult) {
	want := modeToFileType(in.Mode)
	if want != FileTypeUnknown && e.FileType != want {
		res.fix("entry type vs inode mode mismatch for an inode")
		block[e.Off+7] = want
	}
}

// checkAllocated implements rule (c): a referenced inode must be marked
// allocated in the inode bitmap.
func checkAllocated(img []byte, sb *Superblock, gd *GroupDescriptor, ino uint32, res *CheckResult) {
	bm := InodeBitmap(img)
	i := int(ino) - 1
	if !bm.Test(i) {
		res.fix("referenced inode was not marked in-use in the inode bitmap")
		bm.Set(i)
		sb.FreeInodesCount--
		gd.FreeInodesCount--
	}
}

// checkDtime implements rule (d): a live, referenced inode's i_dtime must be
// zero.
func checkDtime(in *Inode, ino uint32, res *CheckResult) {
	if in.Dtime != 0 {
		res.fix("live inode was marked for deletion")
		in.Dtime = 0
	}
}

// checkBlockAlloc implements rule (e): every direct block an inode claims
// must be marked allocated in the block bitmap.
func checkBlockAlloc(img []byte, sb *Superblock, gd *GroupDescriptor, in *Inode, ino uint32, res *CheckResult) {
	bm := BlockBitmap(img)
	fixed := 0
	for i := 0; i < DirectBlockCount; i++ {
		b := in.Block[i]
		if b == 0 {
			continue
		}
		if !bm.Test(int(b)) {
			bm.Set(int(b))
			sb.FreeBlocksCount--
			gd.FreeBlocksCount--
			fixed++
		}
	}
	if fixed > 0 {
		res.fix("in-use data blocks were not marked in the block bitmap for an inode")
	}
}
