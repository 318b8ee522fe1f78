package ext2fs

import "time"

// FileSystem bundles an open image with its superblock and group descriptor
// caches, flushing both back to the mapped buffer after every mutation.
// Grounded on the one-method-per-verb shape of
// akfs/internal/usecase/filesystem.go, adapted from a network service
// interface to direct mmap-backed mutation.
type FileSystem struct {
	img []byte
	sb  *Superblock
	gd  *GroupDescriptor
}

// Open loads the superblock and group descriptor from img for mutation.
func Open(img []byte) (*FileSystem, error) {
	sb, err := ReadSuperblock(img)
	if err != nil {
		return nil, err
	}
	gd, err := ReadGroupDescriptor(img)
	if err != nil {
		return nil, err
	}
	return &FileSystem{img: img, sb: sb, gd: gd}, nil
}

// flush persists the in-memory superblock/group-descriptor counters back to
// the mapped image. Every mutating method calls this before a successful
// return; an error return can leave the image's counters behind its bitmaps.
func (fs *FileSystem) flush() error {
	if err := WriteSuperblock(fs.img, fs.sb); err != nil {
		return err
	}
	return WriteGroupDescriptor(fs.img, fs.gd)
}

func now() uint32 { return uint32(time.Now().Unix()) }

// blocksNeeded returns ceil(size/BlockSize), with a floor of 1.
func blocksNeeded(size int) int {
	n := ceilDiv(size, BlockSize)
	if n < 1 {
		n = 1
	}
	return n
}

// allocDirectBlocks allocates n blocks and appends them to in.Block[0:12],
// failing with ErrNoSpaceBlock (and rolling back any blocks already taken)
// if the image cannot satisfy the whole request, or if n exceeds the
// 12-entry direct block budget this specification supports.
func (fs *FileSystem) allocDirectBlocks(in *Inode, n int) error {
	if n > DirectBlockCount {
		return ErrNoSpaceBlock
	}
	taken := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		b, err := AllocBlock(fs.img, fs.sb, fs.gd)
		if err != nil {
			for _, t := range taken {
				FreeBlock(fs.img, fs.sb, fs.gd, t)
			}
			return ErrNoSpaceBlock
		}
		taken = append(taken, b)
	}
	slot := 0
	for slot < DirectBlockCount && in.Block[slot] != 0 {
		slot++
	}
	for _, b := range taken {
		in.Block[slot] = b
		slot++
	}
	in.Blocks += uint32(len(taken))
	return nil
}

// insertDirEntry places a (ino, name, type) entry into dir, trying only the
// last allocated block for slack before growing dir with a freshly
// allocated block. dirIno is dir's own inode number, needed to persist a
// grown inode back to the table. Grounded on
// original_source/utils.c:update_dir_entry, which checks only the final
// block pointer and never falls back to an earlier block with room.
func (fs *FileSystem) insertDirEntry(dirIno uint32, dir *Inode, name string, ino uint32, ftype uint8) error {
	if blocks := dirBlocks(dir); len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		if insertInBlock(fs.img, last, name, ino, ftype) {
			return WriteInode(fs.img, dirIno, dir)
		}
	}
	b, err := AllocBlock(fs.img, fs.sb, fs.gd)
	if err != nil {
		return ErrNoSpaceBlock
	}
	slot := 0
	for slot < DirectBlockCount && dir.Block[slot] != 0 {
		slot++
	}
	if slot == DirectBlockCount {
		FreeBlock(fs.img, fs.sb, fs.gd, b)
		return ErrNoSpaceBlock
	}
	dir.Block[slot] = b
	dir.Blocks++
	dir.Size += BlockSize
	insertWholeBlock(fs.img, b, name, ino, ftype)
	return WriteInode(fs.img, dirIno, dir)
}

// Mkdir implements make_directory: see spec.md "make_directory(path)".
// Grounded on original_source/ext2_mkdir.c, with the directory block
// pre-formatted as "." and ".." rather than left to a generic inserter.
func (fs *FileSystem) Mkdir(path string) error {
	parent, name, err := SplitPath(path)
	if err != nil {
		return err
	}
	parentIno, err := ResolveParentDir(fs.img, parent)
	if err != nil {
		return err
	}
	parentInode, err := ReadInode(fs.img, parentIno)
	if err != nil {
		return err
	}
	if !parentInode.IsDir() {
		return ErrNotDir
	}
	if _, err := Lookup(fs.img, parentInode, name); err == nil {
		return ErrExists
	}

	ino, err := AllocInode(fs.img, fs.sb, fs.gd)
	if err != nil {
		return err
	}
	in := initInode(fs.img, ino, ModeDir|0755, 2)
	in.Ctime = now()
	in.Mtime = in.Ctime

	b, err := AllocBlock(fs.img, fs.sb, fs.gd)
	if err != nil {
		FreeInode(fs.img, fs.sb, fs.gd, ino)
		return err
	}
	in.Block[0] = b
	in.Blocks = 1
	in.Size = BlockSize
	formatNewDirBlock(fs.img, b, ino, parentIno)
	if err := WriteInode(fs.img, ino, in); err != nil {
		return err
	}

	if err := fs.insertDirEntry(parentIno, parentInode, name, ino, FileTypeDir); err != nil {
		return err
	}
	parentInode.LinksCount++
	if err := WriteInode(fs.img, parentIno, parentInode); err != nil {
		return err
	}
	fs.gd.UsedDirsCount++
	return fs.flush()
}

// formatNewDirBlock writes "." and ".." as the block's only two entries,
// their rec_lens summing to BlockSize.
func formatNewDirBlock(img []byte, block, selfIno, parentIno uint32) {
	b := blockBytes(img, block)
	clear(b)
	dotLen := minRecLen(1)
	encodeDirEntry(b, DirEntry{Ino: selfIno, RecLen: uint16(dotLen), FileType: FileTypeDir, Name: ".", Off: 0})
	encodeDirEntry(b, DirEntry{Ino: parentIno, RecLen: uint16(BlockSize - dotLen), FileType: FileTypeDir, Name: "..", Off: dotLen})
}

// writeFileData splits data across a freshly allocated run of direct blocks,
// zero-padding the final block to the block boundary.
func (fs *FileSystem) writeFileData(in *Inode, data []byte) error {
	n := blocksNeeded(len(data))
	if err := fs.allocDirectBlocks(in, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		b := blockBytes(fs.img, in.Block[i])
		clear(b)
		lo := i * BlockSize
		hi := lo + BlockSize
		if hi > len(data) {
			hi = len(data)
		}
		copy(b, data[lo:hi])
	}
	return nil
}

// CopyIn implements copy_in: see spec.md "copy_in(host_path, image_path)".
// Grounded on original_source/ext2_cp.c. data is the already-read contents
// of host_path; host stat/read is a thin collaborator kept out of this
// package per spec.md §1.
func (fs *FileSystem) CopyIn(data []byte, imagePath string) error {
	parent, name, err := SplitPath(imagePath)
	if err != nil {
		return err
	}
	parentIno, err := ResolveParentDir(fs.img, parent)
	if err != nil {
		return err
	}
	parentInode, err := ReadInode(fs.img, parentIno)
	if err != nil {
		return err
	}
	if !parentInode.IsDir() {
		return ErrNotDir
	}
	if _, err := Lookup(fs.img, parentInode, name); err == nil {
		return ErrExists
	}
	if blocksNeeded(len(data)) > DirectBlockCount {
		return ErrNoSpaceBlock
	}

	ino, err := AllocInode(fs.img, fs.sb, fs.gd)
	if err != nil {
		return err
	}
	in := initInode(fs.img, ino, ModeReg|0644, 1)
	in.Ctime = now()
	in.Mtime = in.Ctime
	in.Size = uint32(len(data))

	if err := fs.writeFileData(in, data); err != nil {
		FreeInode(fs.img, fs.sb, fs.gd, ino)
		return err
	}
	if err := WriteInode(fs.img, ino, in); err != nil {
		return err
	}
	if err := fs.insertDirEntry(parentIno, parentInode, name, ino, FileTypeRegular); err != nil {
		return err
	}
	return fs.flush()
}

// Link implements link(src, dst, symbolic): see spec.md "link(src, dst,
// symbolic)". Grounded on original_source/ext2_ln.c, with two fixes applied
// per DESIGN.md: a hard link now increments the source inode's link count,
// and a new symlink's link count is initialized to 1, not 2.
func (fs *FileSystem) Link(src, dst string, symbolic bool) error {
	_, srcName, err := SplitPath(src)
	if err != nil {
		return err
	}
	var srcIno uint32
	if src == "/" {
		srcIno = RootIno
	} else if srcIno, err = FindByName(fs.img, RootIno, srcName); err != nil {
		return ErrNotFound
	}
	srcInode, err := ReadInode(fs.img, srcIno)
	if err != nil {
		return err
	}

	dstParentPath, dstName, err := SplitPath(dst)
	if err != nil {
		return err
	}
	dstParentIno, err := ResolveParentDir(fs.img, dstParentPath)
	if err != nil {
		return err
	}
	dstParentInode, err := ReadInode(fs.img, dstParentIno)
	if err != nil {
		return err
	}
	if !dstParentInode.IsDir() {
		return ErrNotDir
	}
	if _, err := Lookup(fs.img, dstParentInode, dstName); err == nil {
		return ErrExists
	}

	if symbolic {
		body := []byte(src)
		if blocksNeeded(len(body)) > DirectBlockCount {
			return ErrNoSpaceBlock
		}
		ino, err := AllocInode(fs.img, fs.sb, fs.gd)
		if err != nil {
			return err
		}
		in := initInode(fs.img, ino, ModeLnk|0777, 1)
		in.Ctime = now()
		in.Mtime = in.Ctime
		in.Size = uint32(len(body))
		if err := fs.writeFileData(in, body); err != nil {
			FreeInode(fs.img, fs.sb, fs.gd, ino)
			return err
		}
		if err := WriteInode(fs.img, ino, in); err != nil {
			return err
		}
		if err := fs.insertDirEntry(dstParentIno, dstParentInode, dstName, ino, FileTypeSymlink); err != nil {
			return err
		}
		return fs.flush()
	}

	if srcInode.IsDir() {
		return ErrIsDir
	}
	if err := fs.insertDirEntry(dstParentIno, dstParentInode, dstName, srcIno, FileTypeRegular); err != nil {
		return err
	}
	srcInode.LinksCount++
	if err := WriteInode(fs.img, srcIno, srcInode); err != nil {
		return err
	}
	return fs.flush()
}

// Remove implements remove(path): see spec.md "remove(path)". Grounded on
// original_source/ext2_rm.c, with the free_block inode-number/block-number
// bug fixed per DESIGN.md: block bitmap bits are cleared using the inode's
// actual i_block entries, not its inode number.
func (fs *FileSystem) Remove(path string) error {
	parent, name, err := SplitPath(path)
	if err != nil {
		return err
	}
	parentIno, err := ResolveParentDir(fs.img, parent)
	if err != nil {
		return err
	}
	parentInode, err := ReadInode(fs.img, parentIno)
	if err != nil {
		return err
	}
	ino, err := Lookup(fs.img, parentInode, name)
	if err != nil {
		return err
	}
	in, err := ReadInode(fs.img, ino)
	if err != nil {
		return err
	}
	if in.IsDir() {
		return ErrIsDir
	}

	_, freedBlock, wholeBlockFreed, ok := removeEntry(fs.img, parentInode, name)
	if !ok {
		return ErrNotFound
	}
	if wholeBlockFreed {
		FreeBlock(fs.img, fs.sb, fs.gd, freedBlock)
	}
	if err := WriteInode(fs.img, parentIno, parentInode); err != nil {
		return err
	}

	in.LinksCount--
	if in.LinksCount == 0 {
		in.Dtime = now()
		FreeInode(fs.img, fs.sb, fs.gd, ino)
		for i := 0; i < DirectBlockCount; i++ {
			if in.Block[i] != 0 {
				FreeBlock(fs.img, fs.sb, fs.gd, in.Block[i])
			}
		}
	}
	if err := WriteInode(fs.img, ino, in); err != nil {
		return err
	}
	return fs.flush()
}

// Restore implements restore(path): see spec.md "restore(path)". Grounded
// on original_source/ext2_restore.c.
func (fs *FileSystem) Restore(path string) error {
	parent, name, err := SplitPath(path)
	if err != nil {
		return err
	}
	parentIno, err := ResolveParentDir(fs.img, parent)
	if err != nil {
		return err
	}
	parentInode, err := ReadInode(fs.img, parentIno)
	if err != nil {
		return err
	}
	if _, err := Lookup(fs.img, parentInode, name); err == nil {
		return ErrExists
	}

	b, tomb, ok := findTombstone(fs.img, parentInode, name)
	if !ok {
		return ErrNotFound
	}
	in, err := ReadInode(fs.img, tomb.Ino)
	if err != nil {
		return err
	}
	bm := InodeBitmap(fs.img)
	if bm.Test(int(tomb.Ino)-1) || in.Dtime == 0 {
		return ErrNotDeleted
	}

	bm.Set(int(tomb.Ino) - 1)
	fs.sb.FreeInodesCount--
	fs.gd.FreeInodesCount--

	blkBm := BlockBitmap(fs.img)
	for i := 0; i < DirectBlockCount; i++ {
		if in.Block[i] != 0 {
			blkBm.Set(int(in.Block[i]))
			fs.sb.FreeBlocksCount--
			fs.gd.FreeBlocksCount--
		}
	}

	in.LinksCount++
	in.Dtime = 0
	in.Mtime = now()
	if err := WriteInode(fs.img, tomb.Ino, in); err != nil {
		return err
	}

	block := blockBytes(fs.img, b)
	relinkTombstone(block, tomb)

	return fs.flush()
}
