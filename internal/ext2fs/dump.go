package ext2fs

import (
	"fmt"
	"io"
)

// dumpInodeThreshold selects the inodes Dump reports: an inode is dumped if
// it is the root inode or a non-reserved inode (1-based number FirstIno or
// above), and it has non-zero size.
func dumpInodeThreshold(ino uint32, in *Inode) bool {
	return (ino == RootIno || ino >= FirstIno) && in.Size > 0
}

// Dump writes a read-only report of the image's superblock, group
// descriptor, bitmaps, qualifying inodes and their directory blocks to w.
// Grounded on original_source/readimage.c in full.
func Dump(w io.Writer, img []byte) error {
	sb, err := ReadSuperblock(img)
	if err != nil {
		return err
	}
	gd, err := ReadGroupDescriptor(img)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Inodes: %d\n", sb.InodesCount)
	fmt.Fprintf(w, "Blocks: %d\n", sb.BlocksCount)
	fmt.Fprintf(w, "Block group:\n")
	fmt.Fprintf(w, "    block bitmap: %d\n", BlockBitmapBlock)
	fmt.Fprintf(w, "    inode bitmap: %d\n", InodeBitmapBlock)
	fmt.Fprintf(w, "    inode table: %d\n", InodeTableBlock)
	fmt.Fprintf(w, "    free blocks: %d\n", gd.FreeBlocksCount)
	fmt.Fprintf(w, "    free inodes: %d\n", gd.FreeInodesCount)
	fmt.Fprintf(w, "    used_dirs: %d\n", gd.UsedDirsCount)

	fmt.Fprintf(w, "Block bitmap:")
	printBitmap(w, BlockBitmap(img), int(sb.BlocksCount))
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Inode bitmap:")
	printBitmap(w, InodeBitmap(img), int(sb.InodesCount))
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "\nInodes:\n")
	var dirInodes []uint32
	for ino := uint32(1); ino <= sb.InodesCount; ino++ {
		in, err := ReadInode(img, ino)
		if err != nil {
			return err
		}
		if !dumpInodeThreshold(ino, in) {
			continue
		}
		fmt.Fprintf(w, "[%d] type: %c size: %d links: %d blocks: %d\n",
			ino, inodeTypeChar(in.Mode), in.Size, in.LinksCount, in.Blocks)
		fmt.Fprintf(w, "[%d] Blocks:", ino)
		for i := 0; i < DirectBlockCount && in.Block[i] != 0; i++ {
			fmt.Fprintf(w, " %d", in.Block[i])
		}
		fmt.Fprintf(w, "\n")
		if in.IsDir() {
			dirInodes = append(dirInodes, ino)
		}
	}

	fmt.Fprintf(w, "\nDirectory Blocks:\n")
	for _, ino := range dirInodes {
		in, err := ReadInode(img, ino)
		if err != nil {
			return err
		}
		for _, b := range dirBlocks(in) {
			fmt.Fprintf(w, "   DIR BLOCK NUM: %d (for inode %d)\n", b, ino)
			for _, e := range scanBlock(blockBytes(img, b)) {
				fmt.Fprintf(w, "Inode: %d rec_len: %d name_len: %d type= %c name=%s\n",
					e.Ino, e.RecLen, len(e.Name), dirTypeChar(e.FileType), e.Name)
			}
		}
	}
	return nil
}

func printBitmap(w io.Writer, bm Bitmap, size int) {
	for i := 0; i < size; i++ {
		if i%8 == 0 {
			fmt.Fprintf(w, " ")
		}
		if bm.Test(i) {
			fmt.Fprintf(w, "1")
		} else {
			fmt.Fprintf(w, "0")
		}
	}
}
