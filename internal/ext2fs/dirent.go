package ext2fs

import "encoding/binary"

// DirEntry is one decoded, live directory entry: Off/RecLen locate it within
// its block for in-place rewrites.
type DirEntry struct {
	Ino      uint32
	RecLen   uint16
	FileType uint8
	Name     string
	Off      int // byte offset within the block
}

func decodeDirEntry(block []byte, off int) DirEntry {
	ino := binary.LittleEndian.Uint32(block[off : off+4])
	recLen := binary.LittleEndian.Uint16(block[off+4 : off+6])
	nameLen := int(block[off+6])
	fileType := block[off+7]
	name := string(block[off+8 : off+8+nameLen])
	return DirEntry{Ino: ino, RecLen: recLen, FileType: fileType, Name: name, Off: off}
}

func encodeDirEntry(block []byte, e DirEntry) {
	binary.LittleEndian.PutUint32(block[e.Off:e.Off+4], e.Ino)
	binary.LittleEndian.PutUint16(block[e.Off+4:e.Off+6], e.RecLen)
	block[e.Off+6] = byte(len(e.Name))
	block[e.Off+7] = e.FileType
	copy(block[e.Off+8:e.Off+8+len(e.Name)], e.Name)
}

// setRecLen rewrites only the rec_len field of the entry at off, used when
// an entry's span grows or shrinks without moving its name/inode.
func setRecLen(block []byte, off int, recLen uint16) {
	binary.LittleEndian.PutUint16(block[off+4:off+6], recLen)
}

// minRecLen returns the smallest 4-byte-aligned record length that can hold
// a name of length n.
func minRecLen(n int) int {
	return align4(DirEntryHeaderSize + n)
}

// scanBlock decodes every entry on the block's live chain, walking strictly
// by rec_len. A removed entry whose span was merged into its predecessor
// (see removeEntry) is skipped entirely: its header bytes remain physically
// present but sit inside the predecessor's rec_len, hidden from this walk.
func scanBlock(block []byte) []DirEntry {
	var entries []DirEntry
	off := 0
	for off+DirEntryHeaderSize <= len(block) {
		e := decodeDirEntry(block, off)
		if e.RecLen == 0 {
			break
		}
		entries = append(entries, e)
		off += int(e.RecLen)
	}
	return entries
}

// dirBlocks returns the data blocks backing directory inode in, in order.
func dirBlocks(in *Inode) []uint32 {
	n := int(in.Size) / BlockSize
	if n > DirectBlockCount {
		n = DirectBlockCount
	}
	blocks := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		if in.Block[i] != 0 {
			blocks = append(blocks, in.Block[i])
		}
	}
	return blocks
}

func blockBytes(img []byte, b uint32) []byte {
	off := offset(b)
	return img[off : off+BlockSize]
}

// Lookup scans directory inode dirIno's blocks for a live entry named name
// and returns its inode number, or ErrNotFound.
func Lookup(img []byte, dirIno *Inode, name string) (uint32, error) {
	for _, b := range dirBlocks(dirIno) {
		for _, e := range scanBlock(blockBytes(img, b)) {
			if e.Name == name {
				return e.Ino, nil
			}
		}
	}
	return 0, ErrNotFound
}

// ListDir returns every live entry across dirIno's blocks, in on-disk order.
func ListDir(img []byte, dirIno *Inode) []DirEntry {
	var out []DirEntry
	for _, b := range dirBlocks(dirIno) {
		out = append(out, scanBlock(blockBytes(img, b))...)
	}
	return out
}

// findTombstone looks within each live entry's slack — the gap between its
// minimal packed size and its rec_len — for a hidden entry header whose name
// matches. This is exactly the region removeEntry grows a surviving entry's
// rec_len into when it merges a removed neighbor. Returns the block number
// and the hidden entry, with Off relative to that block.
func findTombstone(img []byte, dirIno *Inode, name string) (uint32, DirEntry, bool) {
	for _, b := range dirBlocks(dirIno) {
		block := blockBytes(img, b)
		for _, live := range scanBlock(block) {
			used := minRecLen(len(live.Name))
			for hiddenOff := live.Off + used; hiddenOff+DirEntryHeaderSize <= live.Off+int(live.RecLen); {
				hidden := decodeDirEntry(block, hiddenOff)
				if hidden.RecLen == 0 {
					break
				}
				if hidden.Name == name {
					return b, hidden, true
				}
				hiddenOff += int(hidden.RecLen)
			}
		}
	}
	return 0, DirEntry{}, false
}

// insertInBlock tries to place a new entry of the given name/ino/type into
// block b by splitting an existing live entry's unused slack. Returns false
// if no entry has room.
func insertInBlock(img []byte, b uint32, name string, ino uint32, ftype uint8) bool {
	need := minRecLen(len(name))
	block := blockBytes(img, b)

	for _, e := range scanBlock(block) {
		used := minRecLen(len(e.Name))
		free := int(e.RecLen) - used
		if free >= need {
			setRecLen(block, e.Off, uint16(used))
			encodeDirEntry(block, DirEntry{
				Ino: ino, RecLen: uint16(free), FileType: ftype, Name: name, Off: e.Off + used,
			})
			return true
		}
	}
	return false
}

// insertWholeBlock formats a freshly allocated block as a single directory
// entry spanning it, used when no existing block has room.
func insertWholeBlock(img []byte, b uint32, name string, ino uint32, ftype uint8) {
	block := blockBytes(img, b)
	clear(block)
	encodeDirEntry(block, DirEntry{Ino: ino, RecLen: uint16(BlockSize), FileType: ftype, Name: name, Off: 0})
}

// removeEntry deletes the live entry named name from dirIno's blocks.
// Grounded on original_source/ext2_rm.c:free_block: if a preceding live
// entry exists in the same block, its rec_len grows to absorb the removed
// entry's span, leaving the removed entry's header bytes intact but hidden
// in that predecessor's new slack (recoverable by findTombstone/Restore). If
// the removed entry was the first in its block, the whole block is detached
// from the directory (its i_block slot zeroed) and its number is returned
// for the caller to release via FreeBlock — that block's contents, and any
// tombstones still inside it, are no longer reachable.
func removeEntry(img []byte, dirIno *Inode, name string) (freedIno uint32, freedBlock uint32, wholeBlockFreed bool, ok bool) {
	n := int(dirIno.Size) / BlockSize
	if n > DirectBlockCount {
		n = DirectBlockCount
	}
	for slot := 0; slot < n; slot++ {
		b := dirIno.Block[slot]
		if b == 0 {
			continue
		}
		block := blockBytes(img, b)
		entries := scanBlock(block)
		for idx, e := range entries {
			if e.Name != name {
				continue
			}
			if idx == 0 {
				dirIno.Block[slot] = 0
				return e.Ino, b, true, true
			}
			prev := entries[idx-1]
			setRecLen(block, prev.Off, prev.RecLen+e.RecLen)
			return e.Ino, 0, false, true
		}
	}
	return 0, 0, false, false
}

// relinkTombstone splices a hidden entry back into its block's live chain,
// undoing removeEntry's merge: the donor (the live entry whose span holds the
// tombstone) shrinks to end where the restored entry begins, and the restored
// entry reclaims the rest of the donor's former span.
func relinkTombstone(block []byte, tomb DirEntry) {
	entries := scanBlock(block)
	for _, e := range entries {
		end := e.Off + int(e.RecLen)
		if e.Off < tomb.Off && tomb.Off < end {
			setRecLen(block, e.Off, uint16(tomb.Off-e.Off))
			newLen := end - tomb.Off
			encodeDirEntry(block, DirEntry{Ino: tomb.Ino, RecLen: uint16(newLen), FileType: tomb.FileType, Name: tomb.Name, Off: tomb.Off})
			return
		}
	}
}
