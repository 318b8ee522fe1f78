package ext2fs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMkdirCreatesDirectoryAndBumpsParentLinks(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/foo"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	require.EqualValues(t, 3, root.LinksCount)

	ino, err := Lookup(img, root, "foo")
	require.NoError(t, err)

	foo, err := ReadInode(img, ino)
	require.NoError(t, err)
	require.True(t, foo.IsDir())
	require.EqualValues(t, 2, foo.LinksCount)
	require.EqualValues(t, BlockSize, foo.Size)

	entries := ListDir(img, foo)
	require.Len(t, entries, 2)
	require.EqualValues(t, ino, entries[0].Ino)
	require.EqualValues(t, RootIno, entries[1].Ino)

	gd, err := ReadGroupDescriptor(img)
	require.NoError(t, err)
	require.EqualValues(t, 2, gd.UsedDirsCount)
}

func TestMkdirRejectsExistingLeaf(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/foo"))
	require.ErrorIs(t, fs.Mkdir("/foo"), ErrExists)
}

func TestCopyInWritesFileContent(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	data := []byte("hello, ext2\n")
	require.NoError(t, fs.CopyIn(data, "/hello.txt"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)

	in, err := ReadInode(img, ino)
	require.NoError(t, err)
	require.True(t, in.IsRegular())
	require.EqualValues(t, len(data), in.Size)
	require.EqualValues(t, 1, in.LinksCount)

	block := blockBytes(img, in.Block[0])
	require.Equal(t, data, block[:len(data)])
}

func TestCopyInSetsBlockCountToRawAllocatedBlocks(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	data := make([]byte, 1500)
	require.NoError(t, fs.CopyIn(data, "/big.txt"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "big.txt")
	require.NoError(t, err)

	in, err := ReadInode(img, ino)
	require.NoError(t, err)
	require.EqualValues(t, 2, in.Blocks)
}

func TestInsertDirEntryOnlyTriesLastBlock(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)

	// root's sole block still holds only "." and ".." — wide open slack —
	// but it must not be the target once a second block exists.

	secondBlock, err := AllocBlock(img, fs.sb, fs.gd)
	require.NoError(t, err)

	// Pack the second block with four minimal, same-size entries so it has
	// exactly zero slack: 4 * minRecLen(248) == 1024 == BlockSize.
	block := blockBytes(img, secondBlock)
	clear(block)
	name := strings.Repeat("a", 248)
	for i, off := 0, 0; i < 4; i, off = i+1, off+256 {
		encodeDirEntry(block, DirEntry{Ino: FirstIno, RecLen: 256, FileType: FileTypeRegular, Name: name, Off: off})
	}

	root.Block[1] = secondBlock
	root.Blocks++
	root.Size += BlockSize
	require.NoError(t, WriteInode(img, RootIno, root))

	require.NoError(t, fs.CopyIn([]byte("x"), "/third.txt"))

	root, err = ReadInode(img, RootIno)
	require.NoError(t, err)
	blocks := dirBlocks(root)
	require.Len(t, blocks, 3, "a full last block must trigger a new block, not fall back to the first block's slack")

	found := false
	for _, e := range scanBlock(blockBytes(img, blocks[2])) {
		if e.Name == "third.txt" {
			found = true
		}
	}
	require.True(t, found, "new entry must land in the freshly allocated last block")

	for _, e := range scanBlock(blockBytes(img, blocks[0])) {
		require.NotEqual(t, "third.txt", e.Name, "first block's slack must be left untouched")
	}
}

func TestHardLinkSharesInodeAndIncrementsLinkCount(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))
	require.NoError(t, fs.Link("/hello.txt", "/world.txt", false))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	a, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)
	b, err := Lookup(img, root, "world.txt")
	require.NoError(t, err)
	require.Equal(t, a, b)

	in, err := ReadInode(img, a)
	require.NoError(t, err)
	require.EqualValues(t, 2, in.LinksCount)
}

func TestHardLinkToDirectoryFails(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/foo"))
	require.ErrorIs(t, fs.Link("/foo", "/bar", false), ErrIsDir)
}

func TestSymlinkStoresSourcePathAsBody(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))
	require.NoError(t, fs.Link("/hello.txt", "/slink", true))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "slink")
	require.NoError(t, err)

	in, err := ReadInode(img, ino)
	require.NoError(t, err)
	require.True(t, in.IsSymlink())
	require.EqualValues(t, 1, in.LinksCount)
	require.EqualValues(t, len("/hello.txt"), in.Size)

	block := blockBytes(img, in.Block[0])
	require.Equal(t, "/hello.txt", string(block[:in.Size]))
}

func TestRemoveThenRestoreBringsFileBack(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))
	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/hello.txt"))

	root, err = ReadInode(img, RootIno)
	require.NoError(t, err)
	_, err = Lookup(img, root, "hello.txt")
	require.ErrorIs(t, err, ErrNotFound)

	in, err := ReadInode(img, ino)
	require.NoError(t, err)
	require.EqualValues(t, 0, in.LinksCount)
	require.NotZero(t, in.Dtime)

	bm := InodeBitmap(img)
	require.False(t, bm.Test(int(ino)-1))

	require.NoError(t, fs.Restore("/hello.txt"))

	root, err = ReadInode(img, RootIno)
	require.NoError(t, err)
	restoredIno, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)
	require.Equal(t, ino, restoredIno)

	in, err = ReadInode(img, ino)
	require.NoError(t, err)
	require.EqualValues(t, 1, in.LinksCount)
	require.Zero(t, in.Dtime)
	require.True(t, bm.Test(int(ino)-1))
}

func TestRemoveRejectsDirectory(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/foo"))
	require.ErrorIs(t, fs.Remove("/foo"), ErrIsDir)
}

func TestRestoreWithoutPriorRemovalFails(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)

	require.ErrorIs(t, fs.Restore("/ghost.txt"), ErrNotFound)
}
