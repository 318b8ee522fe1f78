package ext2fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckRepairsCorruptedCounters(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))

	sb, err := ReadSuperblock(img)
	require.NoError(t, err)
	sb.FreeInodesCount += 5
	sb.FreeBlocksCount += 5
	require.NoError(t, WriteSuperblock(img, sb))

	res, err := Check(img)
	require.NoError(t, err)
	require.Greater(t, res.FixedCount, 0)
	require.Contains(t, res.Messages, "superblock's free inodes counter was off by 5")
	require.Contains(t, res.Messages, "superblock's free blocks counter was off by 5")

	sb, err = ReadSuperblock(img)
	require.NoError(t, err)
	inodeBm := InodeBitmap(img)
	require.EqualValues(t, InodesCount-inodeBm.Count(InodesCount), sb.FreeInodesCount)
	blockBm := BlockBitmap(img)
	require.EqualValues(t, BlocksCount-blockBm.Count(BlocksCount), sb.FreeBlocksCount)
}

func TestCheckRepairsEntryTypeMismatch(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)

	// Corrupt the directory entry's file_type without touching the inode.
	block := blockBytes(img, root.Block[0])
	for _, e := range scanBlock(block) {
		if e.Ino == ino {
			block[e.Off+7] = FileTypeDir
		}
	}

	res, err := Check(img)
	require.NoError(t, err)
	require.Greater(t, res.FixedCount, 0)

	root, err = ReadInode(img, RootIno)
	require.NoError(t, err)
	entries := ListDir(img, root)
	for _, e := range entries {
		if e.Ino == ino {
			require.EqualValues(t, FileTypeRegular, e.FileType)
		}
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.Mkdir("/foo"))
	require.NoError(t, fs.CopyIn([]byte("x"), "/foo/bar.txt"))

	_, err = Check(img)
	require.NoError(t, err)

	res, err := Check(img)
	require.NoError(t, err)
	require.Zero(t, res.FixedCount)
}

func TestCheckClearsStaleDtime(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.CopyIn([]byte("x"), "/hello.txt"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	ino, err := Lookup(img, root, "hello.txt")
	require.NoError(t, err)

	in, err := ReadInode(img, ino)
	require.NoError(t, err)
	in.Dtime = 12345
	require.NoError(t, WriteInode(img, ino, in))

	res, err := Check(img)
	require.NoError(t, err)
	require.Greater(t, res.FixedCount, 0)

	in, err = ReadInode(img, ino)
	require.NoError(t, err)
	require.Zero(t, in.Dtime)
}
