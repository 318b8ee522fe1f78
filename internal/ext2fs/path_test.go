package ext2fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path, parent, name string
	}{
		{"/foo", "/", "foo"},
		{"/foo/", "/", "foo"},
		{"/foo/bar", "/foo", "bar"},
	}
	for _, c := range cases {
		parent, name, err := SplitPath(c.path)
		require.NoError(t, err)
		require.Equal(t, c.parent, parent)
		require.Equal(t, c.name, name)
	}
}

func TestSplitPathRejectsRelativePath(t *testing.T) {
	_, _, err := SplitPath("foo/bar")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestFindByNameDescendsIntoSubdirectories(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.Mkdir("/foo"))
	require.NoError(t, fs.CopyIn([]byte("x"), "/foo/bar.txt"))

	root, err := ReadInode(img, RootIno)
	require.NoError(t, err)
	fooIno, err := Lookup(img, root, "foo")
	require.NoError(t, err)
	foo, err := ReadInode(img, fooIno)
	require.NoError(t, err)
	wantIno, err := Lookup(img, foo, "bar.txt")
	require.NoError(t, err)

	gotIno, err := FindByName(img, RootIno, "bar.txt")
	require.NoError(t, err)
	require.Equal(t, wantIno, gotIno)
}
