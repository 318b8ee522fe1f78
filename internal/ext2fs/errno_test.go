package ext2fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrnoMapsSentinelsToNegativeErrno(t *testing.T) {
	require.EqualValues(t, 0, Errno(nil))
	require.EqualValues(t, ErrnoNoent, Errno(ErrNotFound))
	require.EqualValues(t, ErrnoExist, Errno(ErrExists))
	require.EqualValues(t, ErrnoIsdir, Errno(ErrIsDir))
	require.EqualValues(t, ErrnoNotdir, Errno(ErrNotDir))
	require.EqualValues(t, ErrnoNotempty, Errno(ErrNotEmpty))
	require.EqualValues(t, ErrnoNospc, Errno(ErrNoSpaceBlock))
	require.EqualValues(t, ErrnoNospc, Errno(ErrNoSpaceInode))
}
