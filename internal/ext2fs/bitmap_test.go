package ext2fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmapSetClearTest(t *testing.T) {
	buf := make([]byte, BlockSize)
	bm := Bitmap{bytes: buf}

	require.False(t, bm.Test(5))
	bm.Set(5)
	require.True(t, bm.Test(5))
	require.Equal(t, byte(1<<5), buf[0])

	bm.Clear(5)
	require.False(t, bm.Test(5))
}

func TestBitmapFindFree(t *testing.T) {
	buf := make([]byte, BlockSize)
	bm := Bitmap{bytes: buf}
	bm.Set(0)
	bm.Set(1)

	require.Equal(t, 2, bm.FindFree(10))
}

func TestBitmapCount(t *testing.T) {
	buf := make([]byte, BlockSize)
	bm := Bitmap{bytes: buf}
	bm.Set(0)
	bm.Set(3)
	bm.Set(7)

	require.Equal(t, 3, bm.Count(8))
}
