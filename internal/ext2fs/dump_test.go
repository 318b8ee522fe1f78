package ext2fs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpReportsRootAndCreatedInodes(t *testing.T) {
	img := newFixture(t)
	fs, err := Open(img)
	require.NoError(t, err)
	require.NoError(t, fs.CopyIn([]byte("hi"), "/hello.txt"))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, img))
	out := buf.String()

	require.Contains(t, out, "Inodes: 32")
	require.Contains(t, out, "Blocks: 128")
	require.Contains(t, out, "type: d")
	require.True(t, strings.Contains(out, "name=hello.txt") || strings.Contains(out, "name=."))
	require.Contains(t, out, "Directory Blocks:")
}
