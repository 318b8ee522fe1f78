package ext2fs

import "errors"

// Sentinel errors returned by the file operations, path resolver and
// allocator. CLI binaries map these to negative-errno exit codes; see
// errno.go. Shape grounded on akfs/internal/domain/errors.go.
var (
	ErrNotFound     = errors.New("no such file or directory")
	ErrExists       = errors.New("file exists")
	ErrIsDir        = errors.New("is a directory")
	ErrNotDir       = errors.New("not a directory")
	ErrNotEmpty     = errors.New("directory not empty")
	ErrNoSpaceInode = errors.New("no free inodes")
	ErrNoSpaceBlock = errors.New("no space left on device")
	ErrInvalidName  = errors.New("invalid file name")
	ErrCrossDevice  = errors.New("hard link across incompatible types")
	ErrNotDeleted   = errors.New("inode is not a removed, restorable file")
)
