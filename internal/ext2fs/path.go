package ext2fs

import "strings"

// SplitPath splits an absolute path into its parent directory portion and
// final component name, mirroring original_source/utils.c:parse_path: a
// trailing slash is stripped before splitting, and the root path "/" is
// used as the parent when the input has no slash before the final
// component.
func SplitPath(path string) (parent, name string, err error) {
	if !strings.HasPrefix(path, "/") {
		return "", "", ErrInvalidName
	}
	trimmed := path
	if len(trimmed) > 1 && strings.HasSuffix(trimmed, "/") {
		trimmed = trimmed[:len(trimmed)-1]
	}
	i := strings.LastIndex(trimmed, "/")
	name = trimmed[i+1:]
	parent = trimmed[:i]
	if parent == "" {
		parent = "/"
	}
	if name == "" {
		return "", "", ErrInvalidName
	}
	return parent, name, nil
}

// basename returns the final component of an (already parse_path-style)
// path string, matching libgen's basename for the paths this package
// produces: everything after the last '/', or the whole string if there is
// none.
func basename(path string) string {
	i := strings.LastIndex(path, "/")
	return path[i+1:]
}

// FindByName performs a depth-first, whole-tree search for a directory
// entry named name starting at the directory inode rootIno, descending into
// every subdirectory (skipping "." and "..") regardless of where the search
// started. This reproduces original_source/utils.c:find_idx exactly,
// including its defining simplification: it resolves a bare name anywhere
// in the tree rather than walking path components in order, so a name that
// occurs at multiple depths resolves to whichever occurrence DFS visits
// first. This implementation keeps that behavior rather than switching to
// proper component-wise resolution; see DESIGN.md.
func FindByName(img []byte, rootIno uint32, name string) (uint32, error) {
	in, err := ReadInode(img, rootIno)
	if err != nil {
		return 0, err
	}
	if found, ok := findByNameIn(img, in, name); ok {
		return found, nil
	}
	return 0, ErrNotFound
}

func findByNameIn(img []byte, dir *Inode, name string) (uint32, bool) {
	for _, b := range dirBlocks(dir) {
		for _, e := range scanBlock(blockBytes(img, b)) {
			if e.Ino == 0 {
				continue
			}
			if e.Name == name {
				return e.Ino, true
			}
			if e.FileType == FileTypeDir && e.Name != "." && e.Name != ".." {
				child, err := ReadInode(img, e.Ino)
				if err != nil {
					continue
				}
				if found, ok := findByNameIn(img, child, name); ok {
					return found, true
				}
			}
		}
	}
	return 0, false
}

// ResolveParentDir resolves the directory component of an absolute path to
// an inode number, using FindByName's whole-tree search for every path
// other than "/" itself — grounded on ext2_mkdir.c's use of
// find_idx(disk, basename(path), root_dir) to locate a target's parent.
func ResolveParentDir(img []byte, parent string) (uint32, error) {
	if parent == "/" {
		return RootIno, nil
	}
	return FindByName(img, RootIno, basename(parent))
}
