package vfs

import "strings"

// resolve walks a /-delimited path from startIno (root or cwd), returning
// the inode number it names, per spec.md §4.5. "." and ".." are not
// special-cased here: every directory stores them as real entries, so they
// resolve through the normal directory lookup.
func (fs *FileSystem) resolve(path string, cwdIno uint32) (uint32, error) {
	if path == "" {
		return 0, ErrNotFound
	}
	if path == "." {
		return cwdIno, nil
	}
	if path == "/" {
		return RootInodeNum, nil
	}

	current := cwdIno
	rest := path
	if path[0] == '/' {
		current = RootInodeNum
		rest = path[1:]
	}

	components := strings.Split(rest, "/")
	for i, comp := range components {
		if comp == "" {
			continue
		}

		curIno, err := fs.readInode(current)
		if err != nil {
			return 0, err
		}

		child, err := fs.dir.Lookup(curIno, comp)
		if err != nil {
			return 0, ErrNotFound
		}

		if i < len(components)-1 && hasMoreComponents(components[i+1:]) {
			childInode, err := fs.readInode(child)
			if err != nil {
				return 0, err
			}
			if childInode.Mode != ModeDir {
				return 0, ErrNotFound
			}
		}

		current = child
	}

	return current, nil
}

// hasMoreComponents reports whether any of the remaining path components are
// non-empty (collapsing runs of "/" means a trailing slash alone shouldn't
// count as "more").
func hasMoreComponents(rest []string) bool {
	for _, c := range rest {
		if c != "" {
			return true
		}
	}
	return false
}
