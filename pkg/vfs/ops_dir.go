package vfs

import "strings"

// Mkdir creates a new, empty directory at path, per spec.md §4.6.
func (fs *FileSystem) Mkdir(path string) error {
	parentPath, leaf := splitPath(path)
	if err := fs.checkName(leaf); err != nil {
		return err
	}

	parentNum, err := fs.resolve(parentPath, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	parentInode, err := fs.readInode(parentNum)
	if err != nil {
		return err
	}

	if _, err := fs.dir.Lookup(parentInode, leaf); err == nil {
		return ErrAlreadyExists
	}

	scope := newAllocScope(fs)
	defer scope.Abort()

	newNum, err := fs.alloc.AllocInode()
	if err != nil {
		return ErrNoSpace
	}
	scope.TrackInode(newNum)

	newBlock, err := fs.alloc.AllocDataBlock()
	if err != nil {
		fs.alloc.FreeInode(newNum)
		return ErrNoSpace
	}
	scope.TrackDataBlock(newBlock)

	now := nowSeconds()
	newInode := Inode{
		Mode:             ModeDir,
		Size:             2 * direntSize,
		LinkCount:        2,
		CreationTime:     now,
		ModificationTime: now,
		DirectBlocks:     newEmptyDirectBlocks(),
	}
	newInode.DirectBlocks[0] = newBlock

	if err := fs.writeInode(newNum, newInode); err != nil {
		return err
	}

	block := make([]byte, BlockSize)
	putDirentAt(block, 0, makeDirent(".", newNum))
	putDirentAt(block, 1, makeDirent("..", parentNum))
	if err := fs.writeDataBlock(newBlock, block); err != nil {
		return err
	}

	if err := fs.dir.Insert(parentNum, leaf, newNum); err != nil {
		return err
	}

	parentInode, err = fs.readInode(parentNum)
	if err != nil {
		return err
	}
	parentInode.LinkCount++
	if err := fs.writeInode(parentNum, parentInode); err != nil {
		return err
	}

	scope.Commit()
	return fs.sync()
}

// Rmdir removes an empty directory (one containing only "." and ".."). Per
// the redesign flag in spec.md §9, every non-UNUSED_BLOCK direct block of
// the directory is freed, not only direct_blocks[0].
func (fs *FileSystem) Rmdir(path string) error {
	if path == "/" {
		return ErrCannotRemoveRoot
	}

	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	if num == RootInodeNum {
		return ErrCannotRemoveRoot
	}

	ino, err := fs.readInode(num)
	if err != nil {
		return err
	}
	if ino.Mode != ModeDir {
		return ErrNotADirectory
	}

	count := 0
	if _, err := fs.dir.iterate(ino, func(_, _ int, _ dirent) bool {
		count++
		return false
	}); err != nil {
		return err
	}
	if count > 2 {
		return ErrDirectoryNotEmpty
	}

	parentPath, leaf := splitPath(path)
	parentNum, err := fs.resolve(parentPath, fs.cwd)
	if err != nil {
		return ErrNotFound
	}

	if err := fs.dir.Remove(parentNum, leaf); err != nil {
		return err
	}

	parentInode, err := fs.readInode(parentNum)
	if err != nil {
		return err
	}
	parentInode.LinkCount--
	if err := fs.writeInode(parentNum, parentInode); err != nil {
		return err
	}

	for _, b := range ino.DirectBlocks {
		if b != UnusedBlock {
			fs.alloc.FreeDataBlock(b)
		}
	}
	fs.alloc.FreeInode(num)

	return fs.sync()
}

// DirEntryInfo describes one entry returned by Ls when the target is a
// directory.
type DirEntryInfo struct {
	Name string
	Dir  bool
	Size uint32
}

// LsResult is the result of an Ls call: either a directory's entries or a
// single file's description.
type LsResult struct {
	IsDir   bool
	Entries []DirEntryInfo // set when IsDir
	Name    string         // set when !IsDir
	Size    uint32         // set when !IsDir
}

// Ls lists a directory's contents, or describes a single file, per
// spec.md §6. path defaults to "." at the call site (cmd/vfs), not here.
func (fs *FileSystem) Ls(path string) (LsResult, error) {
	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return LsResult{}, ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return LsResult{}, err
	}

	if ino.Mode != ModeDir {
		_, leaf := splitPath(path)
		if leaf == "" || leaf == "." || leaf == "/" {
			leaf = path
		}
		return LsResult{IsDir: false, Name: leaf, Size: ino.Size}, nil
	}

	var entries []DirEntryInfo
	_, err = fs.dir.iterate(ino, func(_, _ int, de dirent) bool {
		childIno, rerr := fs.readInode(de.InodeNumber)
		if rerr != nil {
			err = rerr
			return true
		}
		entries = append(entries, DirEntryInfo{
			Name: de.nameString(),
			Dir:  childIno.Mode == ModeDir,
			Size: childIno.Size,
		})
		return false
	})
	if err != nil {
		return LsResult{}, err
	}

	return LsResult{IsDir: true, Entries: entries}, nil
}

// Cd resolves path and, if it names a directory, updates the session's
// current working directory.
func (fs *FileSystem) Cd(path string) error {
	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return err
	}
	if ino.Mode != ModeDir {
		return ErrNotADirectory
	}
	fs.cwd = num
	return nil
}

// Pwd reconstructs the absolute path of the current working directory by
// repeated reverse lookup through "..", per spec.md §4.6.
func (fs *FileSystem) Pwd() (string, error) {
	if fs.cwd == RootInodeNum {
		return "/", nil
	}

	var components []string
	current := fs.cwd

	for depth := 0; current != RootInodeNum; depth++ {
		if depth >= MaxPathDepth {
			return "", errPwdTooDeep
		}

		curInode, err := fs.readInode(current)
		if err != nil {
			return "", err
		}
		parent, err := fs.dir.Lookup(curInode, "..")
		if err != nil {
			return "", errFSInconsistent
		}

		parentInode, err := fs.readInode(parent)
		if err != nil {
			return "", err
		}

		name, err := findNameForInode(fs, parentInode, current)
		if err != nil {
			return "", errFSInconsistent
		}
		components = append(components, name)

		if parent == current {
			break
		}
		current = parent
	}

	// components were collected innermost-first; reverse them.
	for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
		components[i], components[j] = components[j], components[i]
	}

	return "/" + strings.Join(components, "/"), nil
}

// findNameForInode scans parentInode's live entries for one whose inode
// number equals childNum and whose name is neither "." nor "..".
func findNameForInode(fs *FileSystem, parentInode Inode, childNum uint32) (string, error) {
	var found string
	ok, err := fs.dir.iterate(parentInode, func(_, _ int, de dirent) bool {
		if de.InodeNumber == childNum && de.nameString() != "." && de.nameString() != ".." {
			found = de.nameString()
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return found, nil
}
