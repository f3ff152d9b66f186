package vfs

import "io"

// CpIn creates a new regular file at vdiskPath and copies size bytes read
// from src into it, per spec.md §4.6 and myfs.c's do_cp_to_vdisk. Any
// partial allocation made before a failure is rolled back.
func (fs *FileSystem) CpIn(src io.Reader, size int64, vdiskPath string) error {
	if size < 0 {
		return ErrInvalidArgument
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}

	parentPath, leaf := splitPath(vdiskPath)
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
	if parentInode.Mode != ModeDir {
		return ErrNotADirectory
	}
	if _, err := fs.dir.Lookup(parentInode, leaf); err == nil {
		return ErrAlreadyExists
	}

	scope := newAllocScope(fs)
	defer scope.Abort()

	newNum, err := fs.alloc.AllocInode()
	if err != nil {
		return err
	}
	scope.TrackInode(newNum)

	now := nowSeconds()
	newInode := Inode{
		Mode:             ModeFile,
		Size:             uint32(size),
		LinkCount:        1,
		CreationTime:     now,
		ModificationTime: now,
		DirectBlocks:     newEmptyDirectBlocks(),
	}

	numBlocks := blocksNeeded(size)
	buf := make([]byte, BlockSize)
	remaining := size
	for i := 0; i < numBlocks; i++ {
		blockNum, err := fs.alloc.AllocDataBlock()
		if err != nil {
			return err
		}
		scope.TrackDataBlock(blockNum)
		newInode.DirectBlocks[i] = blockNum

		for i := range buf {
			buf[i] = 0
		}
		n := int64(BlockSize)
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return newIOError("copy in", err)
		}
		remaining -= n

		if err := fs.writeDataBlock(blockNum, buf); err != nil {
			return err
		}
	}

	if err := fs.writeInode(newNum, newInode); err != nil {
		return err
	}
	if err := fs.dir.Insert(parentNum, leaf, newNum); err != nil {
		return err
	}

	scope.Commit()
	return fs.sync()
}

// CpOut copies a regular file's full contents to dst, per myfs.c's
// do_cp_from_vdisk.
func (fs *FileSystem) CpOut(vdiskPath string, dst io.Writer) error {
	num, err := fs.resolve(vdiskPath, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return err
	}
	if ino.Mode != ModeFile {
		return ErrNotAFile
	}

	remaining := int64(ino.Size)
	buf := make([]byte, BlockSize)
	numBlocks := blocksNeeded(int64(ino.Size))
	for i := 0; i < numBlocks; i++ {
		if ino.DirectBlocks[i] == UnusedBlock {
			return errFSInconsistent
		}
		if err := fs.readDataBlock(ino.DirectBlocks[i], buf); err != nil {
			return err
		}
		n := int64(BlockSize)
		if remaining < n {
			n = remaining
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return newIOError("copy out", err)
		}
		remaining -= n
	}
	return nil
}

// Rm removes a directory entry naming a regular file and, once its link
// count reaches zero, reclaims its inode and data blocks, per myfs.c's
// do_rm/do_rm_entry.
func (fs *FileSystem) Rm(path string) error {
	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return err
	}
	if ino.Mode != ModeFile {
		return ErrNotAFile
	}

	parentPath, leaf := splitPath(path)
	parentNum, err := fs.resolve(parentPath, fs.cwd)
	if err != nil {
		return ErrNotFound
	}

	if err := fs.dir.Remove(parentNum, leaf); err != nil {
		return err
	}

	ino.LinkCount--
	if ino.LinkCount > 0 {
		if err := fs.writeInode(num, ino); err != nil {
			return err
		}
		return fs.sync()
	}

	for _, b := range ino.DirectBlocks {
		if b != UnusedBlock {
			fs.alloc.FreeDataBlock(b)
		}
	}
	fs.alloc.FreeInode(num)
	return fs.sync()
}

// Ln creates an additional directory entry, linkPath, naming the same file
// inode as targetPath, per myfs.c's do_ln. Linking a directory is rejected.
func (fs *FileSystem) Ln(targetPath, linkPath string) error {
	targetNum, err := fs.resolve(targetPath, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	targetInode, err := fs.readInode(targetNum)
	if err != nil {
		return err
	}
	if targetInode.Mode != ModeFile {
		return ErrNotAFile
	}

	parentPath, leaf := splitPath(linkPath)
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

	if err := fs.dir.Insert(parentNum, leaf, targetNum); err != nil {
		return err
	}

	targetInode.LinkCount++
	if err := fs.writeInode(targetNum, targetInode); err != nil {
		return err
	}
	return fs.sync()
}

// Append extends a file by n bytes read from src, writing them first into the
// unused tail of its final partially-used block and then into newly
// allocated blocks, per
// myfs.c's do_append. size+n > MaxFileSize is refused outright with no
// allocation or writes (myfs.c:657-660); a mid-loop NoSpace is the only case
// that returns a partial byte count (myfs.c's incremental growth loop).
func (fs *FileSystem) Append(path string, src io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidArgument
	}

	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return 0, ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return 0, err
	}
	if ino.Mode != ModeFile {
		return 0, ErrNotAFile
	}

	if int64(ino.Size)+int64(n) > MaxFileSize {
		return 0, ErrFileTooLarge
	}
	want := int64(n)

	scope := newAllocScope(fs)
	defer scope.Abort()

	written := int64(0)
	buf := make([]byte, BlockSize)

	lastBlockIdx := int(ino.Size / BlockSize)
	offsetInLastBlock := int(ino.Size % BlockSize)

	// Fill out the tail of the last partially-used block, if any.
	if offsetInLastBlock != 0 && lastBlockIdx < DirectPointers && ino.DirectBlocks[lastBlockIdx] != UnusedBlock {
		if err := fs.readDataBlock(ino.DirectBlocks[lastBlockIdx], buf); err != nil {
			return 0, err
		}
		space := int64(BlockSize - offsetInLastBlock)
		take := want
		if take > space {
			take = space
		}
		if _, err := io.ReadFull(src, buf[offsetInLastBlock:int64(offsetInLastBlock)+take]); err != nil {
			return int(written), newIOError("append", err)
		}
		if err := fs.writeDataBlock(ino.DirectBlocks[lastBlockIdx], buf); err != nil {
			return int(written), err
		}
		written += take
		want -= take
		lastBlockIdx++
	} else if offsetInLastBlock != 0 {
		lastBlockIdx++
	}

	var outOfSpace bool
	for want > 0 {
		if lastBlockIdx >= DirectPointers {
			break
		}
		blockNum, err := fs.alloc.AllocDataBlock()
		if err != nil {
			outOfSpace = true
			break
		}
		scope.TrackDataBlock(blockNum)

		for i := range buf {
			buf[i] = 0
		}
		take := want
		if take > BlockSize {
			take = BlockSize
		}
		if _, err := io.ReadFull(src, buf[:take]); err != nil {
			return int(written), newIOError("append", err)
		}
		if err := fs.writeDataBlock(blockNum, buf); err != nil {
			return int(written), err
		}
		ino.DirectBlocks[lastBlockIdx] = blockNum
		written += take
		want -= take
		lastBlockIdx++
	}

	ino.Size += uint32(written)
	ino.ModificationTime = nowSeconds()
	if err := fs.writeInode(num, ino); err != nil {
		return int(written), err
	}

	scope.Commit()
	if err := fs.sync(); err != nil {
		return int(written), err
	}
	if outOfSpace {
		return int(written), ErrNoSpace
	}
	return int(written), nil
}

// Truncate shrinks a file by n bytes (not to n bytes), clamping at zero, and
// frees any data blocks that fall entirely past the new size, per myfs.c's
// do_truncate.
func (fs *FileSystem) Truncate(path string, n int) error {
	if n <= 0 {
		return ErrInvalidArgument
	}

	num, err := fs.resolve(path, fs.cwd)
	if err != nil {
		return ErrNotFound
	}
	ino, err := fs.readInode(num)
	if err != nil {
		return err
	}
	if ino.Mode != ModeFile {
		return ErrNotAFile
	}

	originalSize := int64(ino.Size)
	newSize := originalSize - int64(n)
	if newSize < 0 {
		newSize = 0
	}

	lastBlockToKeep := -1
	if newSize > 0 {
		lastBlockToKeep = int((newSize - 1) / BlockSize)
	}

	for i := lastBlockToKeep + 1; i < DirectPointers; i++ {
		if ino.DirectBlocks[i] != UnusedBlock {
			fs.alloc.FreeDataBlock(ino.DirectBlocks[i])
			ino.DirectBlocks[i] = UnusedBlock
		}
	}

	ino.Size = uint32(newSize)
	ino.ModificationTime = nowSeconds()
	if err := fs.writeInode(num, ino); err != nil {
		return err
	}
	return fs.sync()
}

// blocksNeeded returns how many direct blocks are needed to hold size bytes.
func blocksNeeded(size int64) int {
	if size == 0 {
		return 0
	}
	return int((size + BlockSize - 1) / BlockSize)
}
