package vfs

// allocator owns the in-memory copies of the inode and data-block bitmaps
// and performs first-fit allocation, per spec.md §4.2. It never touches
// inode or block contents: zeroing newly allocated blocks is the caller's
// responsibility.
type allocator struct {
	dev    *blockDevice
	sb     *Superblock
	inodes *bitmap
	data   *bitmap
}

func loadAllocator(dev *blockDevice, sb *Superblock) (*allocator, error) {
	a := &allocator{dev: dev, sb: sb}

	buf := make([]byte, BlockSize)
	if err := dev.ReadBlock(sb.InodeBitmapBlock, buf); err != nil {
		return nil, err
	}
	a.inodes = bitmapFromBlock(sb.NumInodes, buf)

	if err := dev.ReadBlock(sb.DataBitmapBlock, buf); err != nil {
		return nil, err
	}
	a.data = bitmapFromBlock(sb.NumDataBlocks, buf)

	return a, nil
}

// AllocInode returns the first free inode number, marking it in use, or
// ErrNoSpace if none remain.
func (a *allocator) AllocInode() (uint32, error) {
	n, ok := a.inodes.FirstClear()
	if !ok {
		return 0, ErrNoSpace
	}
	a.inodes.Set(n)
	return n, nil
}

// FreeInode clears the inode's bit. Idempotent.
func (a *allocator) FreeInode(n uint32) {
	a.inodes.Clear(n)
}

// AllocDataBlock returns the first free data block number, marking it in
// use, or ErrNoSpace if none remain.
func (a *allocator) AllocDataBlock() (uint32, error) {
	n, ok := a.data.FirstClear()
	if !ok {
		return 0, ErrNoSpace
	}
	a.data.Set(n)
	return n, nil
}

// FreeDataBlock clears the data block's bit. Idempotent.
func (a *allocator) FreeDataBlock(n uint32) {
	a.data.Clear(n)
}

// Sync writes both bitmaps back to their reserved blocks.
func (a *allocator) Sync() error {
	if err := a.dev.WriteBlock(a.sb.InodeBitmapBlock, a.inodes.toBlock()); err != nil {
		return err
	}
	return a.dev.WriteBlock(a.sb.DataBitmapBlock, a.data.toBlock())
}

// UsedInodes and UsedDataBlocks back the df operation.
func (a *allocator) UsedInodes() int     { return a.inodes.Count() }
func (a *allocator) UsedDataBlocks() int { return a.data.Count() }
