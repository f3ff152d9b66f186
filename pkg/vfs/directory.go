package vfs

// directory implements the packing/unpacking of fixed-size directory
// entries inside a directory inode's data blocks: lookup, insert, remove,
// and the tombstone-aware iteration contract of spec.md §4.4.
type directory struct {
	fs *FileSystem
}

// liveEntryCount returns size/sizeof(entry): the number of live entries, per
// spec.md §4.4's size law.
func liveEntryCount(ino Inode) int {
	return int(ino.Size) / direntSize
}

// iterate walks every slot of dirIno in block-major order, stopping once the
// running count of live entries seen equals liveEntryCount(dirIno), and
// calls visit for every live entry encountered. If visit returns true,
// iteration stops early and iterate returns true.
func (d *directory) iterate(dirIno Inode, visit func(blockIdx, slot int, de dirent) bool) (bool, error) {
	total := liveEntryCount(dirIno)
	seen := 0
	buf := make([]byte, BlockSize)

	for bi := 0; bi < DirectPointers; bi++ {
		if seen >= total {
			break
		}
		if dirIno.DirectBlocks[bi] == UnusedBlock {
			break
		}
		if err := d.fs.readDataBlock(dirIno.DirectBlocks[bi], buf); err != nil {
			return false, err
		}
		for slot := 0; slot < entriesPerBlock; slot++ {
			if seen >= total {
				break
			}
			de := direntAt(buf, slot)
			if !de.live() {
				continue
			}
			seen++
			if visit(bi, slot, de) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Lookup returns the inode number for name within dirIno, or ErrNotFound.
func (d *directory) Lookup(dirIno Inode, name string) (uint32, error) {
	if dirIno.Mode != ModeDir {
		return 0, ErrNotFound
	}
	var found uint32
	ok, err := d.iterate(dirIno, func(_, _ int, de dirent) bool {
		if de.nameString() == name {
			found = de.InodeNumber
			return true
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound
	}
	return found, nil
}

// Insert adds a (name, childIno) entry to the directory inode numbered
// dirNum, following spec.md §4.4's slot-reuse and growth rules.
func (d *directory) Insert(dirNum uint32, name string, childIno uint32) error {
	dirInode, err := d.fs.readInode(dirNum)
	if err != nil {
		return err
	}

	entry := makeDirent(name, childIno)
	buf := make([]byte, BlockSize)

	// Scan existing direct blocks for a reusable (tombstone or never-used)
	// slot.
	for bi := 0; bi < DirectPointers; bi++ {
		if dirInode.DirectBlocks[bi] == UnusedBlock {
			break
		}
		if err := d.fs.readDataBlock(dirInode.DirectBlocks[bi], buf); err != nil {
			return err
		}
		for slot := 0; slot < entriesPerBlock; slot++ {
			if direntAt(buf, slot).live() {
				continue
			}
			return d.placeEntry(&dirInode, dirNum, bi, slot, buf, entry)
		}
	}

	// No reusable slot in an existing block: grow if a direct pointer is
	// still free.
	for bi := 0; bi < DirectPointers; bi++ {
		if dirInode.DirectBlocks[bi] != UnusedBlock {
			continue
		}
		newBlock, err := d.fs.alloc.AllocDataBlock()
		if err != nil {
			return ErrNoSpace
		}
		zero := make([]byte, BlockSize)
		if err := d.fs.writeDataBlock(newBlock, zero); err != nil {
			d.fs.alloc.FreeDataBlock(newBlock)
			return err
		}
		dirInode.DirectBlocks[bi] = newBlock
		return d.placeEntry(&dirInode, dirNum, bi, 0, zero, entry)
	}

	return ErrDirectoryFull
}

// placeEntry writes entry into block bi (already loaded into buf) at slot,
// grows the directory's size by one entry (whether the slot is a reused
// tombstone or a never-used slot, so size/entry stays equal to the live
// entry count), and persists both the data block and the directory inode.
func (d *directory) placeEntry(dirInode *Inode, dirNum uint32, bi, slot int, buf []byte, entry dirent) error {
	putDirentAt(buf, slot, entry)
	if err := d.fs.writeDataBlock(dirInode.DirectBlocks[bi], buf); err != nil {
		return err
	}

	dirInode.Size += direntSize
	dirInode.ModificationTime = nowSeconds()
	return d.fs.writeInode(dirNum, *dirInode)
}

// Remove tombstones the entry named name in the directory inode numbered
// dirNum. It fails silently (returns nil) if the entry does not exist, per
// spec.md §4.4 — callers must check existence first.
func (d *directory) Remove(dirNum uint32, name string) error {
	dirInode, err := d.fs.readInode(dirNum)
	if err != nil {
		return err
	}

	buf := make([]byte, BlockSize)
	total := liveEntryCount(dirInode)
	seen := 0

	for bi := 0; bi < DirectPointers; bi++ {
		if seen >= total || dirInode.DirectBlocks[bi] == UnusedBlock {
			break
		}
		if err := d.fs.readDataBlock(dirInode.DirectBlocks[bi], buf); err != nil {
			return err
		}
		for slot := 0; slot < entriesPerBlock; slot++ {
			if seen >= total {
				break
			}
			de := direntAt(buf, slot)
			if !de.live() {
				continue
			}
			seen++
			if de.nameString() != name {
				continue
			}

			var blank dirent
			putDirentAt(buf, slot, blank)
			if err := d.fs.writeDataBlock(dirInode.DirectBlocks[bi], buf); err != nil {
				return err
			}
			dirInode.Size -= direntSize
			dirInode.ModificationTime = nowSeconds()
			return d.fs.writeInode(dirNum, dirInode)
		}
	}
	return nil
}
