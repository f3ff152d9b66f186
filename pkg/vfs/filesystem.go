package vfs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vorteil/vfsdisk/pkg/vblock"
)

// blockDevice is the block-addressable byte store pkg/vfs is built on. The
// concrete implementation (pkg/vblock.Device) lives outside this package;
// this alias keeps the rest of the package's signatures short.
type blockDevice = vblock.Device

// FileSystem is a handle bound to one mounted backing store: the superblock,
// both bitmaps, the inode store, and the process-local current working
// directory. Per spec.md §9's design note, all of this package's mutable
// state is packaged into this handle rather than held in package globals.
type FileSystem struct {
	dev   *blockDevice
	sb    Superblock
	alloc *allocator
	inode *inodeStore
	dir   *directory

	cwd uint32
}

// Mkfs creates and formats a fresh backing store of sizeBytes at path,
// writing the superblock, both bitmaps, and the root directory, per
// spec.md §4.6.
func Mkfs(path string, sizeBytes int64) error {
	if sizeBytes <= 0 {
		return ErrInvalidArgument
	}

	dev, err := vblock.Create(path, sizeBytes)
	if err != nil {
		return newIOError("mkfs", err)
	}
	defer dev.Close()

	sb := geometry(sizeBytes)
	// Derived from sizeBytes alone, not uuid.NewRandom: spec.md's idempotence
	// invariant requires two mkfs runs of the same size to produce
	// byte-identical disks (modulo only the root inode's timestamps), and
	// VolumeID is part of block 0. A random per-run ID would violate that.
	sb.VolumeID = uuid.NewMD5(uuid.NameSpaceOID, []byte(fmt.Sprintf("vfsdisk-volume:%d", sizeBytes)))

	if err := dev.WriteBlock(superblockBlock, sb.marshal()); err != nil {
		return newIOError("mkfs", err)
	}

	inodes := newBitmap(sb.NumInodes)
	inodes.Set(RootInodeNum)
	if err := dev.WriteBlock(sb.InodeBitmapBlock, inodes.toBlock()); err != nil {
		return newIOError("mkfs", err)
	}

	data := newBitmap(sb.NumDataBlocks)
	data.Set(0)
	if err := dev.WriteBlock(sb.DataBitmapBlock, data.toBlock()); err != nil {
		return newIOError("mkfs", err)
	}

	now := nowSeconds()
	root := Inode{
		Mode:             ModeDir,
		Size:             2 * direntSize,
		LinkCount:        2,
		CreationTime:     now,
		ModificationTime: now,
		DirectBlocks:     newEmptyDirectBlocks(),
	}
	root.DirectBlocks[0] = 0

	istore := &inodeStore{dev: dev, sb: &sb}
	if err := istore.Write(RootInodeNum, root); err != nil {
		return newIOError("mkfs", err)
	}

	block := make([]byte, BlockSize)
	putDirentAt(block, 0, makeDirent(".", RootInodeNum))
	putDirentAt(block, 1, makeDirent("..", RootInodeNum))
	if err := dev.WriteBlock(sb.DataBlocksStartBlock, block); err != nil {
		return newIOError("mkfs", err)
	}

	return nil
}

// Mount opens an already-formatted backing store, loading the superblock and
// both bitmaps into memory, and positions the CWD at root.
func Mount(path string) (*FileSystem, error) {
	dev, err := vblock.Open(path)
	if err != nil {
		return nil, newIOError("mount", err)
	}

	buf := make([]byte, BlockSize)
	if err := dev.ReadBlock(superblockBlock, buf); err != nil {
		return nil, newIOError("mount", err)
	}
	sb := unmarshalSuperblock(buf)

	alloc, err := loadAllocator(dev, &sb)
	if err != nil {
		return nil, newIOError("mount", err)
	}

	fs := &FileSystem{
		dev:   dev,
		sb:    sb,
		alloc: alloc,
		inode: &inodeStore{dev: dev, sb: &sb},
		cwd:   RootInodeNum,
	}
	fs.dir = &directory{fs: fs}
	return fs, nil
}

// Close closes the underlying backing store.
func (fs *FileSystem) Close() error {
	return fs.dev.Close()
}

// dataBlock translates a data-region-relative block index (as stored in an
// inode's direct pointers) into an absolute block number.
func (fs *FileSystem) dataBlock(relative uint32) uint32 {
	return fs.sb.DataBlocksStartBlock + relative
}

func (fs *FileSystem) readInode(n uint32) (Inode, error) {
	ino, err := fs.inode.Read(n)
	if err != nil {
		return Inode{}, newIOError("read inode", err)
	}
	return ino, nil
}

func (fs *FileSystem) writeInode(n uint32, ino Inode) error {
	if err := fs.inode.Write(n, ino); err != nil {
		return newIOError("write inode", err)
	}
	return nil
}

func (fs *FileSystem) readDataBlock(relative uint32, out []byte) error {
	if err := fs.dev.ReadBlock(fs.dataBlock(relative), out); err != nil {
		return newIOError("read data block", err)
	}
	return nil
}

func (fs *FileSystem) writeDataBlock(relative uint32, in []byte) error {
	if err := fs.dev.WriteBlock(fs.dataBlock(relative), in); err != nil {
		return newIOError("write data block", err)
	}
	return nil
}

// sync flushes both bitmaps to disk. Every mutating operation calls this
// before returning success, per spec.md §4.6.
func (fs *FileSystem) sync() error {
	if err := fs.alloc.Sync(); err != nil {
		return newIOError("sync bitmaps", err)
	}
	return nil
}

func (fs *FileSystem) checkName(name string) error {
	if name == "" {
		return ErrInvalidArgument
	}
	return nil
}

// splitPath splits path into a parent path and a leaf name, the way
// directory-name/basename extraction does in spec.md §4.6.
func splitPath(path string) (parent, leaf string) {
	i := len(path) - 1
	for i >= 0 && path[i] == '/' {
		i--
	}
	trimmed := path[:i+1]
	j := i
	for j >= 0 && trimmed[j] != '/' {
		j--
	}
	if j < 0 {
		return ".", trimmed
	}
	leaf = trimmed[j+1:]
	if j == 0 {
		return "/", leaf
	}
	return trimmed[:j], leaf
}
