// Package vfs implements the on-disk layout and mutation algorithms of a
// single-image, block-structured virtual filesystem: a superblock, two
// bitmaps, an inode table, and a data region, all addressed through
// pkg/vblock. It exposes the filesystem operations (mkfs, mkdir, rmdir, ls,
// cp-in, cp-out, rm, ln, append, truncate, df, cd, pwd) that a command shell
// composes; the shell itself lives outside this package.
package vfs

import (
	"github.com/google/uuid"
	"github.com/vorteil/vfsdisk/pkg/vblock"
)

const (
	// BlockSize is the fixed size of every block on disk, in bytes.
	BlockSize = vblock.Size

	// MaxInodes is the total number of inodes the inode bitmap can track.
	MaxInodes = 512

	// MaxDataBlocks is the largest number of data blocks the data bitmap can
	// track, irrespective of how large the backing file is.
	MaxDataBlocks = 8192

	// MaxFilenameLen is the longest name a directory entry can hold,
	// excluding the trailing NUL.
	MaxFilenameLen = 255

	// DirectPointers is the number of direct block pointers an inode holds.
	// There are no indirect or double-indirect pointers: file size is capped
	// at DirectPointers * BlockSize.
	DirectPointers = 12

	// RootInodeNum is the inode number of the filesystem root directory.
	RootInodeNum = 0

	// MaxPathDepth bounds how many directory levels Pwd will walk before
	// giving up and reporting filesystem inconsistency.
	MaxPathDepth = 64

	// UnusedBlock is the sentinel stored in a direct pointer slot that holds
	// no block.
	UnusedBlock = 0xFFFFFFFF

	// reserved block indices
	superblockBlock  = 0
	inodeBitmapBlock = 1
	dataBitmapBlock  = 2
	inodeTableStart  = 3

	// MaxFileSize is the largest size, in bytes, a file's direct pointers can
	// address.
	MaxFileSize = DirectPointers * BlockSize
)

// Superblock is the first block of the backing store: filesystem geometry
// and bookkeeping needed to locate every other structure.
type Superblock struct {
	TotalSize            uint32
	NumInodes            uint32
	NumDataBlocks        uint32
	InodeBitmapBlock     uint32
	DataBitmapBlock      uint32
	InodeTableStartBlock uint32
	DataBlocksStartBlock uint32

	// VolumeID is a cosmetic identifier; see SPEC_FULL.md §3. No operation's
	// behavior depends on it, but it lives in block 0, so Mkfs derives it
	// deterministically from the disk size rather than at random, to keep
	// same-size disks byte-identical.
	VolumeID uuid.UUID
}

// inodeTableBlocks returns how many blocks the inode table occupies for
// MaxInodes fixed-size inodes.
func inodeTableBlocks() uint32 {
	total := uint32(MaxInodes) * uint32(inodeOnDiskSize)
	return (total + BlockSize - 1) / BlockSize
}

// geometry computes the full on-disk layout for a backing store of the given
// size in bytes, exactly per SPEC_FULL.md/spec.md §3.
func geometry(sizeBytes int64) Superblock {
	numInodeBlocks := inodeTableBlocks()
	dataStart := uint32(inodeTableStart) + numInodeBlocks

	totalBlocks := uint32(sizeBytes / BlockSize)

	var numDataBlocks uint32
	if totalBlocks > dataStart {
		numDataBlocks = totalBlocks - dataStart
	}
	if numDataBlocks > MaxDataBlocks {
		numDataBlocks = MaxDataBlocks
	}

	return Superblock{
		TotalSize:            uint32(sizeBytes),
		NumInodes:            MaxInodes,
		NumDataBlocks:        numDataBlocks,
		InodeBitmapBlock:     inodeBitmapBlock,
		DataBitmapBlock:      dataBitmapBlock,
		InodeTableStartBlock: inodeTableStart,
		DataBlocksStartBlock: dataStart,
	}
}
