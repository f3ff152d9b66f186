package vfs

import (
	"encoding/binary"
)

// superblockOnDiskSize is how many bytes of block 0 the superblock actually
// occupies; the rest of the block is zero-padded.
const superblockOnDiskSize = 4*7 + 16

func (sb *Superblock) marshal() []byte {
	buf := make([]byte, BlockSize)
	o := 0
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[o:], v)
		o += 4
	}
	putU32(sb.TotalSize)
	putU32(sb.NumInodes)
	putU32(sb.NumDataBlocks)
	putU32(sb.InodeBitmapBlock)
	putU32(sb.DataBitmapBlock)
	putU32(sb.InodeTableStartBlock)
	putU32(sb.DataBlocksStartBlock)
	copy(buf[o:o+16], sb.VolumeID[:])
	return buf
}

func unmarshalSuperblock(buf []byte) Superblock {
	var sb Superblock
	o := 0
	getU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(buf[o:])
		o += 4
		return v
	}
	sb.TotalSize = getU32()
	sb.NumInodes = getU32()
	sb.NumDataBlocks = getU32()
	sb.InodeBitmapBlock = getU32()
	sb.DataBitmapBlock = getU32()
	sb.InodeTableStartBlock = getU32()
	sb.DataBlocksStartBlock = getU32()
	copy(sb.VolumeID[:], buf[o:o+16])
	return sb
}
