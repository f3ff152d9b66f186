package vfs

// DfStats reports utilization of the inode table and the data-block region,
// per myfs.c's do_df.
type DfStats struct {
	TotalInodes uint32
	UsedInodes  uint32
	FreeInodes  uint32

	TotalDataBlocks uint32
	UsedDataBlocks  uint32
	FreeDataBlocks  uint32

	BlockSize       uint32
	TotalBytes      uint64
	UsedBytes       uint64
	FreeBytes       uint64
}

// Df reports current space utilization of the mounted backing store.
func (fs *FileSystem) Df() DfStats {
	usedInodes := uint32(fs.alloc.UsedInodes())
	usedData := uint32(fs.alloc.UsedDataBlocks())

	return DfStats{
		TotalInodes: fs.sb.NumInodes,
		UsedInodes:  usedInodes,
		FreeInodes:  fs.sb.NumInodes - usedInodes,

		TotalDataBlocks: fs.sb.NumDataBlocks,
		UsedDataBlocks:  usedData,
		FreeDataBlocks:  fs.sb.NumDataBlocks - usedData,

		BlockSize:  BlockSize,
		TotalBytes: uint64(fs.sb.NumDataBlocks) * uint64(BlockSize),
		UsedBytes:  uint64(usedData) * uint64(BlockSize),
		FreeBytes:  uint64(fs.sb.NumDataBlocks-usedData) * uint64(BlockSize),
	}
}
