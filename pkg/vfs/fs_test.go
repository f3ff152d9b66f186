package vfs

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, Mkfs(path, 1<<20))
	fs, err := Mount(path)
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func TestMkfsProducesValidRoot(t *testing.T) {
	fs := newTestFS(t)

	ino, err := fs.readInode(RootInodeNum)
	require.NoError(t, err)
	assert.Equal(t, ModeDir, ino.Mode)
	assert.EqualValues(t, 2*direntSize, ino.Size)
	assert.EqualValues(t, 2, ino.LinkCount)

	res, err := fs.Ls("/")
	require.NoError(t, err)
	assert.True(t, res.IsDir)
	assert.Len(t, res.Entries, 2, "a fresh root directory has exactly . and .. as live entries")
}

func TestMkdirAndLookup(t *testing.T) {
	fs := newTestFS(t)

	require.NoError(t, fs.Mkdir("/a"))
	require.ErrorIs(t, fs.Mkdir("/a"), ErrAlreadyExists)

	num, err := fs.resolve("/a", fs.cwd)
	require.NoError(t, err)
	ino, err := fs.readInode(num)
	require.NoError(t, err)
	assert.Equal(t, ModeDir, ino.Mode)

	root, err := fs.readInode(RootInodeNum)
	require.NoError(t, err)
	assert.EqualValues(t, 3, root.LinkCount, "mkdir increments the parent's link count")
}

func TestMkdirNestedAndRmdir(t *testing.T) {
	fs := newTestFS(t)

	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/a/b"))

	num, err := fs.resolve("/a/b", fs.cwd)
	require.NoError(t, err)
	assert.NotZero(t, num)

	require.ErrorIs(t, fs.Rmdir("/a"), ErrDirectoryNotEmpty)
	require.NoError(t, fs.Rmdir("/a/b"))
	require.NoError(t, fs.Rmdir("/a"))

	_, err = fs.resolve("/a", fs.cwd)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRmdirCannotRemoveRoot(t *testing.T) {
	fs := newTestFS(t)
	assert.ErrorIs(t, fs.Rmdir("/"), ErrCannotRemoveRoot)
}

func TestRmdirFreesAllDirectBlocks(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Mkdir("/a"))

	num, err := fs.resolve("/a", fs.cwd)
	require.NoError(t, err)
	ino, err := fs.readInode(num)
	require.NoError(t, err)
	ino.DirectBlocks[1] = 5
	ino.DirectBlocks[2] = 6
	require.NoError(t, fs.writeInode(num, ino))
	fs.alloc.data.Set(5)
	fs.alloc.data.Set(6)

	usedBefore := fs.alloc.UsedDataBlocks()
	require.NoError(t, fs.Rmdir("/a"))
	usedAfter := fs.alloc.UsedDataBlocks()

	assert.Equal(t, usedBefore-3, usedAfter, "rmdir must free every non-UNUSED direct block, not just index 0")
}

func TestCpInAndCpOutRoundtrip(t *testing.T) {
	fs := newTestFS(t)

	content := bytes.Repeat([]byte("hello world "), 500) // > one block
	require.NoError(t, fs.CpIn(bytes.NewReader(content), int64(len(content)), "/greeting.txt"))

	var out bytes.Buffer
	require.NoError(t, fs.CpOut("/greeting.txt", &out))
	assert.Equal(t, content, out.Bytes())
}

func TestCpInRejectsOversizedFile(t *testing.T) {
	fs := newTestFS(t)
	oversized := bytes.Repeat([]byte{0}, MaxFileSize+1)
	err := fs.CpIn(bytes.NewReader(oversized), int64(len(oversized)), "/big.bin")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCpInRollsBackOnFailure(t *testing.T) {
	fs := newTestFS(t)

	usedInodesBefore := fs.alloc.UsedInodes()
	usedDataBefore := fs.alloc.UsedDataBlocks()

	content := bytes.Repeat([]byte{1}, 3*BlockSize)
	truncatedReader := bytes.NewReader(content[:BlockSize]) // shorter than declared size

	err := fs.CpIn(truncatedReader, int64(len(content)), "/partial.bin")
	assert.Error(t, err)

	assert.Equal(t, usedInodesBefore, fs.alloc.UsedInodes(), "failed cp-in must not leak an inode")
	assert.Equal(t, usedDataBefore, fs.alloc.UsedDataBlocks(), "failed cp-in must not leak data blocks")

	_, lookupErr := fs.resolve("/partial.bin", fs.cwd)
	assert.ErrorIs(t, lookupErr, ErrNotFound, "failed cp-in must not leave a directory entry behind")
}

func TestRmUnlinksAndReclaimsOnLastLink(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.CpIn(bytes.NewReader([]byte("x")), 1, "/f.txt"))

	usedInodesBefore := fs.alloc.UsedInodes()
	require.NoError(t, fs.Rm("/f.txt"))
	assert.Equal(t, usedInodesBefore-1, fs.alloc.UsedInodes())

	_, err := fs.resolve("/f.txt", fs.cwd)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRmRefusesDirectories(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Mkdir("/d"))
	assert.ErrorIs(t, fs.Rm("/d"), ErrNotAFile)
}

func TestLnCreatesAdditionalLinkAndSurvivesFirstRm(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.CpIn(bytes.NewReader([]byte("payload")), 7, "/f.txt"))
	require.NoError(t, fs.Ln("/f.txt", "/g.txt"))

	num, err := fs.resolve("/f.txt", fs.cwd)
	require.NoError(t, err)
	ino, err := fs.readInode(num)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ino.LinkCount)

	require.NoError(t, fs.Rm("/f.txt"))

	var out bytes.Buffer
	require.NoError(t, fs.CpOut("/g.txt", &out))
	assert.Equal(t, "payload", out.String())
}

func TestLnRefusesDirectoryTargets(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Mkdir("/d"))
	assert.ErrorIs(t, fs.Ln("/d", "/d2"), ErrNotAFile)
}

func TestAppendGrowsFileWithZeroes(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.CpIn(bytes.NewReader([]byte("abc")), 3, "/f.txt"))

	n, err := fs.Append("/f.txt", zeroReader{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	var out bytes.Buffer
	require.NoError(t, fs.CpOut("/f.txt", &out))
	assert.Equal(t, append([]byte("abc"), make([]byte, 10)...), out.Bytes())
}

func TestAppendRefusesWhenResultWouldExceedMaxFileSize(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.CpIn(bytes.NewReader(make([]byte, MaxFileSize-5)), MaxFileSize-5, "/f.txt"))

	usedBefore := fs.alloc.UsedDataBlocks()

	n, err := fs.Append("/f.txt", zeroReader{}, 100)
	assert.ErrorIs(t, err, ErrFileTooLarge, "size+n > MaxFileSize must refuse outright, not clamp and partially succeed")
	assert.Equal(t, 0, n, "a refused append must write nothing")

	assert.Equal(t, usedBefore, fs.alloc.UsedDataBlocks(), "a refused append must not allocate any block")

	ino, err := fs.readInode(mustResolve(t, fs, "/f.txt"))
	require.NoError(t, err)
	assert.EqualValues(t, MaxFileSize-5, ino.Size, "a refused append must leave the file's size untouched")
}

// TestAppendPartialWriteOnNoSpace covers the other half of myfs.c's do_append:
// once the size+n precondition passes, running out of free data blocks
// mid-loop reports ErrNoSpace alongside the count of bytes successfully
// written, rather than silently succeeding with a short append.
func TestAppendPartialWriteOnNoSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.img")
	sb := geometry(1 << 20)
	// Root's own block plus exactly 2 spare data blocks.
	smallSize := int64(sb.DataBlocksStartBlock+3) * BlockSize
	require.NoError(t, Mkfs(path, smallSize))

	fs, err := Mount(path)
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.CpIn(bytes.NewReader([]byte("x")), 1, "/f.txt"))

	// Only 1 data block remains free after cp-in; ask to append enough to
	// need 2 more beyond the tail fill of the existing block.
	n, err := fs.Append("/f.txt", zeroReader{}, 2*BlockSize+10)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, 2*BlockSize-1, n, "append must report exactly the bytes written before allocation failed")

	ino, err := fs.readInode(mustResolve(t, fs, "/f.txt"))
	require.NoError(t, err)
	assert.EqualValues(t, 1+2*BlockSize-1, ino.Size)
}

func TestTruncateShrinksByNBytesAndFreesBlocks(t *testing.T) {
	fs := newTestFS(t)
	content := bytes.Repeat([]byte{9}, 8192)
	require.NoError(t, fs.CpIn(bytes.NewReader(content), int64(len(content)), "/big"))

	usedBefore := fs.alloc.UsedDataBlocks()
	require.NoError(t, fs.Truncate("/big", 4097))
	usedAfter := fs.alloc.UsedDataBlocks()

	ino, err := fs.readInode(mustResolve(t, fs, "/big"))
	require.NoError(t, err)
	assert.EqualValues(t, 4095, ino.Size, "truncate shrinks BY n bytes, not TO n bytes")
	assert.Equal(t, usedBefore-1, usedAfter, "shrinking from 2 blocks to 1 must free exactly one data block")

	usedBefore = fs.alloc.UsedDataBlocks()
	require.NoError(t, fs.Truncate("/big", 10000))
	usedAfter = fs.alloc.UsedDataBlocks()

	ino, err = fs.readInode(mustResolve(t, fs, "/big"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, ino.Size, "truncating by more than the current size clamps to zero")
	assert.Equal(t, usedBefore-1, usedAfter)
}

func mustResolve(t *testing.T, fs *FileSystem, path string) uint32 {
	t.Helper()
	num, err := fs.resolve(path, fs.cwd)
	require.NoError(t, err)
	return num
}

func TestDfReportsUsage(t *testing.T) {
	fs := newTestFS(t)
	before := fs.Df()
	require.NoError(t, fs.Mkdir("/a"))
	after := fs.Df()

	assert.Equal(t, before.UsedInodes+1, after.UsedInodes)
	assert.Equal(t, before.UsedDataBlocks+1, after.UsedDataBlocks)
}

func TestCdAndPwd(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/a/b"))

	require.NoError(t, fs.Cd("/a/b"))
	p, err := fs.Pwd()
	require.NoError(t, err)
	assert.Equal(t, "/a/b", p)

	require.NoError(t, fs.Cd(".."))
	p, err = fs.Pwd()
	require.NoError(t, err)
	assert.Equal(t, "/a", p)
}

func TestCdRefusesFiles(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.CpIn(bytes.NewReader([]byte("x")), 1, "/f.txt"))
	assert.ErrorIs(t, fs.Cd("/f.txt"), ErrNotADirectory)
}

// zeroReader is an infinite zero-byte reader, mirroring pkg/vio.Zeroes
// without importing pkg/vio into pkg/vfs's test-only code path.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
