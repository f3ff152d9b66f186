package vfs

import "testing"

func TestDirentMarshalRoundtrip(t *testing.T) {
	d := makeDirent("myfile.txt", 42)
	buf := make([]byte, direntSize)
	d.marshal(buf)

	got := unmarshalDirent(buf)
	if got.nameString() != "myfile.txt" || got.InodeNumber != 42 {
		t.Fatalf("unmarshal(marshal(d)) = %+v, want name=myfile.txt inode=42", got)
	}
	if !got.live() {
		t.Fatalf("entry with a non-empty name should be live")
	}
}

func TestDirentLongNameTruncated(t *testing.T) {
	name := make([]byte, MaxFilenameLen+50)
	for i := range name {
		name[i] = 'a'
	}
	d := makeDirent(string(name), 1)
	if len(d.nameString()) != MaxFilenameLen {
		t.Fatalf("makeDirent did not truncate to MaxFilenameLen: got length %d", len(d.nameString()))
	}
}

func TestDirentTombstoneIsNotLive(t *testing.T) {
	var d dirent
	if d.live() {
		t.Fatalf("zero-value dirent (all-NUL name) should not be live")
	}
}

func TestDirentAtBlockPacking(t *testing.T) {
	block := make([]byte, BlockSize)
	putDirentAt(block, 0, makeDirent("a", 1))
	putDirentAt(block, 1, makeDirent("b", 2))

	if direntAt(block, 0).nameString() != "a" {
		t.Fatalf("slot 0 did not round-trip")
	}
	if direntAt(block, 1).nameString() != "b" {
		t.Fatalf("slot 1 did not round-trip")
	}
	if direntAt(block, 2).live() {
		t.Fatalf("untouched slot 2 should not be live")
	}
}
