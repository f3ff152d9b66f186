package vfs

import "testing"

func TestBitmapFirstClear(t *testing.T) {
	b := newBitmap(10)

	n, ok := b.FirstClear()
	if !ok || n != 0 {
		t.Fatalf("FirstClear on empty bitmap returned (%d, %v), want (0, true)", n, ok)
	}

	b.Set(0)
	b.Set(1)
	n, ok = b.FirstClear()
	if !ok || n != 2 {
		t.Fatalf("FirstClear after setting 0,1 returned (%d, %v), want (2, true)", n, ok)
	}

	for i := uint32(0); i < 10; i++ {
		b.Set(i)
	}
	if _, ok := b.FirstClear(); ok {
		t.Fatalf("FirstClear on full bitmap should return false")
	}
}

func TestBitmapSetClearRoundtrip(t *testing.T) {
	b := newBitmap(64)
	b.Set(5)
	b.Set(63)
	if !b.Test(5) || !b.Test(63) {
		t.Fatalf("Set bits not reflected by Test")
	}
	b.Clear(5)
	if b.Test(5) {
		t.Fatalf("Clear did not clear bit 5")
	}
	if b.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", b.Count())
	}
}

func TestBitmapToBlockAndBack(t *testing.T) {
	b := newBitmap(20)
	b.Set(3)
	b.Set(17)

	block := b.toBlock()
	if len(block) != BlockSize {
		t.Fatalf("toBlock() length = %d, want %d", len(block), BlockSize)
	}

	b2 := bitmapFromBlock(20, block)
	if !b2.Test(3) || !b2.Test(17) {
		t.Fatalf("bitmapFromBlock did not preserve set bits")
	}
	if b2.Test(4) {
		t.Fatalf("bitmapFromBlock introduced a spurious set bit")
	}
}
