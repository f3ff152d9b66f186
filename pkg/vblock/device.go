// Package vblock implements the block-addressable backing store that sits
// underneath the virtual filesystem: fixed-size block reads and writes over
// a regular host file, positioned by byte offset.
package vblock

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Size is the fixed block size of the filesystem, in bytes.
const Size = 4096

// Device is a block-addressable byte store backed by a host file. All
// positioning is done by block index * Size; the caller never deals in raw
// byte offsets.
type Device struct {
	f *os.File
}

// Open opens an existing backing file for read/write block access.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening backing store: %w", err)
	}
	return &Device{f: f}, nil
}

// Create creates (or truncates) a backing file of the given size in bytes
// and returns a Device over it.
func Create(path string, sizeBytes int64) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating backing store: %w", err)
	}
	if err := f.Truncate(sizeBytes); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing backing store: %w", err)
	}
	return &Device{f: f}, nil
}

// Close closes the backing file.
func (d *Device) Close() error {
	return d.f.Close()
}

// ReadBlock reads block n into out, which must be exactly Size bytes long. A
// short read at end-of-stream is tolerated and the remainder of out is
// zero-filled; any other I/O error is returned (and is fatal to the caller).
func (d *Device) ReadBlock(n uint32, out []byte) error {
	if len(out) != Size {
		return fmt.Errorf("vblock: ReadBlock buffer must be %d bytes", Size)
	}
	off := int64(n) * Size
	read, err := d.f.ReadAt(out, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("vblock: read block %d: %w", n, err)
	}
	for i := read; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

// WriteBlock writes exactly Size bytes of in to block n.
func (d *Device) WriteBlock(n uint32, in []byte) error {
	if len(in) != Size {
		return fmt.Errorf("vblock: WriteBlock buffer must be %d bytes", Size)
	}
	off := int64(n) * Size
	if _, err := d.f.WriteAt(in, off); err != nil {
		return fmt.Errorf("vblock: write block %d: %w", n, err)
	}
	return nil
}

// Sync flushes the backing file to its underlying storage.
func (d *Device) Sync() error {
	return d.f.Sync()
}
