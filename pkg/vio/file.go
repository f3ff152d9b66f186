package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"io"
	"os"
	"time"
)

// File represents a file read from the host filesystem, the source side of
// a cp-in operation. Symlinks are not supported (cp-in follows them, like
// a plain os.Open would).
type File interface {

	// Name returns the base name of the file, not a full path.
	Name() string

	// Size returns the size of the file in bytes.
	Size() int64

	// ModTime returns the time the file was most recently modified.
	ModTime() time.Time

	// Read implements io.Reader to retrieve file contents.
	Read(p []byte) (n int, err error)

	// Close implements io.Closer.
	Close() error
}

// Open mimics os.Open but returns an implementation of File carrying the
// file's metadata; cp-in uses its size to plan allocation.
func Open(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, os.ErrInvalid
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return CustomFile(CustomFileArgs{
		Name:       fi.Name(),
		Size:       fi.Size(),
		ModTime:    fi.ModTime(),
		ReadCloser: f,
	}), nil
}

// CustomFileArgs takes all elements that need to be provided to the
// CustomFile function.
type CustomFileArgs struct {
	Name       string
	Size       int64
	ModTime    time.Time
	ReadCloser io.ReadCloser
}

// CustomFile makes it possible to construct a File that implements the File
// interface without necessarily being backed by an actual file on the host
// filesystem.
func CustomFile(args CustomFileArgs) File {
	return &customFile{
		name:    args.Name,
		size:    args.Size,
		modTime: args.ModTime,
		rc:      args.ReadCloser,
	}
}

type customFile struct {
	name    string
	size    int64
	modTime time.Time
	rc      io.ReadCloser
}

func (f *customFile) Name() string {
	return f.name
}

func (f *customFile) Size() int64 {
	return f.size
}

func (f *customFile) ModTime() time.Time {
	return f.modTime
}

func (f *customFile) Read(p []byte) (n int, err error) {
	return f.rc.Read(p)
}

func (f *customFile) Close() error {
	if f.rc != nil {
		return f.rc.Close()
	}
	return nil
}
