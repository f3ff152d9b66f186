package vfs

import "errors"

// Sentinel errors, one per error kind in spec.md §7. IOError is the only
// kind a caller should treat as fatal; every other kind is a normal
// diagnostic and the command loop should continue. Following the teacher's
// convention in pkg/vdecompiler/io.go (ErrRead/ErrSeek/ErrWrite declared as
// package-level errors.New values, checked with errors.Is).
var (
	// ErrNotFound means a path or path component could not be resolved.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a name collision on create or link.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotADirectory means an operation required a directory and got a file.
	ErrNotADirectory = errors.New("not a directory")
	// ErrNotAFile means an operation required a file and got a directory.
	ErrNotAFile = errors.New("not a file")
	// ErrDirectoryNotEmpty means rmdir was asked to remove a directory with
	// more than "." and ".." in it.
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	// ErrDirectoryFull means every direct block of a directory is allocated
	// and every slot in each is live.
	ErrDirectoryFull = errors.New("directory full")
	// ErrFileTooLarge means an import or append would exceed MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNoSpace means a bitmap (inode or data block) is exhausted.
	ErrNoSpace = errors.New("no space left on device")
	// ErrInvalidArgument means a non-positive count or an empty path was given.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCannotRemoveRoot means rmdir was asked to remove the root directory.
	ErrCannotRemoveRoot = errors.New("cannot remove root directory")

	// errPwdTooDeep means pwd's ".." walk exceeded MaxPathDepth, which only
	// happens if the tree is malformed (a cycle not passing through root).
	errPwdTooDeep = errors.New("path exceeds maximum depth")
	// errFSInconsistent means a directory's ".." entry, or its parent's
	// matching name entry, could not be found — a corrupt on-disk structure.
	errFSInconsistent = errors.New("filesystem structure inconsistent")
)

// IOError wraps a fatal backing-store I/O failure. Unlike the other sentinel
// kinds, an IOError should terminate the process: see spec.md §7.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "I/O error during " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func newIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}
