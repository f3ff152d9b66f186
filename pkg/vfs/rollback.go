package vfs

// allocScope accumulates compensating frees for allocations made during a
// multi-step operation (mkdir, cp-in, append) so that a partial failure can
// be rolled back atomically, per spec.md §4.6 and the rollback discipline in
// spec.md §9's design notes. Call Abort() on any early exit; call Commit()
// once the operation has fully succeeded, which discards the compensations
// without running them.
type allocScope struct {
	fs        *FileSystem
	compensate []func()
	committed bool
}

func newAllocScope(fs *FileSystem) *allocScope {
	return &allocScope{fs: fs}
}

// TrackInode registers inode n as allocated in this scope.
func (s *allocScope) TrackInode(n uint32) {
	s.compensate = append(s.compensate, func() { s.fs.alloc.FreeInode(n) })
}

// TrackDataBlock registers data block n as allocated in this scope.
func (s *allocScope) TrackDataBlock(n uint32) {
	s.compensate = append(s.compensate, func() { s.fs.alloc.FreeDataBlock(n) })
}

// Commit discards the scope's compensations: the operation succeeded and its
// allocations should stick.
func (s *allocScope) Commit() {
	s.committed = true
}

// Abort runs every compensating free in reverse order, undoing every
// allocation this scope tracked. A no-op if Commit was already called.
func (s *allocScope) Abort() {
	if s.committed {
		return
	}
	for i := len(s.compensate) - 1; i >= 0; i-- {
		s.compensate[i]()
	}
}
