package booking

import "sync"

// professionalLocks serializes check-then-insert sections per professional
// so two in-process requests cannot interleave between the overlap read and
// the write. The storage-level unique constraint remains the final
// authority for anything this cannot see (other instances, variable
// durations racing an hour slot).
type professionalLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProfessionalLocks() *professionalLocks {
	return &professionalLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *professionalLocks) acquire(professionalID string) func() {
	l.mu.Lock()
	m, ok := l.locks[professionalID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[professionalID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
