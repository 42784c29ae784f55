// Package naming owns the monotonic sequence used to name generated files.
// A single, explicitly-owned sequence (rather than ad hoc per-call
// randomness) guarantees no two names collide within one process lifetime,
// and lets tests supply a deterministic clock.
package naming

import (
	"fmt"
	"sync"
	"time"
)

// Sequence issues unique filename suffixes of the form "<unix ts>_<n>".
// Safe for use from overlapping requests across independent documents.
type Sequence struct {
	mu  sync.Mutex
	n   uint64
	now func() time.Time
}

// NewSequence creates a sequence. A nil clock defaults to time.Now.
func NewSequence(now func() time.Time) *Sequence {
	if now == nil {
		now = time.Now
	}
	return &Sequence{now: now}
}

// NextID returns the next unique suffix. The counter component alone
// guarantees uniqueness; the timestamp keeps names sortable and
// collision-resistant across process restarts.
func (s *Sequence) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%d_%d", s.now().Unix(), s.n)
	s.n++
	return id
}
