package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultPoolCap bounds the number of idle entities kept for reuse.
const DefaultPoolCap = 64

// Pool recycles CallEntity values to keep steady-state call traffic from
// allocating. The pool is bounded: Recycle on a full pool drops the entity
// for the garbage collector instead of growing.
type Pool struct {
	mu   sync.Mutex
	free []*CallEntity
	cap  int

	obtained int64
	created  int64
	recycled int64
	dropped  int64
}

// NewPool creates a pool holding at most cap idle entities. cap <= 0 selects
// DefaultPoolCap.
func NewPool(cap int) *Pool {
	if cap <= 0 {
		cap = DefaultPoolCap
	}
	return &Pool{
		free: make([]*CallEntity, 0, cap),
		cap:  cap,
	}
}

// Obtain returns a reset entity with a fresh ID and the given request set.
func (p *Pool) Obtain(operation, payload string) *CallEntity {
	atomic.AddInt64(&p.obtained, 1)

	p.mu.Lock()
	var e *CallEntity
	if n := len(p.free); n > 0 {
		e = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if e == nil {
		atomic.AddInt64(&p.created, 1)
		return NewCallEntity(operation, payload)
	}

	e.ID = uuid.New().String()
	return e.SetRequest(operation, payload)
}

// Recycle resets the entity and returns it to the pool. Entities beyond the
// cap are dropped. Recycling nil is a no-op.
func (p *Pool) Recycle(e *CallEntity) {
	if e == nil {
		return
	}
	e.reset()

	p.mu.Lock()
	if len(p.free) >= p.cap {
		p.mu.Unlock()
		atomic.AddInt64(&p.dropped, 1)
		return
	}
	p.free = append(p.free, e)
	p.mu.Unlock()
	atomic.AddInt64(&p.recycled, 1)
}

// WarmUp pre-populates the pool with up to n idle entities.
func (p *Pool) WarmUp(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.free) < p.cap && n > 0 {
		p.free = append(p.free, &CallEntity{})
		n--
	}
}

// Clear discards all idle entities. In-flight entities are unaffected.
func (p *Pool) Clear() {
	p.mu.Lock()
	p.free = p.free[:0]
	p.mu.Unlock()
}

// Idle reports the number of entities currently waiting for reuse.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// PoolStats is a point-in-time snapshot of pool counters.
type PoolStats struct {
	Idle     int   `json:"idle"`
	Cap      int   `json:"cap"`
	Obtained int64 `json:"obtained"`
	Created  int64 `json:"created"`
	Recycled int64 `json:"recycled"`
	Dropped  int64 `json:"dropped"`
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Idle:     p.Idle(),
		Cap:      p.cap,
		Obtained: atomic.LoadInt64(&p.obtained),
		Created:  atomic.LoadInt64(&p.created),
		Recycled: atomic.LoadInt64(&p.recycled),
		Dropped:  atomic.LoadInt64(&p.dropped),
	}
}

// String renders the counters with a reuse rate, for status output.
func (s PoolStats) String() string {
	reuse := 0.0
	if s.Obtained > 0 {
		reuse = float64(s.Obtained-s.Created) / float64(s.Obtained) * 100
	}
	return fmt.Sprintf("idle=%d/%d obtained=%d created=%d recycled=%d dropped=%d reuse=%.1f%%",
		s.Idle, s.Cap, s.Obtained, s.Created, s.Recycled, s.Dropped, reuse)
}
