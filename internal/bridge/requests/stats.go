package requests

import (
	"sort"
	"sync"
	"time"

	"github.com/gatelink/gatelink/internal/bridge"
)

// OperationStats is one operation's running tally.
type OperationStats struct {
	Operation   string    `json:"operation"`
	Successes   int64     `json:"successes"`
	Failures    int64     `json:"failures"`
	LastError   string    `json:"last_error,omitempty"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}

type statsBook struct {
	mu  sync.Mutex
	ops map[string]*OperationStats
}

func newStatsBook() *statsBook {
	return &statsBook{ops: make(map[string]*OperationStats)}
}

func (b *statsBook) success(operation string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(operation).Successes++
}

func (b *statsBook) failure(verdict *bridge.ClassifiedError) {
	if verdict == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.entry(verdict.Operation)
	s.Failures++
	s.LastError = verdict.Error()
	s.LastFailure = time.Now()
}

// snapshot copies the tallies, sorted by operation name for stable output.
func (b *statsBook) snapshot() []OperationStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]OperationStats, 0, len(b.ops))
	for _, s := range b.ops {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// entry returns the stats for an operation, creating it. Caller holds the
// lock.
func (b *statsBook) entry(operation string) *OperationStats {
	if s, ok := b.ops[operation]; ok {
		return s
	}
	s := &OperationStats{Operation: operation}
	b.ops[operation] = s
	return s
}
