package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/cash-change/internal/calculator"
)

// DefaultHistorySize is the number of transactions kept when no size is configured.
const DefaultHistorySize = 100

var (
	// ErrInvalidHistorySize indicates a negative history capacity.
	ErrInvalidHistorySize = errors.New("history size must be a non-negative integer")
)

// Transaction records a single change calculation.
type Transaction struct {
	ID           string               `json:"id"`
	TotalPrice   int64                `json:"totalPrice"`
	CashInserted int64                `json:"cashInserted"`
	Status       calculator.Status    `json:"status"`
	Change       calculator.Breakdown `json:"change"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// History keeps recently calculated transactions.
type History interface {
	Add(tx Transaction) error
	List(limit int) ([]Transaction, error)
	Len() int
}

// MemoryHistory is a fixed-capacity ring of transactions guarded by a RWMutex.
// Once full, the oldest transaction is overwritten.
type MemoryHistory struct {
	mu       sync.RWMutex
	entries  []Transaction
	next     int
	size     int
	capacity int
}

// NewMemoryHistory creates a history holding at most capacity transactions.
// A capacity of zero accepts writes but keeps nothing.
func NewMemoryHistory(capacity int) (*MemoryHistory, error) {
	if capacity < 0 {
		return nil, ErrInvalidHistorySize
	}
	return &MemoryHistory{
		entries:  make([]Transaction, capacity),
		capacity: capacity,
	}, nil
}

// Add stores a copy of tx, evicting the oldest entry when full.
func (h *MemoryHistory) Add(tx Transaction) error {
	if h.capacity == 0 {
		return nil
	}
	tx.Change = cloneBreakdown(tx.Change)

	h.mu.Lock()
	h.entries[h.next] = tx
	h.next = (h.next + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
	h.mu.Unlock()

	return nil
}

// List returns up to limit transactions, newest first. A limit <= 0 returns everything held.
func (h *MemoryHistory) List(limit int) ([]Transaction, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Transaction, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + h.capacity) % h.capacity
		tx := h.entries[idx]
		tx.Change = cloneBreakdown(tx.Change)
		out = append(out, tx)
	}
	return out, nil
}

// Len reports how many transactions are currently held.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func cloneBreakdown(src calculator.Breakdown) calculator.Breakdown {
	if len(src) == 0 {
		return calculator.Breakdown{}
	}
	out := make(calculator.Breakdown, len(src))
	copy(out, src)
	return out
}
