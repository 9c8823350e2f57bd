package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eugenenazirov/cash-change/internal/calculator"
)

func newTx(id string, price int64) Transaction {
	return Transaction{
		ID:           id,
		TotalPrice:   price,
		CashInserted: 10000,
		Status:       calculator.Status{Code: calculator.StatusSuccess},
		Change:       calculator.Breakdown{{Denomination: 1000, Count: 2}},
		CreatedAt:    time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewMemoryHistoryRejectsNegativeSize(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryHistory(-1); !errors.Is(err, ErrInvalidHistorySize) {
		t.Fatalf("expected ErrInvalidHistorySize, got %v", err)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	h, err := NewMemoryHistory(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := h.Add(newTx(fmt.Sprintf("tx-%d", i), int64(i))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := h.List(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}
	for i, want := range []string{"tx-3", "tx-2", "tx-1"} {
		if got[i].ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, got[i].ID)
		}
	}

	limited, err := h.List(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "tx-3" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestAddEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	h, err := NewMemoryHistory(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 5; i++ {
		_ = h.Add(newTx(fmt.Sprintf("tx-%d", i), int64(i)))
	}

	if h.Len() != 2 {
		t.Fatalf("expected 2 transactions, got %d", h.Len())
	}
	got, _ := h.List(0)
	if got[0].ID != "tx-5" || got[1].ID != "tx-4" {
		t.Fatalf("expected newest two transactions, got %+v", got)
	}
}

func TestZeroCapacityKeepsNothing(t *testing.T) {
	t.Parallel()

	h, err := NewMemoryHistory(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Add(newTx("tx-1", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := h.List(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || h.Len() != 0 {
		t.Fatalf("expected empty history, got %+v", got)
	}
}

func TestListReturnsDefensiveCopies(t *testing.T) {
	t.Parallel()

	h, _ := NewMemoryHistory(1)
	_ = h.Add(newTx("tx-1", 1))

	got, _ := h.List(0)
	got[0].Change[0].Count = 999

	again, _ := h.List(0)
	if again[0].Change[0].Count != 2 {
		t.Fatalf("expected defensive copy, got %+v", again[0].Change)
	}
}

func TestMemoryHistoryConcurrentAccess(t *testing.T) {
	h, err := NewMemoryHistory(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			if err := h.Add(newTx(fmt.Sprintf("tx-%d", offset), int64(offset+1))); err != nil {
				t.Errorf("Add failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := h.List(4); err != nil {
				t.Errorf("List failed: %v", err)
			}
		}()
	}

	wg.Wait()

	if h.Len() != 8 {
		t.Fatalf("expected full history, got %d", h.Len())
	}
}
