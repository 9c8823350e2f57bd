package calculator

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// StatusCode tags the outcome of a change calculation.
type StatusCode string

const (
	StatusSuccess StatusCode = "success"
	StatusFailed  StatusCode = "failed"
)

// LeftoverNotZeroMessage accompanies StatusFailed when the leftover could not be
// fully expressed with the denomination set.
const LeftoverNotZeroMessage = "leftover is NOT 0"

// Status reports whether the leftover was fully decomposed.
type Status struct {
	Code    StatusCode `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Succeeded reports whether the status is StatusSuccess.
func (s Status) Succeeded() bool {
	return s.Code == StatusSuccess
}

// Entry is a single denomination and how many units of it to return.
type Entry struct {
	Denomination int64
	Count        int64
}

// Breakdown lists the change to return in descending denomination order.
// Denominations with a zero count never appear.
type Breakdown []Entry

// Count returns the number of units for the denomination, or zero when absent.
func (b Breakdown) Count(denomination int64) int64 {
	for _, e := range b {
		if e.Denomination == denomination {
			return e.Count
		}
	}
	return 0
}

// Total is the amount of money the breakdown represents.
func (b Breakdown) Total() int64 {
	var total int64
	for _, e := range b {
		total += e.Denomination * e.Count
	}
	return total
}

// Pieces is the number of bills and coins in the breakdown.
func (b Breakdown) Pieces() int64 {
	var pieces int64
	for _, e := range b {
		pieces += e.Count
	}
	return pieces
}

// Map returns the breakdown keyed by denomination.
func (b Breakdown) Map() map[int64]int64 {
	out := make(map[int64]int64, len(b))
	for _, e := range b {
		out[e.Denomination] = e.Count
	}
	return out
}

// MarshalJSON renders the breakdown as a JSON object keyed by denomination,
// keeping the descending order that encoding a map would lose.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(e.Denomination, 10))
		buf.WriteString(`":`)
		buf.WriteString(strconv.FormatInt(e.Count, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON in any key order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Breakdown, 0, len(raw))
	for key, count := range raw {
		d, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid denomination %q: %w", key, err)
		}
		out = append(out, Entry{Denomination: d, Count: count})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Compare(b.Denomination, a.Denomination)
	})

	*b = out
	return nil
}

// Result is the outcome of a change calculation that passed input validation.
type Result struct {
	Status Status    `json:"status"`
	Change Breakdown `json:"change"`
}

// Calculator describes the behaviour required from a change calculator.
type Calculator interface {
	CalculateChange(totalPrice, cashInserted float64) (Result, error)
}
