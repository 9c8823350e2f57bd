package calculator

import "math"

// maxExactInteger is the largest integer a float64 holds without rounding.
const maxExactInteger = 1<<53 - 1

var denominations = [...]int64{10000, 5000, 1000, 500, 100, 50, 10, 5, 1}

// Denominations returns a copy of the supported denominations, largest first.
func Denominations() []int64 {
	out := make([]int64, len(denominations))
	copy(out, denominations[:])
	return out
}

type greedyCalculator struct {
	denominations []int64
}

// New creates a Calculator that hands out the largest denominations first.
func New() Calculator {
	return newGreedy(denominations[:])
}

// newGreedy expects denominations sorted in descending order.
func newGreedy(denoms []int64) *greedyCalculator {
	return &greedyCalculator{denominations: denoms}
}

// Calculate is shorthand for New().CalculateChange.
func Calculate(totalPrice, cashInserted float64) (Result, error) {
	return New().CalculateChange(totalPrice, cashInserted)
}

func (c *greedyCalculator) CalculateChange(totalPrice, cashInserted float64) (Result, error) {
	if err := validate(totalPrice, cashInserted); err != nil {
		return Result{}, err
	}

	leftover := int64(cashInserted) - int64(totalPrice)
	change := make(Breakdown, 0, len(c.denominations))

	for _, d := range c.denominations {
		if leftover < d {
			continue
		}
		count := leftover / d
		change = append(change, Entry{Denomination: d, Count: count})
		leftover -= count * d
	}

	status := Status{Code: StatusSuccess}
	if leftover != 0 {
		status = Status{Code: StatusFailed, Message: LeftoverNotZeroMessage}
	}

	return Result{Status: status, Change: change}, nil
}

// validate checks preconditions in a fixed order; the first failure wins.
func validate(totalPrice, cashInserted float64) error {
	switch {
	case totalPrice > cashInserted:
		return ErrInsufficientFunds
	case totalPrice <= 0:
		return ErrInvalidTotalPrice
	case !isInteger(totalPrice) || !isInteger(cashInserted):
		return ErrNonIntegerArgument
	}
	return nil
}

func isInteger(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if math.Abs(v) > maxExactInteger {
		return false
	}
	return v == math.Trunc(v)
}
