package calculator

import "errors"

var (
	// ErrInsufficientFunds is returned when the cash inserted does not cover the total price.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTotalPrice is returned when the total price is zero or negative.
	ErrInvalidTotalPrice = errors.New("totalPrice is 0 or less")
	// ErrNonIntegerArgument is returned when either amount is not a whole number.
	ErrNonIntegerArgument = errors.New("argument should be integer")
)
