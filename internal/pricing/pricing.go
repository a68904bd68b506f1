// Package pricing computes cart totals. It is pure: no I/O, no state.
package pricing

import "errors"

var (
	ErrEmptyCart       = errors.New("cart has no lines")
	ErrInvalidQuantity = errors.New("line quantity must be positive")
	ErrNegativePrice   = errors.New("line price must not be negative")
)

type Line struct {
	UnitPrice int64
	Quantity  int
}

// Total returns the sum of unit_price * quantity over all lines. An empty
// cart is an error, not a zero total.
func Total(lines []Line) (int64, error) {
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}

	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
		if line.UnitPrice < 0 {
			return 0, ErrNegativePrice
		}
		total += line.UnitPrice * int64(line.Quantity)
	}

	return total, nil
}
