package domain

import (
	"fmt"
	"payment-engine/errors"

	"github.com/shopspring/decimal"
)

// MaxTotal is the largest magnitude a 96-bit fixed-point decimal can hold.
// decimal.Decimal is arbitrary precision, so the bound is enforced by hand.
var MaxTotal = decimal.RequireFromString("79228162514264337593543950335")

// Summary is the running state of an aggregation.
// The zero value is a valid empty summary with a total of zero.
type Summary struct {
	Count int
	Total decimal.Decimal
}

// Add returns a new summary including p. The receiver is left untouched,
// which keeps the last valid total available when ErrTotalOverflow is returned.
func (s Summary) Add(p Payment) (Summary, error) {
	total := s.Total.Add(p.Amount)
	if total.Abs().GreaterThan(MaxTotal) {
		return s, fmt.Errorf("%w: %s + %s", errors.ErrTotalOverflow, s.Total, p.Amount)
	}
	return Summary{Count: s.Count + 1, Total: total}, nil
}
