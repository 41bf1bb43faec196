package domain

import "github.com/shopspring/decimal"

// Payment is an immutable transfer record travelling from a producer to the aggregator.
// It is always passed by value and never mutated once built.
type Payment struct {
	Sender   string
	Receiver string
	Amount   decimal.Decimal
}

func NewPayment(sender, receiver string, amount decimal.Decimal) Payment {
	return Payment{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}
}
