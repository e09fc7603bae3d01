package service

import (
	"github.com/shopspring/decimal"

	"txdemo/internal/domain"
)

// TransferCommand is shared by every transfer executor. FailMidway injects a
// failure between debit and credit to demonstrate each variant's atomicity.
type TransferCommand struct {
	From       string
	To         string
	Amount     decimal.Decimal
	FailMidway bool
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}
