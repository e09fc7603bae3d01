package service

import (
	"context"

	"txdemo/internal/domain"
)

// AutoCommitTransferService runs debit and credit as two independently
// committed statements. A mid-transfer failure leaves the debit applied and
// the credit missing — the partial update is the point of this variant.
type AutoCommitTransferService struct {
	accounts domain.AccountRepository
}

func NewAutoCommitTransferService(accounts domain.AccountRepository) *AutoCommitTransferService {
	return &AutoCommitTransferService{accounts: accounts}
}

func (s *AutoCommitTransferService) Execute(ctx context.Context, cmd TransferCommand) error {
	if err := validateAmount(cmd.Amount); err != nil {
		return err
	}
	if err := s.accounts.AdjustBalance(ctx, cmd.From, cmd.Amount.Neg()); err != nil {
		return err
	}
	if cmd.FailMidway {
		return domain.ErrSimulatedFailure
	}
	return s.accounts.AdjustBalance(ctx, cmd.To, cmd.Amount)
}
