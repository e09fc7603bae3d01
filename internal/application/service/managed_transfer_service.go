package service

import (
	"context"

	"txdemo/internal/domain"
)

// ManagedTransferService applies the debit/credit pair as raw single-row
// updates inside one managed transaction: any failure between them rolls the
// debit back.
type ManagedTransferService struct {
	accounts domain.AccountRepository
}

func NewManagedTransferService(accounts domain.AccountRepository) *ManagedTransferService {
	return &ManagedTransferService{accounts: accounts}
}

func (s *ManagedTransferService) Execute(ctx context.Context, cmd TransferCommand) error {
	if err := validateAmount(cmd.Amount); err != nil {
		return err
	}
	return s.accounts.InTransaction(ctx, domain.TxOptions{}, func(r domain.AccountRepository) error {
		if err := r.AdjustBalance(ctx, cmd.From, cmd.Amount.Neg()); err != nil {
			return err
		}
		if cmd.FailMidway {
			return domain.ErrSimulatedFailure
		}
		return r.AdjustBalance(ctx, cmd.To, cmd.Amount)
	})
}
