package service

import (
	"context"

	"txdemo/internal/domain"
)

// ManualTransferService performs the same atomic debit/credit as the managed
// variant, but over a pinned connection with hand-rolled BEGIN/COMMIT/
// ROLLBACK instead of the driver's transaction API.
type ManualTransferService struct {
	tx domain.ManualTransactor
}

func NewManualTransferService(tx domain.ManualTransactor) *ManualTransferService {
	return &ManualTransferService{tx: tx}
}

func (s *ManualTransferService) Execute(ctx context.Context, cmd TransferCommand) error {
	if err := validateAmount(cmd.Amount); err != nil {
		return err
	}
	return s.tx.WithManualTransaction(ctx, func(r domain.AccountRepository) error {
		if err := r.AdjustBalance(ctx, cmd.From, cmd.Amount.Neg()); err != nil {
			return err
		}
		if cmd.FailMidway {
			return domain.ErrSimulatedFailure
		}
		return r.AdjustBalance(ctx, cmd.To, cmd.Amount)
	})
}
