package service

import (
	"context"

	"txdemo/internal/domain"
)

// RepositoryTransferService moves funds through entity lookups and saves
// inside one managed transaction. This is the only variant that checks for
// overdraft, since it holds both account entities before writing.
type RepositoryTransferService struct {
	accounts domain.AccountRepository
}

func NewRepositoryTransferService(accounts domain.AccountRepository) *RepositoryTransferService {
	return &RepositoryTransferService{accounts: accounts}
}

func (s *RepositoryTransferService) Execute(ctx context.Context, cmd TransferCommand) error {
	if err := validateAmount(cmd.Amount); err != nil {
		return err
	}
	return s.accounts.InTransaction(ctx, domain.TxOptions{}, func(r domain.AccountRepository) error {
		from, err := r.FindByOwner(ctx, cmd.From)
		if err != nil {
			return err
		}
		to, err := r.FindByOwner(ctx, cmd.To)
		if err != nil {
			return err
		}
		if from.Balance.LessThan(cmd.Amount) {
			return domain.ErrInsufficientFunds
		}

		from.Balance = from.Balance.Sub(cmd.Amount)
		if _, err := r.Save(ctx, from); err != nil {
			return err
		}
		if cmd.FailMidway {
			return domain.ErrSimulatedFailure
		}
		to.Balance = to.Balance.Add(cmd.Amount)
		_, err = r.Save(ctx, to)
		return err
	})
}
