package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"txdemo/internal/domain"
)

// SeedAccountsService creates the demo accounts when they are absent, so
// repeated startups never duplicate or reset balances.
type SeedAccountsService struct {
	accounts domain.AccountRepository
}

func NewSeedAccountsService(accounts domain.AccountRepository) *SeedAccountsService {
	return &SeedAccountsService{accounts: accounts}
}

func (s *SeedAccountsService) Execute(ctx context.Context) error {
	seeds := []domain.Account{
		domain.NewAccount("alice", decimal.RequireFromString("100.00")),
		domain.NewAccount("bob", decimal.RequireFromString("50.00")),
	}
	for _, seed := range seeds {
		_, err := s.accounts.FindByOwner(ctx, seed.Owner)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		if _, err := s.accounts.Save(ctx, seed); err != nil {
			return err
		}
	}
	return nil
}
