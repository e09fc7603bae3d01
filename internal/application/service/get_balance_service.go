package service

import (
	"context"

	"github.com/shopspring/decimal"

	"txdemo/internal/domain"
)

type GetBalanceService struct {
	accounts domain.AccountRepository
}

func NewGetBalanceService(accounts domain.AccountRepository) *GetBalanceService {
	return &GetBalanceService{accounts: accounts}
}

func (s *GetBalanceService) Execute(ctx context.Context, owner string) (decimal.Decimal, error) {
	account, err := s.accounts.FindByOwner(ctx, owner)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance, nil
}
