package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Account is a persisted balance row. Balances are fixed-point with a
// 2-digit scale; the repository normalizes the scale on every write.
type Account struct {
	ID      int64
	Owner   string
	Balance decimal.Decimal
}

func NewAccount(owner string, balance decimal.Decimal) Account {
	return Account{
		Owner:   owner,
		Balance: balance,
	}
}

// TxOptions selects the isolation level for a repository transaction.
// The zero value asks for the store's default level.
type TxOptions struct {
	Isolation IsolationLevel
}

type AccountRepository interface {
	FindByOwner(ctx context.Context, owner string) (Account, error)
	Save(ctx context.Context, account Account) (Account, error)
	ReadBalance(ctx context.Context, owner string) (decimal.Decimal, error)
	CountWithBalanceAtLeast(ctx context.Context, threshold decimal.Decimal) (int, error)
	// AdjustBalance adds delta to the owner's balance in a single statement.
	// Returns ErrAccountNotFound when no row matched.
	AdjustBalance(ctx context.Context, owner string, delta decimal.Decimal) error
	// InTransaction runs fn against a repository bound to one transaction,
	// committing when fn returns nil and rolling back otherwise.
	InTransaction(ctx context.Context, opts TxOptions, fn func(AccountRepository) error) error
}

// ManualTransactor runs fn on a single pinned connection whose implicit
// auto-commit has been suspended with an explicit BEGIN. Same atomicity as
// InTransaction, demonstrated through manual resource lifecycle instead of
// the driver-managed transaction API.
type ManualTransactor interface {
	WithManualTransaction(ctx context.Context, fn func(AccountRepository) error) error
}
