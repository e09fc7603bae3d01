package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"txdemo/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	owner   TEXT    NOT NULL UNIQUE,
	balance INTEGER NOT NULL DEFAULT 0
);
`

// dbtx is the subset of database/sql shared by *sql.DB, *sql.Conn and
// *sql.Tx, so the same queries can run in and out of a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteAccountRepository persists accounts in SQLite through database/sql.
// Balances are stored as integer cents so SQL comparison and arithmetic stay
// exact; the decimal boundary is normalized to a 2-digit scale.
type SQLiteAccountRepository struct {
	db  *sql.DB
	run dbtx
}

func NewSQLiteAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db, run: db}
}

// OpenDatabase opens the SQLite file behind the store and verifies it is
// reachable before anything else runs against it.
func OpenDatabase(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the accounts table when absent. Safe to run on every
// startup.
func (r *SQLiteAccountRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.run.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *SQLiteAccountRepository) FindByOwner(ctx context.Context, owner string) (domain.Account, error) {
	row := r.run.QueryRowContext(ctx, "SELECT id, owner, balance FROM accounts WHERE owner = ?", owner)
	var (
		id    int64
		name  string
		cents int64
	)
	if err := row.Scan(&id, &name, &cents); errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	} else if err != nil {
		return domain.Account{}, fmt.Errorf("find account %q: %w", owner, err)
	}
	return domain.Account{ID: id, Owner: name, Balance: fromCents(cents)}, nil
}

func (r *SQLiteAccountRepository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	account.Balance = account.Balance.Round(2)
	if account.ID == 0 {
		res, err := r.run.ExecContext(ctx,
			"INSERT INTO accounts (owner, balance) VALUES (?, ?)",
			account.Owner, toCents(account.Balance))
		if err != nil {
			return domain.Account{}, fmt.Errorf("insert account %q: %w", account.Owner, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return domain.Account{}, fmt.Errorf("insert account %q: %w", account.Owner, err)
		}
		account.ID = id
		return account, nil
	}

	res, err := r.run.ExecContext(ctx,
		"UPDATE accounts SET owner = ?, balance = ? WHERE id = ?",
		account.Owner, toCents(account.Balance), account.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account %q: %w", account.Owner, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Account{}, fmt.Errorf("update account %q: %w", account.Owner, err)
	} else if n != 1 {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, account.Owner)
	}
	return account, nil
}

func (r *SQLiteAccountRepository) ReadBalance(ctx context.Context, owner string) (decimal.Decimal, error) {
	row := r.run.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE owner = ?", owner)
	var cents int64
	if err := row.Scan(&cents); errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	} else if err != nil {
		return decimal.Decimal{}, fmt.Errorf("read balance of %q: %w", owner, err)
	}
	return fromCents(cents), nil
}

func (r *SQLiteAccountRepository) CountWithBalanceAtLeast(ctx context.Context, threshold decimal.Decimal) (int, error) {
	row := r.run.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE balance >= ?", toCents(threshold))
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func (r *SQLiteAccountRepository) AdjustBalance(ctx context.Context, owner string, delta decimal.Decimal) error {
	res, err := r.run.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + ? WHERE owner = ?",
		toCents(delta), owner)
	if err != nil {
		return fmt.Errorf("adjust balance of %q: %w", owner, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("adjust balance of %q: %w", owner, err)
	} else if n != 1 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	}
	return nil
}

// InTransaction starts a transaction at the requested isolation level and
// runs fn against a repository bound to it. fn returning nil commits;
// anything else rolls back and is returned as-is.
func (r *SQLiteAccountRepository) InTransaction(ctx context.Context, opts domain.TxOptions, fn func(domain.AccountRepository) error) error {
	txOpts, err := sqlTxOptions(opts)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(&SQLiteAccountRepository{db: r.db, run: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithManualTransaction pins one connection, suspends its implicit
// auto-commit with an explicit BEGIN and runs fn against it. Every exit path
// ends the transaction (COMMIT or ROLLBACK), so the connection is back in
// auto-commit mode before it returns to the pool.
func (r *SQLiteAccountRepository) WithManualTransaction(ctx context.Context, fn func(domain.AccountRepository) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, "BEGIN"); err != nil {
		return fmt.Errorf("begin manual transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		}
	}()

	if err := fn(&SQLiteAccountRepository{db: r.db, run: conn}); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit manual transaction: %w", err)
	}
	committed = true
	return nil
}

// sqlTxOptions maps the demo's named levels onto what the driver natively
// distinguishes. SQLite only separates read-uncommitted from its default
// serializable snapshot, so the intermediate ANSI levels run at the stronger
// default.
func sqlTxOptions(opts domain.TxOptions) (*sql.TxOptions, error) {
	switch opts.Isolation {
	case domain.LevelDefault, domain.ReadCommitted, domain.RepeatableRead, domain.Serializable:
		return nil, nil
	case domain.ReadUncommitted:
		return &sql.TxOptions{Isolation: sql.LevelReadUncommitted}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIsolationLevel, opts.Isolation)
	}
}

func toCents(value decimal.Decimal) int64 {
	return value.Round(2).Shift(2).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
