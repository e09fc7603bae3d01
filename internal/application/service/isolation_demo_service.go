package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txdemo/internal/domain"
)

// IsolationDemoService coordinates a reader transaction and a concurrent
// writer so that the writer's commit lands strictly between the reader's two
// observations. Two one-shot barriers make the race deterministic:
//
//	reader: begin tx (requested level) → first read → close(release)
//	        → wait writerDone → second read → commit
//	writer: wait release → mutate in own READ_COMMITTED tx → send writerDone
//
// The writer always runs at read-committed so its write is durable before it
// signals, leaving the reader's isolation level as the only variable.
type IsolationDemoService struct {
	accounts domain.AccountRepository
}

func NewIsolationDemoService(accounts domain.AccountRepository) *IsolationDemoService {
	return &IsolationDemoService{accounts: accounts}
}

type NonRepeatableReadQuery struct {
	Owner string
	Delta decimal.Decimal
	Level domain.IsolationLevel
}

// NonRepeatableRead reads one owner's balance twice inside a single
// transaction while a concurrent writer commits a balance adjustment in
// between.
func (s *IsolationDemoService) NonRepeatableRead(ctx context.Context, q NonRepeatableReadQuery) (domain.NonRepeatableReadResult, error) {
	var first, second decimal.Decimal
	err := s.coordinate(ctx, q.Level,
		func(writerCtx context.Context, r domain.AccountRepository) error {
			return r.AdjustBalance(writerCtx, q.Owner, q.Delta)
		},
		func(r domain.AccountRepository) (err error) {
			first, err = r.ReadBalance(ctx, q.Owner)
			return err
		},
		func(r domain.AccountRepository) (err error) {
			second, err = r.ReadBalance(ctx, q.Owner)
			return err
		},
	)
	if err != nil {
		return domain.NonRepeatableReadResult{}, err
	}
	return domain.NewNonRepeatableReadResult(q.Level, first, second), nil
}

type PhantomReadQuery struct {
	Threshold decimal.Decimal
	Level     domain.IsolationLevel
}

// PhantomRead counts accounts at or above a threshold twice inside a single
// transaction while a concurrent writer commits a fresh above-threshold row
// in between.
func (s *IsolationDemoService) PhantomRead(ctx context.Context, q PhantomReadQuery) (domain.PhantomReadResult, error) {
	var first, second int
	err := s.coordinate(ctx, q.Level,
		func(writerCtx context.Context, r domain.AccountRepository) error {
			phantom := domain.NewAccount(
				"phantom-"+uuid.NewString(),
				q.Threshold.Add(decimal.RequireFromString("1.00")),
			)
			_, err := r.Save(writerCtx, phantom)
			return err
		},
		func(r domain.AccountRepository) (err error) {
			first, err = r.CountWithBalanceAtLeast(ctx, q.Threshold)
			return err
		},
		func(r domain.AccountRepository) (err error) {
			second, err = r.CountWithBalanceAtLeast(ctx, q.Threshold)
			return err
		},
	)
	if err != nil {
		return domain.PhantomReadResult{}, err
	}
	return domain.NewPhantomReadResult(q.Level, first, second), nil
}

// coordinate runs the two-phase protocol. The writer's transaction is
// independent of the reader's: it runs on a detached context and its outcome
// never rolls the reader back. A writer failure is surfaced only after the
// reader commits, as ErrWriterFailed, since the verdict would otherwise
// report "no anomaly" for a write that never happened.
func (s *IsolationDemoService) coordinate(
	ctx context.Context,
	level domain.IsolationLevel,
	write func(context.Context, domain.AccountRepository) error,
	firstObservation func(domain.AccountRepository) error,
	secondObservation func(domain.AccountRepository) error,
) error {
	release := make(chan struct{})
	abort := make(chan struct{})
	writerDone := make(chan error, 1)

	writerCtx := context.WithoutCancel(ctx)
	go func() {
		var err error
		defer func() { writerDone <- err }()
		select {
		case <-release:
		case <-abort:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
		err = s.accounts.InTransaction(writerCtx, domain.TxOptions{Isolation: domain.ReadCommitted}, func(r domain.AccountRepository) error {
			return write(writerCtx, r)
		})
	}()
	// Unblocks the writer if the reader bails out before the first
	// observation completes. Harmless after release: the writer has
	// already passed its select by the time the reader stops waiting.
	defer close(abort)

	var writerErr error
	err := s.accounts.InTransaction(ctx, domain.TxOptions{Isolation: level}, func(r domain.AccountRepository) error {
		if err := firstObservation(r); err != nil {
			return err
		}
		close(release)
		select {
		case writerErr = <-writerDone:
		case <-ctx.Done():
			// A missed hand-off is fatal: proceeding would produce a
			// verdict about an interleaving that never happened.
			return ctx.Err()
		}
		return secondObservation(r)
	})
	if err != nil {
		return err
	}
	if writerErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriterFailed, writerErr)
	}
	return nil
}
