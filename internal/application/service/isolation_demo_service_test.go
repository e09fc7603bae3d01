package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdemo/internal/domain"
)

// fakeStore models just enough of a SQL engine to test the coordination
// protocol deterministically: writes apply immediately on commit-free paths,
// and read visibility depends on the transaction's isolation level —
// repeatable-read and serializable transactions read from a snapshot taken
// when the transaction starts, the weaker levels read live state.
type fakeStore struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	events   []string

	adjustErr  error
	adjustGate chan struct{}
}

func newFakeStore(balances map[string]string) *fakeStore {
	store := &fakeStore{balances: make(map[string]decimal.Decimal)}
	for owner, balance := range balances {
		store.balances[owner] = decimal.RequireFromString(balance)
	}
	return store
}

func (f *fakeStore) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeStore) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeStore) copyBalances() map[string]decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make(map[string]decimal.Decimal, len(f.balances))
	for owner, balance := range f.balances {
		snapshot[owner] = balance
	}
	return snapshot
}

func (f *fakeStore) InTransaction(ctx context.Context, opts domain.TxOptions, fn func(domain.AccountRepository) error) error {
	view := &fakeTxView{store: f}
	if opts.Isolation == domain.RepeatableRead || opts.Isolation == domain.Serializable {
		view.snapshot = f.copyBalances()
	}
	return fn(view)
}

func (f *fakeStore) FindByOwner(ctx context.Context, owner string) (domain.Account, error) {
	return (&fakeTxView{store: f}).FindByOwner(ctx, owner)
}

func (f *fakeStore) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	return (&fakeTxView{store: f}).Save(ctx, account)
}

func (f *fakeStore) ReadBalance(ctx context.Context, owner string) (decimal.Decimal, error) {
	return (&fakeTxView{store: f}).ReadBalance(ctx, owner)
}

func (f *fakeStore) CountWithBalanceAtLeast(ctx context.Context, threshold decimal.Decimal) (int, error) {
	return (&fakeTxView{store: f}).CountWithBalanceAtLeast(ctx, threshold)
}

func (f *fakeStore) AdjustBalance(ctx context.Context, owner string, delta decimal.Decimal) error {
	return (&fakeTxView{store: f}).AdjustBalance(ctx, owner, delta)
}

// fakeTxView is one transaction's view of the fake store. A nil snapshot
// means reads observe live (committed) state.
type fakeTxView struct {
	store    *fakeStore
	snapshot map[string]decimal.Decimal
}

func (v *fakeTxView) visible() map[string]decimal.Decimal {
	if v.snapshot != nil {
		return v.snapshot
	}
	return v.store.copyBalances()
}

func (v *fakeTxView) FindByOwner(ctx context.Context, owner string) (domain.Account, error) {
	balance, ok := v.visible()[owner]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	}
	return domain.Account{ID: 1, Owner: owner, Balance: balance}, nil
}

func (v *fakeTxView) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	v.store.record("save " + account.Owner)
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	v.store.balances[account.Owner] = account.Balance
	account.ID = int64(len(v.store.balances))
	return account, nil
}

func (v *fakeTxView) ReadBalance(ctx context.Context, owner string) (decimal.Decimal, error) {
	v.store.record("read " + owner)
	balance, ok := v.visible()[owner]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	}
	return balance, nil
}

func (v *fakeTxView) CountWithBalanceAtLeast(ctx context.Context, threshold decimal.Decimal) (int, error) {
	v.store.record("count")
	count := 0
	for _, balance := range v.visible() {
		if balance.GreaterThanOrEqual(threshold) {
			count++
		}
	}
	return count, nil
}

func (v *fakeTxView) AdjustBalance(ctx context.Context, owner string, delta decimal.Decimal) error {
	if v.store.adjustGate != nil {
		<-v.store.adjustGate
	}
	if v.store.adjustErr != nil {
		return v.store.adjustErr
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	balance, ok := v.store.balances[owner]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, owner)
	}
	v.store.balances[owner] = balance.Add(delta)
	v.store.events = append(v.store.events, "adjust "+owner)
	return nil
}

func (v *fakeTxView) InTransaction(ctx context.Context, opts domain.TxOptions, fn func(domain.AccountRepository) error) error {
	return fn(v)
}

func nonRepeatableQuery(level domain.IsolationLevel) NonRepeatableReadQuery {
	return NonRepeatableReadQuery{
		Owner: "alice",
		Delta: decimal.RequireFromString("5.00"),
		Level: level,
	}
}

func TestNonRepeatableReadAnomalyAtReadCommitted(t *testing.T) {
	for _, level := range []domain.IsolationLevel{domain.ReadUncommitted, domain.ReadCommitted} {
		store := newFakeStore(map[string]string{"alice": "100.00"})
		svc := NewIsolationDemoService(store)

		result, err := svc.NonRepeatableRead(context.Background(), nonRepeatableQuery(level))
		require.NoError(t, err)

		assert.Equal(t, "100.00", result.FirstRead.StringFixed(2))
		assert.Equal(t, "105.00", result.SecondRead.StringFixed(2))
		assert.True(t, result.Anomaly, spew.Sdump(result))
	}
}

func TestNonRepeatableReadNoAnomalyUnderSnapshotIsolation(t *testing.T) {
	for _, level := range []domain.IsolationLevel{domain.RepeatableRead, domain.Serializable} {
		store := newFakeStore(map[string]string{"alice": "100.00"})
		svc := NewIsolationDemoService(store)

		result, err := svc.NonRepeatableRead(context.Background(), nonRepeatableQuery(level))
		require.NoError(t, err)

		assert.Equal(t, "100.00", result.FirstRead.StringFixed(2))
		assert.Equal(t, "100.00", result.SecondRead.StringFixed(2))
		assert.False(t, result.Anomaly, spew.Sdump(result))

		// The writer's commit is real either way, only its visibility to
		// the open reader changes.
		balance, err := store.ReadBalance(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "105.00", balance.StringFixed(2))
	}
}

func TestWriterCommitLandsBetweenTheTwoReads(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00"})
	svc := NewIsolationDemoService(store)

	_, err := svc.NonRepeatableRead(context.Background(), nonRepeatableQuery(domain.ReadCommitted))
	require.NoError(t, err)

	assert.Equal(t, []string{"read alice", "adjust alice", "read alice"}, store.recorded())
}

func TestPhantomReadAnomalyAtReadCommitted(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00", "bob": "50.00"})
	svc := NewIsolationDemoService(store)

	result, err := svc.PhantomRead(context.Background(), PhantomReadQuery{
		Threshold: decimal.RequireFromString("50.00"),
		Level:     domain.ReadCommitted,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FirstCount)
	assert.Equal(t, 3, result.SecondCount)
	assert.True(t, result.Anomaly, spew.Sdump(result))
	assert.Equal(t, []string{"count", "save", "count"}, normalizePhantomEvents(store.recorded()))
}

func TestPhantomReadNoAnomalyAtSerializable(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00", "bob": "50.00"})
	svc := NewIsolationDemoService(store)

	result, err := svc.PhantomRead(context.Background(), PhantomReadQuery{
		Threshold: decimal.RequireFromString("50.00"),
		Level:     domain.Serializable,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FirstCount)
	assert.Equal(t, 2, result.SecondCount)
	assert.False(t, result.Anomaly, spew.Sdump(result))
}

func TestPhantomWritersUseUniqueOwners(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00"})
	svc := NewIsolationDemoService(store)

	for i := 0; i < 2; i++ {
		_, err := svc.PhantomRead(context.Background(), PhantomReadQuery{
			Threshold: decimal.RequireFromString("50.00"),
			Level:     domain.ReadCommitted,
		})
		require.NoError(t, err)
	}

	phantoms := 0
	for owner := range store.copyBalances() {
		if strings.HasPrefix(owner, "phantom-") {
			phantoms++
		}
	}
	assert.Equal(t, 2, phantoms)
}

func TestWriterFailureSurfacesAsWriterFailed(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00"})
	store.adjustErr = errors.New("disk full")
	svc := NewIsolationDemoService(store)

	_, err := svc.NonRepeatableRead(context.Background(), nonRepeatableQuery(domain.ReadCommitted))
	assert.ErrorIs(t, err, domain.ErrWriterFailed)
	assert.ErrorContains(t, err, "disk full")
}

func TestCancellationDuringWriterWaitFailsFast(t *testing.T) {
	store := newFakeStore(map[string]string{"alice": "100.00"})
	store.adjustGate = make(chan struct{})
	defer close(store.adjustGate)
	svc := NewIsolationDemoService(store)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let the reader reach its wait on the writer first.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.NonRepeatableRead(ctx, nonRepeatableQuery(domain.ReadCommitted))
	assert.ErrorIs(t, err, context.Canceled)
}

// normalizePhantomEvents collapses the random phantom owner suffix so event
// sequences can be compared exactly.
func normalizePhantomEvents(events []string) []string {
	out := make([]string, 0, len(events))
	for _, event := range events {
		if strings.HasPrefix(event, "save phantom-") {
			event = "save"
		}
		out = append(out, event)
	}
	return out
}
