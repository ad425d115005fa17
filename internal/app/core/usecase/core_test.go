package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []usecase.TransactionEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event usecase.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type mapStore struct {
	data map[string][]byte
	err  error
}

func (s *mapStore) Save(ctx context.Context, key string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *mapStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.data[key]
	if !ok {
		return nil, usecase.ErrSnapshotNotFound
	}
	return data, nil
}

func TestCoreUseCase_PublishesCommittedOperations(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	core := usecase.NewCoreUseCase(memory.NewMutexLedger(nil), usecase.WithPublisher(pub))

	alice, err := core.CreateAccount(ctx, "Alice", 0, domain.CurrencyNGN)
	require.NoError(t, err)
	bob, err := core.CreateAccount(ctx, "Bob", 0, domain.CurrencyNGN)
	require.NoError(t, err)

	dep, err := core.Deposit(ctx, alice, 1000, "salary")
	require.NoError(t, err)
	wd, err := core.Withdraw(ctx, alice, 100, "atm")
	require.NoError(t, err)
	tr, err := core.Transfer(ctx, alice, bob, 300, "rent")
	require.NoError(t, err)

	// 失敗的操作不發布
	_, err = core.Withdraw(ctx, bob, 99999, "")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	_, err = core.RecordTransaction(ctx, "manual", []domain.TransactionEntry{
		{AccountID: alice, Credit: 1},
		{AccountID: bob, Debit: 1},
	})
	require.NoError(t, err)

	require.Len(t, pub.events, 3)

	assert.Equal(t, usecase.EventDeposit, pub.events[0].Type)
	assert.Equal(t, dep, pub.events[0].TxID)
	assert.Equal(t, "1", pub.events[0].Key())
	assert.Equal(t, "salary", pub.events[0].Description)

	assert.Equal(t, usecase.EventWithdrawal, pub.events[1].Type)
	assert.Equal(t, wd, pub.events[1].TxID)

	assert.Equal(t, usecase.EventTransfer, pub.events[2].Type)
	assert.Equal(t, tr, pub.events[2].TxID)
	assert.Equal(t, "1->2", pub.events[2].Key())
	assert.Equal(t, int64(300), pub.events[2].Amount)

	for _, e := range pub.events {
		assert.NotEqual(t, uuid.Nil, e.EventID)
		assert.False(t, e.OccurredAt.IsZero())
	}
}

func TestCoreUseCase_PublishFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("kafka unavailable")}
	core := usecase.NewCoreUseCase(memory.NewMutexLedger(nil), usecase.WithPublisher(pub))

	id, _ := core.CreateAccount(ctx, "Alice", 0, domain.CurrencyNGN)
	txID, err := core.Deposit(ctx, id, 500, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionID(1), txID)

	bal, err := core.GetAccountBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal)
}

func TestCoreUseCase_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := &mapStore{data: map[string][]byte{}}
	core := usecase.NewCoreUseCase(memory.NewMutexLedger(nil), usecase.WithSnapshotStore(store, domain.FormatJSON))

	id, _ := core.CreateAccount(ctx, "Alice", 250, domain.CurrencyNGN)
	n, err := core.Save(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, len(store.data[usecase.DefaultSnapshotKey]), n)

	_, err = core.Deposit(ctx, id, 50, "")
	require.NoError(t, err)

	require.NoError(t, core.Load(ctx, ""))
	bal, _ := core.GetAccountBalance(ctx, id)
	assert.Equal(t, int64(250), bal)

	err = core.Load(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)

	store.data["broken"] = []byte("{")
	err = core.Load(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrMalformedSnapshot)
}

func TestCoreUseCase_SaveWithoutStore(t *testing.T) {
	core := usecase.NewCoreUseCase(memory.NewMutexLedger(nil))
	_, err := core.Save(context.Background(), "x")
	assert.ErrorIs(t, err, usecase.ErrSnapshotStoreNotConfigured)
	assert.ErrorIs(t, core.Load(context.Background(), "x"), usecase.ErrSnapshotStoreNotConfigured)
}

func TestCoreUseCase_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := usecase.NewCoreUseCase(memory.NewMutexLedger(nil))
	id, _ := src.CreateAccount(ctx, "Alice", 75, domain.CurrencyGBP)

	data, err := src.Export(ctx, domain.FormatProto)
	require.NoError(t, err)

	dst := usecase.NewCoreUseCase(memory.NewMutexLedger(nil))
	require.NoError(t, dst.Import(ctx, data))

	acc, err := dst.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", acc.Owner)
	assert.Equal(t, domain.CurrencyGBP, acc.Currency)
	assert.Equal(t, int64(75), acc.Balance)

	r := dst.Report(ctx)
	assert.Equal(t, int64(75), r.TotalAssets)
}
