package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

type memStore map[string][]byte

func (s memStore) Save(_ context.Context, key string, data []byte) error {
	s[key] = data
	return nil
}

func (s memStore) Load(_ context.Context, key string) ([]byte, error) {
	data, ok := s[key]
	if !ok {
		return nil, usecase.ErrSnapshotNotFound
	}
	return data, nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	core := usecase.NewCoreUseCase(memory.NewMutexLedger(nil),
		usecase.WithSnapshotStore(memStore{}, domain.FormatJSON))
	s := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logrus.New())))
	RegisterLedgerServiceServer(s, NewGrpcServer(core))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestGrpc_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	alice, err := c.CreateAccount(ctx, "Alice", 1000, "ngn")
	require.NoError(t, err)
	bob, err := c.CreateAccount(ctx, "Bob", 0, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(1), alice)
	assert.Equal(t, domain.AccountID(2), bob)

	dep, err := c.Deposit(ctx, &AmountRequest{AccountID: alice, Amount: 500, Description: "salary"})
	require.NoError(t, err)
	require.NotNil(t, dep.Balance)
	assert.Equal(t, int64(1500), *dep.Balance)

	tr, err := c.Transfer(ctx, &TransferRequest{FromAccountID: alice, ToAccountID: bob, Amount: 700})
	require.NoError(t, err)
	assert.Equal(t, int64(800), *tr.Balance)

	bal, err := c.GetBalance(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(700), bal.Balance)
	assert.Equal(t, domain.CurrencyNGN, bal.Currency)
	assert.Equal(t, "₦7.00", bal.Formatted)

	rec, err := c.RecordTransaction(ctx, &RecordTransactionRequest{
		Description: "split",
		Entries: []domain.TransactionEntry{
			{AccountID: bob, Credit: 200},
			{AccountID: alice, Debit: 200},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, rec.Balance)

	txs, err := c.ListTransactions(ctx, &bob)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	accs, err := c.ListAccounts(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, int64(1000), accs[0].Balance)

	r, err := c.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), r.TotalAssets)
	require.NotNil(t, r.Richest)
	assert.Equal(t, alice, r.Richest.ID)

	_, err = c.Withdraw(ctx, &AmountRequest{AccountID: bob, Amount: 500})
	require.NoError(t, err)
	require.NoError(t, c.CloseAccount(ctx, bob))

	acc, err := c.GetAccount(ctx, bob)
	require.NoError(t, err)
	assert.True(t, acc.Closed)
}

func TestGrpc_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	id, err := c.CreateAccount(ctx, "Alice", 100, "USD")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"not found", func() error { _, err := c.GetBalance(ctx, 99); return err }, codes.NotFound},
		{"insufficient", func() error {
			_, err := c.Withdraw(ctx, &AmountRequest{AccountID: id, Amount: 101})
			return err
		}, codes.FailedPrecondition},
		{"non zero close", func() error { return c.CloseAccount(ctx, id) }, codes.FailedPrecondition},
		{"system close", func() error { return c.CloseAccount(ctx, domain.SystemAccountID) }, codes.FailedPrecondition},
		{"invalid amount", func() error {
			_, err := c.Deposit(ctx, &AmountRequest{AccountID: id, Amount: 0})
			return err
		}, codes.InvalidArgument},
		{"self transfer", func() error {
			_, err := c.Transfer(ctx, &TransferRequest{FromAccountID: id, ToAccountID: id, Amount: 1})
			return err
		}, codes.InvalidArgument},
		{"unbalanced", func() error {
			_, err := c.RecordTransaction(ctx, &RecordTransactionRequest{
				Entries: []domain.TransactionEntry{{AccountID: id, Debit: 1}},
			})
			return err
		}, codes.InvalidArgument},
		{"invalid currency", func() error { _, err := c.CreateAccount(ctx, "X", 0, "JPY"); return err }, codes.InvalidArgument},
		{"snapshot missing", func() error { return c.LoadSnapshot(ctx, "nope") }, codes.NotFound},
		{"broken import", func() error { return c.ImportSnapshot(ctx, []byte("{")) }, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGrpc_Snapshots(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	id, err := c.CreateAccount(ctx, "Alice", 300, "EUR")
	require.NoError(t, err)

	saved, err := c.SaveSnapshot(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, usecase.DefaultSnapshotKey, saved.Key)
	assert.Positive(t, saved.Bytes)

	exported, err := c.ExportSnapshot(ctx, "proto")
	require.NoError(t, err)

	_, err = c.Deposit(ctx, &AmountRequest{AccountID: id, Amount: 50})
	require.NoError(t, err)
	require.NoError(t, c.LoadSnapshot(ctx, ""))

	bal, err := c.GetBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal.Balance)

	_, err = c.Deposit(ctx, &AmountRequest{AccountID: id, Amount: 25})
	require.NoError(t, err)
	require.NoError(t, c.ImportSnapshot(ctx, exported))
	bal, err = c.GetBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal.Balance)

	_, err = c.ExportSnapshot(ctx, "xml")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
