package main

import (
	"bytes"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

func startServer(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := grpc.NewServer()
	grpc_adapter.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(
		usecase.NewCoreUseCase(memory.NewMutexLedger(nil))))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)
	return lis.Addr().String()
}

func run(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--addr", addr}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLedgerctl_Commands(t *testing.T) {
	addr := startServer(t)

	out, err := run(t, addr, "create-account", "Alice", "--initial", "1000", "--currency", "usd")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, out)

	_, err = run(t, addr, "create-account", "Bob")
	require.NoError(t, err)

	_, err = run(t, addr, "deposit", "1", "500", "-d", "salary")
	require.NoError(t, err)
	_, err = run(t, addr, "transfer", "1", "2", "300")
	require.NoError(t, err)
	_, err = run(t, addr, "record", "2:0:100", "1:100:0", "-d", "refund")
	require.NoError(t, err)

	out, err = run(t, addr, "balance", "1")
	require.NoError(t, err)
	var bal grpc_adapter.BalanceResponse
	require.NoError(t, json.Unmarshal([]byte(out), &bal))
	assert.Equal(t, int64(1300), bal.Balance)
	assert.Equal(t, "$13.00", bal.Formatted)

	out, err = run(t, addr, "transactions", "--account", "2")
	require.NoError(t, err)
	var txs []domain.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	assert.Len(t, txs, 2)

	file := filepath.Join(t.TempDir(), "ledger.json")
	_, err = run(t, addr, "export", file)
	require.NoError(t, err)
	_, err = run(t, addr, "withdraw", "2", "200")
	require.NoError(t, err)
	_, err = run(t, addr, "close-account", "2")
	require.NoError(t, err)
	_, err = run(t, addr, "import", file)
	require.NoError(t, err)

	out, err = run(t, addr, "account", "2")
	require.NoError(t, err)
	var acc domain.Account
	require.NoError(t, json.Unmarshal([]byte(out), &acc))
	assert.False(t, acc.Closed)
	assert.Equal(t, int64(200), acc.Balance)

	// 伺服器沒有設定快照儲存
	_, err = run(t, addr, "save")
	assert.ErrorContains(t, err, "snapshot store not configured")

	_, err = run(t, addr, "withdraw", "2", "999")
	assert.ErrorContains(t, err, "insufficient funds")
	_, err = run(t, addr, "record", "bad-entry")
	assert.ErrorContains(t, err, "account:debit:credit")
}

func TestLedgerctl_Bench(t *testing.T) {
	addr := startServer(t)

	out, err := run(t, addr, "bench", "--count", "200", "--concurrency", "20", "--amount", "5")
	require.NoError(t, err)

	var res benchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 200, res.Requests)
	assert.Zero(t, res.Failed)

	out, err = run(t, addr, "balance", "2")
	require.NoError(t, err)
	var bal grpc_adapter.BalanceResponse
	require.NoError(t, json.Unmarshal([]byte(out), &bal))
	assert.Equal(t, int64(1000), bal.Balance)
}

func TestParseEntry(t *testing.T) {
	e, err := parseEntry("3:10:0")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionEntry{AccountID: 3, Debit: 10}, e)

	_, err = parseEntry("3:x:0")
	assert.Error(t, err)
	_, err = parseEntry("3:1")
	assert.Error(t, err)
}
