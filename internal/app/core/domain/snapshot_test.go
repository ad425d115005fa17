package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedLedger(t *testing.T) *Ledger {
	t.Helper()
	l := newTestLedger()
	alice, err := l.CreateAccount("Alice", 0, CurrencyNGN)
	require.NoError(t, err)
	bob, err := l.CreateAccount("Bob", 2000, CurrencyUSD)
	require.NoError(t, err)
	closed, err := l.CreateAccount("Closed", 0, CurrencyEUR)
	require.NoError(t, err)

	_, err = l.Deposit(alice, 1000, "first")
	require.NoError(t, err)
	_, err = l.Transfer(bob, alice, 300, "")
	require.NoError(t, err)
	_, err = l.Withdraw(alice, 50, "atm")
	require.NoError(t, err)
	require.NoError(t, l.CloseAccount(closed))
	return l
}

func TestSnapshot_RoundTrip(t *testing.T) {
	for _, format := range []SnapshotFormat{FormatJSON, FormatProto} {
		t.Run(format.String(), func(t *testing.T) {
			orig := populatedLedger(t)

			data, err := orig.Serialize(format)
			require.NoError(t, err)

			restored, err := Deserialize(data)
			require.NoError(t, err)

			assert.Equal(t, orig.Accounts(""), restored.Accounts(""))
			assert.Equal(t, orig.Transactions(), restored.Transactions())
			assert.Equal(t, orig.NextAccountID(), restored.NextAccountID())
			assert.Equal(t, orig.NextTransactionID(), restored.NextTransactionID())
			assert.Equal(t, orig.SystemAccountID(), restored.SystemAccountID())
			assert.Equal(t, orig.TotalAssets(), restored.TotalAssets())

			// 還原後繼續記帳，編號接續
			nextID, err := restored.CreateAccount("Carol", 0, CurrencyGBP)
			require.NoError(t, err)
			assert.Equal(t, orig.NextAccountID(), nextID)
			txID, err := restored.Deposit(nextID, 1, "")
			require.NoError(t, err)
			assert.Equal(t, orig.NextTransactionID(), txID)

			// 關閉狀態也要保留
			_, err = restored.Deposit(3, 1, "")
			assert.ErrorIs(t, err, ErrAccountClosed)
		})
	}
}

func TestSnapshot_ProtoKeepsTimestampsOutsideUnixNanoRange(t *testing.T) {
	stamps := []time.Time{
		{},
		time.Date(1500, 3, 1, 8, 30, 0, 123456789, time.UTC),
		time.Date(2900, 12, 31, 23, 59, 59, 999999999, time.UTC),
		time.Date(1969, 12, 31, 23, 59, 59, 500, time.UTC),
	}
	for _, ts := range stamps {
		t.Run(ts.Format(time.RFC3339Nano), func(t *testing.T) {
			l := NewLedger(WithClock(func() time.Time { return ts }))
			id, err := l.CreateAccount("Alice", 0, CurrencyNGN)
			require.NoError(t, err)
			_, err = l.Deposit(id, 10, "")
			require.NoError(t, err)

			data, err := l.Serialize(FormatProto)
			require.NoError(t, err)
			restored, err := Deserialize(data)
			require.NoError(t, err)

			txs := restored.Transactions()
			require.Len(t, txs, 1)
			assert.True(t, ts.Equal(txs[0].Timestamp), "got %s", txs[0].Timestamp)
			assert.Equal(t, ts.IsZero(), txs[0].Timestamp.IsZero())
		})
	}
}

func TestSnapshot_JSONWithoutTimestampSurvivesProto(t *testing.T) {
	l, err := Deserialize([]byte(`{
		"version": 1,
		"accounts": [
			{"id": 0, "owner": "BANK", "balance": -5, "currency": "NGN"},
			{"id": 1, "owner": "A", "balance": 5, "currency": "NGN"}
		],
		"transactions": [{"id": 1, "entries": [{"account_id": 1, "debit": 5}, {"account_id": 0, "credit": 5}]}],
		"next_account_id": 2,
		"next_tx_id": 2,
		"bank_account_id": 0
	}`))
	require.NoError(t, err)

	data, err := l.Serialize(FormatProto)
	require.NoError(t, err)
	restored, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, l.Transactions(), restored.Transactions())
}

func TestSnapshot_JSONIsSelfDescribing(t *testing.T) {
	data, err := populatedLedger(t).Serialize(FormatJSON)
	require.NoError(t, err)

	s := string(data)
	for _, key := range []string{`"version": 1`, `"accounts"`, `"transactions"`, `"next_account_id"`, `"next_tx_id"`, `"bank_account_id"`} {
		assert.Contains(t, s, key)
	}
}

func TestSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "garbage", data: "not a snapshot"},
		{name: "truncated json", data: `{"version": 1, "accounts": [`},
		{name: "wrong version", data: `{"version": 9, "accounts": [{"id":0,"owner":"BANK","currency":"NGN"}], "next_account_id": 1, "next_tx_id": 1}`},
		{name: "missing system account", data: `{"version": 1, "accounts": [], "next_account_id": 1, "next_tx_id": 1}`},
		{name: "duplicate account", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","currency":"NGN"},{"id":0,"owner":"X","currency":"NGN"}], "next_account_id": 1, "next_tx_id": 1}`},
		{name: "bad currency", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","currency":"XXX"}], "next_account_id": 1, "next_tx_id": 1}`},
		{name: "counter behind accounts", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","currency":"NGN"},{"id":5,"owner":"A","currency":"NGN"}], "next_account_id": 2, "next_tx_id": 1}`},
		{name: "empty entries", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","currency":"NGN"}], "transactions": [{"id":1,"entries":[],"timestamp":"2024-01-01T00:00:00Z"}], "next_account_id": 1, "next_tx_id": 2}`},
		{name: "tx out of order", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","currency":"NGN"}], "transactions": [{"id":2,"entries":[{"account_id":0}],"timestamp":"2024-01-01T00:00:00Z"},{"id":1,"entries":[{"account_id":0}],"timestamp":"2024-01-01T00:00:00Z"}], "next_account_id": 1, "next_tx_id": 3}`},
		{name: "balance out of range", data: `{"version": 1, "accounts": [{"id":0,"owner":"BANK","balance":-9223372036854775808,"currency":"NGN"}], "next_account_id": 1, "next_tx_id": 1}`},
		{name: "truncated proto", data: string(protoMagic) + "\x12\x40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestSnapshot_DoesNotRevalidateBalances(t *testing.T) {
	// 快照中的餘額與日誌不一致也照樣載入
	l, err := Deserialize([]byte(`{
		"version": 1,
		"accounts": [
			{"id": 0, "owner": "BANK", "balance": 0, "currency": "NGN"},
			{"id": 1, "owner": "A", "balance": 777, "currency": "NGN"}
		],
		"transactions": [{"id": 1, "entries": [{"account_id": 1, "debit": 5, "credit": 0}], "timestamp": "2024-01-01T00:00:00Z"}],
		"next_account_id": 2,
		"next_tx_id": 2,
		"bank_account_id": 0
	}`))
	require.NoError(t, err)
	assert.Equal(t, int64(777), mustBalance(t, l, 1))
}

func TestParseSnapshotFormat(t *testing.T) {
	f, err := ParseSnapshotFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseSnapshotFormat("PROTO")
	require.NoError(t, err)
	assert.Equal(t, FormatProto, f)

	_, err = ParseSnapshotFormat("xml")
	assert.Error(t, err)
}

func TestCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, c)

	_, err = ParseCurrency("BTC")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	assert.Equal(t, "₦10.00", CurrencyNGN.Format(1000))
	assert.Equal(t, "£-0.05", CurrencyGBP.Format(-5))
}
