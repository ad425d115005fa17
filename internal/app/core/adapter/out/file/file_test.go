package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

func TestSnapshotStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "snapshots")
	store, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	_, err = store.Load(ctx, "ledger")
	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)

	require.NoError(t, store.Save(ctx, "ledger", []byte("v1")))
	require.NoError(t, store.Save(ctx, "ledger", []byte("v2")))

	data, err := store.Load(ctx, "ledger")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	// 不留下暫存檔
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger.snapshot", entries[0].Name())
}

func TestSnapshotStore_PathStaysInDir(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(store.dir, "passwd.snapshot"), store.Path("../../etc/passwd"))
	assert.Equal(t, filepath.Join(store.dir, "ledger.snapshot"), store.Path(""))
	assert.Equal(t, filepath.Join(store.dir, "daily.snapshot"), store.Path("daily.snapshot"))
}

func TestEventLog_PublishReplay(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewEventLog(path)
	require.NoError(t, err)

	from, to := domain.AccountID(1), domain.AccountID(2)
	events := []usecase.TransactionEvent{
		{EventID: uuid.New(), Type: usecase.EventDeposit, TxID: 1, AccountID: &from, Amount: 100},
		{EventID: uuid.New(), Type: usecase.EventTransfer, TxID: 2, FromID: &from, ToID: &to, Amount: 40},
	}
	for _, e := range events {
		require.NoError(t, log.Publish(ctx, e))
	}
	require.NoError(t, log.Close())

	log, err = NewEventLog(path)
	require.NoError(t, err)
	defer log.Close()

	var got []usecase.TransactionEvent
	require.NoError(t, log.Replay(func(e usecase.TransactionEvent) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 2)
	assert.Equal(t, events[0].EventID, got[0].EventID)
	assert.Equal(t, "1->2", got[1].Key())
	assert.Equal(t, int64(40), got[1].Amount)
}
