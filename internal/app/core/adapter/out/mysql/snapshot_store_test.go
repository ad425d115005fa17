package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/pkg/mysql"
)

func newMockStore(t *testing.T) (*SnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := mysql.NewClientFromDB(db, "silent")
	require.NoError(t, err)
	return NewSnapshotStore(client), mock
}

func TestSnapshotStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO `ledger_snapshots`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(context.Background(), "ledger", []byte(`{"version":1}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_SaveError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO `ledger_snapshots`").
		WillReturnError(errors.New("disk full"))

	err := store.Save(context.Background(), "ledger", []byte("x"))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Load(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "data", "size", "created_at"}).
		AddRow(7, "ledger", []byte("latest"), 6, int64(1700000000000))
	mock.ExpectQuery("SELECT \\* FROM `ledger_snapshots` WHERE name = \\?").
		WillReturnRows(rows)

	data, err := store.Load(context.Background(), "ledger")
	require.NoError(t, err)
	assert.Equal(t, []byte("latest"), data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_LoadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `ledger_snapshots`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "data", "size", "created_at"}))

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
