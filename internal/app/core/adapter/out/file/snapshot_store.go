package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/pkg/wal"
)

// snapshotExt 快照檔副檔名
const snapshotExt = ".snapshot"

// SnapshotStore 把快照存成目錄下的檔案
//
// 寫入先寫到同目錄的暫存檔、fsync 後再 rename，
// 讀取端不會看到寫到一半的快照。
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore 建立檔案快照儲存，目錄不存在時自動建立
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, wal.FileModeExecutable); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &SnapshotStore{dir: dir}, nil
}

// Path 回傳 key 對應的檔案路徑，key 只取 base name，不能跳出目錄
func (s *SnapshotStore) Path(key string) string {
	name := filepath.Base(filepath.Clean("/" + key))
	if name == "/" || name == "." {
		name = usecase.DefaultSnapshotKey
	}
	if !strings.HasSuffix(name, snapshotExt) {
		name += snapshotExt
	}
	return filepath.Join(s.dir, name)
}

// Save 原子寫入快照
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	// rename 成功後 tmp 已不存在，Remove 失敗可忽略
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), wal.FileModeReadOnly); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load 讀取快照，檔案不存在時回傳 usecase.ErrSnapshotNotFound
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, usecase.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

var _ usecase.SnapshotStore = (*SnapshotStore)(nil)
