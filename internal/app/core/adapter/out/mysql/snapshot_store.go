package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/pkg/mysql"
)

// sqlSnapshot 對應資料庫的 ledger_snapshots 表
// 同一個 name 可以有多筆，最新一筆 (id 最大) 為有效快照
type sqlSnapshot struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;size:128;index"`
	Data      []byte `gorm:"column:data;type:longblob"`
	Size      int    `gorm:"column:size"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // 自動寫入時間
}

func (*sqlSnapshot) TableName() string {
	return "ledger_snapshots"
}

// SnapshotStore 把帳本快照存進 MySQL
type SnapshotStore struct {
	client *mysql.Client
}

func NewSnapshotStore(client *mysql.Client) *SnapshotStore {
	return &SnapshotStore{
		client: client,
	}
}

// Migrate 建立 / 更新 ledger_snapshots 表
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	if err := s.client.DB().WithContext(ctx).AutoMigrate(&sqlSnapshot{}); err != nil {
		return fmt.Errorf("migrate ledger_snapshots: %w", err)
	}
	return nil
}

// Save 新增一筆快照
//
// 參數:
//
//	ctx: 上下文
//	key: 快照名稱
//	data: 已編碼的快照
//
// 回傳:
//
//	error: 寫入錯誤
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	row := sqlSnapshot{
		Name: key,
		Data: data,
		Size: len(data),
	}
	if err := s.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Load 讀取指定名稱最新的快照
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row sqlSnapshot
	err := s.client.DB().WithContext(ctx).
		Where("name = ?", key).
		Order("id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return row.Data, nil
}

var _ usecase.SnapshotStore = (*SnapshotStore)(nil)
