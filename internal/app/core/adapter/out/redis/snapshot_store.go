package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// keyPrefix 快照在 Redis 中的 key 前綴
const keyPrefix = "ledger:snapshot:"

// SnapshotStore 以 SET/GET 保存快照，同名快照直接覆蓋
type SnapshotStore struct {
	client redis.Cmdable
}

func NewSnapshotStore(client redis.Cmdable) *SnapshotStore {
	return &SnapshotStore{client: client}
}

func snapshotKey(key string) string {
	return keyPrefix + key
}

// Save 寫入快照 (不過期)
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, snapshotKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", snapshotKey(key), err)
	}
	return nil
}

// Load 讀取快照，key 不存在時回傳 usecase.ErrSnapshotNotFound
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, snapshotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", snapshotKey(key), err)
	}
	return data, nil
}

var _ usecase.SnapshotStore = (*SnapshotStore)(nil)
