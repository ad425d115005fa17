package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// StreamPublisher 以 XADD 把交易事件寫入 Redis Stream
type StreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStreamPublisher 建立 Stream 發布端
// maxLen > 0 時以近似修剪 (MAXLEN ~) 限制 stream 長度
func NewStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (p *StreamPublisher) args(event usecase.TransactionEvent) (*redis.XAddArgs, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		// 用 slice 固定欄位順序
		Values: []any{
			"type", string(event.Type),
			"key", event.Key(),
			"event", string(data),
		},
	}, nil
}

// Publish 發布一筆事件
func (p *StreamPublisher) Publish(ctx context.Context, event usecase.TransactionEvent) error {
	args, err := p.args(event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

var _ usecase.EventPublisher = (*StreamPublisher)(nil)
