package file

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/pkg/wal"
)

// EventLog 把交易事件以 JSON Lines 追加到本地檔案
type EventLog struct {
	wal *wal.WAL
}

// NewEventLog 開啟 (或建立) 事件檔
func NewEventLog(path string) (*EventLog, error) {
	w, err := wal.NewWAL(path)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	return &EventLog{wal: w}, nil
}

// Publish 寫入一筆事件並刷入硬碟
func (l *EventLog) Publish(ctx context.Context, event usecase.TransactionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.wal.Append(event)
}

// Replay 依寫入順序讀出所有事件
func (l *EventLog) Replay(fn func(usecase.TransactionEvent) error) error {
	return l.wal.ReadAll(func(raw []byte) error {
		var event usecase.TransactionEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		return fn(event)
	})
}

// Close 關閉事件檔
func (l *EventLog) Close() error {
	return l.wal.Close()
}

var _ usecase.EventPublisher = (*EventLog)(nil)
