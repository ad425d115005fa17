package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

// ErrSnapshotNotFound 儲存空間中沒有指定的快照
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSnapshotStoreNotConfigured 沒有設定快照儲存時呼叫 Save/Load
var ErrSnapshotStoreNotConfigured = errors.New("snapshot store not configured")

// SnapshotStore 快照的持久化儲存 (檔案、MySQL、Postgres、Redis)
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// EventPublisher 交易事件的發布端
// 發布失敗不影響已提交的交易
type EventPublisher interface {
	Publish(ctx context.Context, event TransactionEvent) error
}

// EventType 事件類型
type EventType string

const (
	EventDeposit    EventType = "deposit"
	EventWithdrawal EventType = "withdrawal"
	EventTransfer   EventType = "transfer"
)

// TransactionEvent 交易提交後對外發布的事件
type TransactionEvent struct {
	EventID     uuid.UUID            `json:"event_id"`
	Type        EventType            `json:"type"`
	TxID        domain.TransactionID `json:"tx_id"`
	AccountID   *domain.AccountID    `json:"account_id,omitempty"`
	FromID      *domain.AccountID    `json:"from_id,omitempty"`
	ToID        *domain.AccountID    `json:"to_id,omitempty"`
	Amount      int64                `json:"amount"`
	Description string               `json:"description,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// Key 分區用的 key: 單一帳戶為帳號，轉帳為 "from->to"
func (e *TransactionEvent) Key() string {
	switch {
	case e.FromID != nil && e.ToID != nil:
		return formatID(*e.FromID) + "->" + formatID(*e.ToID)
	case e.AccountID != nil:
		return formatID(*e.AccountID)
	default:
		return e.EventID.String()
	}
}

func formatID(id domain.AccountID) string {
	return strconv.FormatUint(uint64(id), 10)
}
