package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

// DefaultSnapshotKey 沒有指定 key 時使用的快照名稱
const DefaultSnapshotKey = "ledger"

// CoreUseCase 是核心業務邏輯層
//
// 所有記帳都委派給 Ledger；存款/提款/轉帳成功後，於帳本鎖之外發布事件。
// 快照的 I/O 也都在鎖外進行。
type CoreUseCase struct {
	ledger    Ledger
	publisher EventPublisher
	store     SnapshotStore
	format    domain.SnapshotFormat
	now       func() time.Time
}

// CoreOption CoreUseCase 設定
type CoreOption func(*CoreUseCase)

// WithPublisher 設定事件發布端
func WithPublisher(p EventPublisher) CoreOption {
	return func(c *CoreUseCase) {
		c.publisher = p
	}
}

// WithSnapshotStore 設定快照儲存與編碼格式
func WithSnapshotStore(store SnapshotStore, format domain.SnapshotFormat) CoreOption {
	return func(c *CoreUseCase) {
		c.store = store
		c.format = format
	}
}

func NewCoreUseCase(ledger Ledger, opts ...CoreOption) *CoreUseCase {
	c := &CoreUseCase{
		ledger: ledger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAccount 開戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, owner string, initialBalance int64, currency domain.Currency) (domain.AccountID, error) {
	return c.ledger.CreateAccount(ctx, owner, initialBalance, currency)
}

// CloseAccount 關閉帳戶
func (c *CoreUseCase) CloseAccount(ctx context.Context, id domain.AccountID) error {
	return c.ledger.CloseAccount(ctx, id)
}

// RecordTransaction 記錄多分錄交易 (不發布事件)
func (c *CoreUseCase) RecordTransaction(ctx context.Context, description string, entries []domain.TransactionEntry) (domain.TransactionID, error) {
	return c.ledger.RecordTransaction(ctx, description, entries)
}

// Deposit 存款
func (c *CoreUseCase) Deposit(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	txID, err := c.ledger.Deposit(ctx, id, amount, description)
	if err != nil {
		return 0, err
	}
	c.publish(ctx, TransactionEvent{
		Type:        EventDeposit,
		TxID:        txID,
		AccountID:   &id,
		Amount:      amount,
		Description: description,
	})
	return txID, nil
}

// Withdraw 提款
func (c *CoreUseCase) Withdraw(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	txID, err := c.ledger.Withdraw(ctx, id, amount, description)
	if err != nil {
		return 0, err
	}
	c.publish(ctx, TransactionEvent{
		Type:        EventWithdrawal,
		TxID:        txID,
		AccountID:   &id,
		Amount:      amount,
		Description: description,
	})
	return txID, nil
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, from, to domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	txID, err := c.ledger.Transfer(ctx, from, to, amount, description)
	if err != nil {
		return 0, err
	}
	c.publish(ctx, TransactionEvent{
		Type:        EventTransfer,
		TxID:        txID,
		FromID:      &from,
		ToID:        &to,
		Amount:      amount,
		Description: description,
	})
	return txID, nil
}

// publish 盡力發布，錯誤由 publisher 自行處理，不回傳給呼叫端
func (c *CoreUseCase) publish(ctx context.Context, event TransactionEvent) {
	if c.publisher == nil {
		return
	}
	event.EventID = uuid.New()
	event.OccurredAt = c.now().UTC()
	_ = c.publisher.Publish(ctx, event)
}

// GetAccountBalance 取得帳戶餘額
func (c *CoreUseCase) GetAccountBalance(ctx context.Context, accountID domain.AccountID) (int64, error) {
	return c.ledger.GetAccountBalance(ctx, accountID)
}

// GetAccount 取得帳戶
func (c *CoreUseCase) GetAccount(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	return c.ledger.GetAccount(ctx, id)
}

// FindAccountByOwner 依擁有者找帳戶
func (c *CoreUseCase) FindAccountByOwner(ctx context.Context, owner string) (domain.Account, bool) {
	return c.ledger.FindAccountByOwner(ctx, owner)
}

// ListAccounts 列出帳戶
func (c *CoreUseCase) ListAccounts(ctx context.Context, owner string) []domain.Account {
	return c.ledger.ListAccounts(ctx, owner)
}

// ListTransactions 列出交易
func (c *CoreUseCase) ListTransactions(ctx context.Context, accountID *domain.AccountID) []domain.Transaction {
	return c.ledger.ListTransactions(ctx, accountID)
}

// Report 報表
func (c *CoreUseCase) Report(ctx context.Context) Report {
	return c.ledger.Report(ctx)
}

// Export 匯出快照 bytes (不寫入儲存)
func (c *CoreUseCase) Export(ctx context.Context, format domain.SnapshotFormat) ([]byte, error) {
	return c.ledger.Snapshot(ctx, format)
}

// Import 以快照 bytes 取代帳本
func (c *CoreUseCase) Import(ctx context.Context, data []byte) error {
	return c.ledger.Restore(ctx, data)
}

// Save 取得快照後 (已釋放鎖) 寫入儲存
//
// 回傳:
//
//	int: 寫入的 bytes 數
//	error: 編碼或儲存錯誤
func (c *CoreUseCase) Save(ctx context.Context, key string) (int, error) {
	if c.store == nil {
		return 0, ErrSnapshotStoreNotConfigured
	}
	data, err := c.ledger.Snapshot(ctx, c.format)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.store.Save(ctx, snapshotKey(key), data); err != nil {
		return 0, fmt.Errorf("save snapshot %q: %w", snapshotKey(key), err)
	}
	return len(data), nil
}

// Load 從儲存讀取快照後整個替換帳本
func (c *CoreUseCase) Load(ctx context.Context, key string) error {
	if c.store == nil {
		return ErrSnapshotStoreNotConfigured
	}
	data, err := c.store.Load(ctx, snapshotKey(key))
	if err != nil {
		return fmt.Errorf("load snapshot %q: %w", snapshotKey(key), err)
	}
	return c.ledger.Restore(ctx, data)
}

func snapshotKey(key string) string {
	if key == "" {
		return DefaultSnapshotKey
	}
	return key
}
