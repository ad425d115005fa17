package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// MutexLedger 是一個使用 RWMutex 保護的記憶體帳本
//
// 結構:
//
//	ledger: 帳本本體 (Aggregate Root)
//	mu: 讀寫鎖，查詢可並行，記帳與還原獨佔
//	opts: 還原快照時沿用的 Ledger 設定
type MutexLedger struct {
	ledger *domain.Ledger
	mu     sync.RWMutex
	opts   []domain.Option
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	ledger: 初始帳本，nil 時建立只有系統帳戶的新帳本
//	opts: 建立/還原 Ledger 時使用的設定
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(ledger *domain.Ledger, opts ...domain.Option) *MutexLedger {
	if ledger == nil {
		ledger = domain.NewLedger(opts...)
	}
	return &MutexLedger{
		ledger: ledger,
		opts:   opts,
	}
}

// write 在寫鎖內執行，整個記帳過程不會被其他操作看到一半
func (m *MutexLedger) write(fn func(l *domain.Ledger) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.ledger)
}

func (m *MutexLedger) read(fn func(l *domain.Ledger)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.ledger)
}

// CreateAccount 開戶
func (m *MutexLedger) CreateAccount(ctx context.Context, owner string, initialBalance int64, currency domain.Currency) (domain.AccountID, error) {
	var id domain.AccountID
	err := m.write(func(l *domain.Ledger) (err error) {
		id, err = l.CreateAccount(owner, initialBalance, currency)
		return err
	})
	return id, err
}

// CloseAccount 關閉帳戶
func (m *MutexLedger) CloseAccount(ctx context.Context, id domain.AccountID) error {
	return m.write(func(l *domain.Ledger) error {
		return l.CloseAccount(id)
	})
}

// RecordTransaction 記錄多分錄交易
//
// 參數:
//
//	ctx: 上下文
//	description: 交易描述
//	entries: 分錄
//
// 回傳:
//
//	domain.TransactionID: 交易編號
//	error: 驗證錯誤 (帳本狀態不變)
func (m *MutexLedger) RecordTransaction(ctx context.Context, description string, entries []domain.TransactionEntry) (domain.TransactionID, error) {
	var txID domain.TransactionID
	err := m.write(func(l *domain.Ledger) (err error) {
		txID, err = l.RecordTransaction(description, entries)
		return err
	})
	return txID, err
}

// Deposit 存款
func (m *MutexLedger) Deposit(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	var txID domain.TransactionID
	err := m.write(func(l *domain.Ledger) (err error) {
		txID, err = l.Deposit(id, amount, description)
		return err
	})
	return txID, err
}

// Withdraw 提款 (餘額檢查與記帳在同一把鎖內)
func (m *MutexLedger) Withdraw(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	var txID domain.TransactionID
	err := m.write(func(l *domain.Ledger) (err error) {
		txID, err = l.Withdraw(id, amount, description)
		return err
	})
	return txID, err
}

// Transfer 轉帳
func (m *MutexLedger) Transfer(ctx context.Context, from, to domain.AccountID, amount int64, description string) (domain.TransactionID, error) {
	var txID domain.TransactionID
	err := m.write(func(l *domain.Ledger) (err error) {
		txID, err = l.Transfer(from, to, amount, description)
		return err
	})
	return txID, err
}

// GetAccountBalance 取得指定帳戶的當前餘額
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//
// 回傳:
//
//	int64: 帳戶餘額
//	error: 查詢錯誤 (如帳戶不存在)
func (m *MutexLedger) GetAccountBalance(ctx context.Context, accountID domain.AccountID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.GetBalance(accountID)
}

// GetAccount 取得帳戶資料
func (m *MutexLedger) GetAccount(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.GetAccount(id)
}

// FindAccountByOwner 依擁有者找帳戶
func (m *MutexLedger) FindAccountByOwner(ctx context.Context, owner string) (acc domain.Account, ok bool) {
	m.read(func(l *domain.Ledger) {
		acc, ok = l.FindAccountByOwner(owner)
	})
	return acc, ok
}

// ListAccounts 列出帳戶
func (m *MutexLedger) ListAccounts(ctx context.Context, owner string) (out []domain.Account) {
	m.read(func(l *domain.Ledger) {
		out = l.Accounts(owner)
	})
	return out
}

// ListTransactions 列出交易
func (m *MutexLedger) ListTransactions(ctx context.Context, accountID *domain.AccountID) (out []domain.Transaction) {
	m.read(func(l *domain.Ledger) {
		if accountID == nil {
			out = l.Transactions()
			return
		}
		out = l.TransactionsForAccount(*accountID)
	})
	return out
}

// Report 在同一把讀鎖內計算總資產與最富有帳戶
func (m *MutexLedger) Report(ctx context.Context) (r usecase.Report) {
	m.read(func(l *domain.Ledger) {
		r.TotalAssets = l.TotalAssets()
		if acc, ok := l.RichestAccount(); ok {
			r.Richest = &acc
		}
	})
	return r
}

// Snapshot 持有讀鎖編碼，回傳的 bytes 可在鎖外寫入儲存
func (m *MutexLedger) Snapshot(ctx context.Context, format domain.SnapshotFormat) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Serialize(format)
}

// Restore 先在鎖外解析快照，成功後才在寫鎖內整個替換
func (m *MutexLedger) Restore(ctx context.Context, data []byte) error {
	restored, err := domain.Deserialize(data, m.opts...)
	if err != nil {
		return err
	}
	return m.write(func(*domain.Ledger) error {
		m.ledger = restored
		return nil
	})
}

var _ usecase.Ledger = (*MutexLedger)(nil)
