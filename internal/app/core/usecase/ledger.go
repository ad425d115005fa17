package usecase

import (
	"context"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

// Ledger 是帳務系統的介面
type Ledger interface {
	// CreateAccount 開戶
	CreateAccount(ctx context.Context, owner string, initialBalance int64, currency domain.Currency) (domain.AccountID, error)
	// CloseAccount 關閉帳戶 (餘額必須為零)
	CloseAccount(ctx context.Context, id domain.AccountID) error
	// RecordTransaction 記錄一筆多分錄交易
	RecordTransaction(ctx context.Context, description string, entries []domain.TransactionEntry) (domain.TransactionID, error)
	// Deposit 存款
	Deposit(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error)
	// Withdraw 提款
	Withdraw(ctx context.Context, id domain.AccountID, amount int64, description string) (domain.TransactionID, error)
	// Transfer 轉帳
	Transfer(ctx context.Context, from, to domain.AccountID, amount int64, description string) (domain.TransactionID, error)

	// GetAccountBalance 取得帳戶餘額
	GetAccountBalance(ctx context.Context, id domain.AccountID) (int64, error)
	// GetAccount 取得帳戶資料
	GetAccount(ctx context.Context, id domain.AccountID) (domain.Account, error)
	// FindAccountByOwner 依擁有者找第一個帳戶
	FindAccountByOwner(ctx context.Context, owner string) (domain.Account, bool)
	// ListAccounts 列出帳戶，owner 為空時回傳全部
	ListAccounts(ctx context.Context, owner string) []domain.Account
	// ListTransactions 列出交易，accountID 為 nil 時回傳完整日誌
	ListTransactions(ctx context.Context, accountID *domain.AccountID) []domain.Transaction
	// Report 總資產與最富有的帳戶
	Report(ctx context.Context) Report

	// Snapshot 匯出完整狀態
	Snapshot(ctx context.Context, format domain.SnapshotFormat) ([]byte, error)
	// Restore 以快照取代目前狀態
	Restore(ctx context.Context, data []byte) error
}

// Report 帳本報表
type Report struct {
	TotalAssets int64
	Richest     *domain.Account
}
