package grpc

import (
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

// 以下訊息透過 JSON codec 傳輸，欄位名稱即為線上格式

type Empty struct{}

type CreateAccountRequest struct {
	Owner          string `json:"owner"`
	InitialBalance int64  `json:"initial_balance"`
	Currency       string `json:"currency,omitempty"`
}

type CreateAccountResponse struct {
	AccountID domain.AccountID `json:"account_id"`
}

// AccountRequest 只需要帳號的請求 (CloseAccount / GetBalance / GetAccount)
type AccountRequest struct {
	AccountID domain.AccountID `json:"account_id"`
}

// AmountRequest 存款與提款
type AmountRequest struct {
	AccountID   domain.AccountID `json:"account_id"`
	Amount      int64            `json:"amount"`
	Description string           `json:"description,omitempty"`
}

type TransferRequest struct {
	FromAccountID domain.AccountID `json:"from_account_id"`
	ToAccountID   domain.AccountID `json:"to_account_id"`
	Amount        int64            `json:"amount"`
	Description   string           `json:"description,omitempty"`
}

type RecordTransactionRequest struct {
	Description string                    `json:"description,omitempty"`
	Entries     []domain.TransactionEntry `json:"entries"`
}

// TransactionResponse 記帳結果
// Balance 為主要帳戶 (存提款帳戶 / 轉出帳戶) 在交易後的餘額，RecordTransaction 不填
type TransactionResponse struct {
	TxID    domain.TransactionID `json:"tx_id"`
	Balance *int64               `json:"balance,omitempty"`
}

type BalanceResponse struct {
	AccountID domain.AccountID `json:"account_id"`
	Balance   int64            `json:"balance"`
	Currency  domain.Currency  `json:"currency"`
	Formatted string           `json:"formatted"`
}

type AccountResponse struct {
	Account domain.Account `json:"account"`
}

type ListAccountsRequest struct {
	Owner string `json:"owner,omitempty"`
}

type ListAccountsResponse struct {
	Accounts []domain.Account `json:"accounts"`
}

type ListTransactionsRequest struct {
	// AccountID 為空時回傳整本日誌
	AccountID *domain.AccountID `json:"account_id,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type ReportResponse struct {
	TotalAssets int64           `json:"total_assets"`
	Richest     *domain.Account `json:"richest,omitempty"`
}

// SnapshotRequest 對設定好的快照儲存讀寫，Key 空白時使用預設 key
type SnapshotRequest struct {
	Key string `json:"key,omitempty"`
}

type SaveSnapshotResponse struct {
	Key   string `json:"key"`
	Bytes int    `json:"bytes"`
}

type ExportSnapshotRequest struct {
	Format string `json:"format,omitempty"`
}

// SnapshotData 快照原始內容 ([]byte 在 JSON 中為 base64)
type SnapshotData struct {
	Data []byte `json:"data"`
}
