package http

import (
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

type createAccountRequest struct {
	Owner    string `json:"owner" validate:"required,max=128"`
	Initial  int64  `json:"initial" validate:"gte=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type createAccountResponse struct {
	ID       domain.AccountID `json:"id"`
	Currency domain.Currency  `json:"currency"`
}

// amountRequest 存款 / 提款，ID 用指標才能區分 "沒給" 與帳號 0
type amountRequest struct {
	ID          *domain.AccountID `json:"id" validate:"required"`
	Amount      int64             `json:"amount" validate:"gt=0"`
	Description string            `json:"description" validate:"max=256"`
}

type transferRequest struct {
	From        *domain.AccountID `json:"from" validate:"required"`
	To          *domain.AccountID `json:"to" validate:"required"`
	Amount      int64             `json:"amount" validate:"gt=0"`
	Description string            `json:"description" validate:"max=256"`
}

type entryRequest struct {
	AccountID *domain.AccountID `json:"account_id" validate:"required"`
	Debit     int64             `json:"debit" validate:"gte=0"`
	Credit    int64             `json:"credit" validate:"gte=0"`
}

type recordTransactionRequest struct {
	Description string         `json:"description" validate:"max=256"`
	Entries     []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

type txResponse struct {
	TxID domain.TransactionID `json:"tx_id"`
}

type balanceResponse struct {
	ID        domain.AccountID `json:"id"`
	Balance   int64            `json:"balance"`
	Currency  domain.Currency  `json:"currency"`
	Formatted string           `json:"formatted"`
}

type reportResponse struct {
	TotalAssets    int64   `json:"total_assets"`
	RichestAccount *string `json:"richest_account,omitempty"`
	RichestBalance *int64  `json:"richest_balance,omitempty"`
}

// snapshotRequest 相容舊版的 {"path": ...}，以 path 的檔名當作 key
type snapshotRequest struct {
	Key  string `json:"key" validate:"max=128"`
	Path string `json:"path"`
}

type snapshotResponse struct {
	Key     string `json:"key"`
	Bytes   int    `json:"bytes,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
