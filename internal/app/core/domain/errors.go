package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountClosed 帳戶已關閉
	ErrAccountClosed = errors.New("account closed")

	// ErrSelfTransfer 不可轉帳給自己
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNonZeroBalance 餘額不為零，不可關閉帳戶
	ErrNonZeroBalance = errors.New("balance not zero")

	// ErrEmptyTransaction 交易至少需要一筆分錄
	ErrEmptyTransaction = errors.New("transaction must have at least one entry")

	// ErrUnbalancedTransaction 借貸不平衡
	ErrUnbalancedTransaction = errors.New("unbalanced transaction")

	// ErrBalanceOverflow 餘額計算溢位
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrIDOverflow 帳戶編號用盡
	ErrIDOverflow = errors.New("account id overflow")

	// ErrTxIDOverflow 交易編號用盡
	ErrTxIDOverflow = errors.New("transaction id overflow")

	// ErrMalformedSnapshot 快照格式錯誤
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrInvalidCurrency 不支援的幣別
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrSystemAccount 系統帳戶不可由使用者操作 (例如關閉)
	ErrSystemAccount = errors.New("operation not permitted on system account")
)

// AccountError 帶有帳戶資訊的錯誤，Kind 為上面其中一個 sentinel
type AccountError struct {
	Kind      error
	AccountID AccountID
	// Balance 發生錯誤時的帳戶餘額 (NonZeroBalance / InsufficientFunds)
	Balance int64
	// Amount 請求金額 (InsufficientFunds)
	Amount int64
}

func (e *AccountError) Error() string {
	switch e.Kind {
	case ErrNonZeroBalance:
		return fmt.Sprintf("account %d: %v (%d)", e.AccountID, e.Kind, e.Balance)
	case ErrInsufficientFunds:
		return fmt.Sprintf("account %d: %v (balance %d, requested %d)", e.AccountID, e.Kind, e.Balance, e.Amount)
	default:
		return fmt.Sprintf("account %d: %v", e.AccountID, e.Kind)
	}
}

func (e *AccountError) Unwrap() error {
	return e.Kind
}

func accountErr(kind error, id AccountID) *AccountError {
	return &AccountError{Kind: kind, AccountID: id}
}

// UnbalancedError 借貸總和不相等
type UnbalancedError struct {
	DebitSum  int64
	CreditSum int64
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%v: debit %d credit %d", ErrUnbalancedTransaction, e.DebitSum, e.CreditSum)
}

func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalancedTransaction
}

// SnapshotError 快照解析失敗的原因
type SnapshotError struct {
	Reason string
	Err    error
}

func (e *SnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrMalformedSnapshot, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrMalformedSnapshot, e.Reason)
}

// Unwrap 同時可比對 ErrMalformedSnapshot 與底層錯誤
func (e *SnapshotError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedSnapshot, e.Err}
	}
	return []error{ErrMalformedSnapshot}
}

func malformed(format string, args ...any) *SnapshotError {
	return &SnapshotError{Reason: fmt.Sprintf(format, args...)}
}
