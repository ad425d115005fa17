package domain

import (
	"math"
	"time"
)

// TransactionID 交易編號，由 Posting Engine 於提交時分配 (1, 2, 3...)
type TransactionID uint64

// TransactionEntry 單筆分錄
// 對帳戶餘額的影響: balance += Debit - Credit
type TransactionEntry struct {
	AccountID AccountID `json:"account_id"`
	Debit     int64     `json:"debit"`
	Credit    int64     `json:"credit"`
}

// Transaction 已提交的交易，寫入日誌後不可變更
type Transaction struct {
	ID          TransactionID      `json:"id"`
	Description string             `json:"description,omitempty"`
	Entries     []TransactionEntry `json:"entries"`
	Timestamp   time.Time          `json:"timestamp"`
}

// References 交易是否涉及指定帳戶
func (t *Transaction) References(id AccountID) bool {
	for _, e := range t.Entries {
		if e.AccountID == id {
			return true
		}
	}
	return false
}

// clone 深拷貝，避免呼叫端透過 slice 改到日誌
func (t *Transaction) clone() Transaction {
	c := *t
	c.Entries = append([]TransactionEntry(nil), t.Entries...)
	return c
}

// sumEntries 計算借貸總和，溢位時回傳 ok=false
func sumEntries(entries []TransactionEntry) (debits, credits int64, ok bool) {
	for _, e := range entries {
		if debits, ok = addInt64(debits, e.Debit); !ok {
			return 0, 0, false
		}
		if credits, ok = addInt64(credits, e.Credit); !ok {
			return 0, 0, false
		}
	}
	return debits, credits, true
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func subInt64(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}
