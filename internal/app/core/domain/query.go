package domain

import (
	"maps"
	"slices"
)

// 以下皆為唯讀查詢，回傳值都是複本

// GetBalance 取得帳戶餘額
func (l *Ledger) GetBalance(id AccountID) (int64, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return 0, accountErr(ErrAccountNotFound, id)
	}
	return acc.Balance, nil
}

// GetAccount 取得帳戶資料
func (l *Ledger) GetAccount(id AccountID) (Account, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return Account{}, accountErr(ErrAccountNotFound, id)
	}
	return *acc, nil
}

// FindAccountByOwner 依擁有者名稱找第一個帳戶 (編號最小者)
func (l *Ledger) FindAccountByOwner(owner string) (Account, bool) {
	for _, id := range l.sortedAccountIDs() {
		if acc := l.accounts[id]; acc.Owner == owner {
			return *acc, true
		}
	}
	return Account{}, false
}

// Accounts 列出帳戶 (依編號排序)，owner 為空時回傳全部
func (l *Ledger) Accounts(owner string) []Account {
	out := make([]Account, 0, len(l.accounts))
	for _, id := range l.sortedAccountIDs() {
		acc := l.accounts[id]
		if owner != "" && acc.Owner != owner {
			continue
		}
		out = append(out, *acc)
	}
	return out
}

// Transactions 完整交易日誌 (依提交順序)
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.transactions))
	for i := range l.transactions {
		out[i] = l.transactions[i].clone()
	}
	return out
}

// TransactionsForAccount 涉及指定帳戶的交易，保持日誌順序
func (l *Ledger) TransactionsForAccount(id AccountID) []Transaction {
	out := make([]Transaction, 0)
	for i := range l.transactions {
		if l.transactions[i].References(id) {
			out = append(out, l.transactions[i].clone())
		}
	}
	return out
}

// TotalAssets 所有非系統帳戶的餘額總和
// 帳本封閉時恆等於 -系統帳戶餘額
//
// 所有餘額都在 [-MaxInt64, MaxInt64] 內，真實總和必可用 int64 表示，
// 中途的溢位在二補數下會抵銷，結果是精確的
func (l *Ledger) TotalAssets() int64 {
	var total int64
	for id, acc := range l.accounts {
		if id == l.systemAccountID {
			continue
		}
		total += acc.Balance
	}
	return total
}

// RichestAccount 餘額最高的非系統帳戶，同額時取編號最小者
func (l *Ledger) RichestAccount() (Account, bool) {
	var richest *Account
	for _, id := range l.sortedAccountIDs() {
		if id == l.systemAccountID {
			continue
		}
		if acc := l.accounts[id]; richest == nil || acc.Balance > richest.Balance {
			richest = acc
		}
	}
	if richest == nil {
		return Account{}, false
	}
	return *richest, true
}

func (l *Ledger) sortedAccountIDs() []AccountID {
	return slices.Sorted(maps.Keys(l.accounts))
}
