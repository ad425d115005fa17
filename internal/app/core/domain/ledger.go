package domain

import (
	"math"
	"time"
)

// OpeningBalanceDescription 開戶初始餘額的交易描述
const OpeningBalanceDescription = "opening balance"

// Ledger 帳本 (Aggregate Root)
//
// 結構:
//
//	accounts: 帳戶資料 Map (含系統帳戶 0)
//	transactions: 已提交的交易日誌，只會 append
//	nextAccountID / nextTxID: 下一個要分配的編號
//
// Ledger 本身不做同步，由持有者 (memory.MutexLedger) 負責加鎖
type Ledger struct {
	accounts        map[AccountID]*Account
	transactions    []Transaction
	nextAccountID   AccountID
	nextTxID        TransactionID
	systemAccountID AccountID

	now func() time.Time
}

// Option Ledger 設定
type Option func(*Ledger)

// WithClock 指定時間來源 (測試用)
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger 建立一個只有系統帳戶的新帳本
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		accounts:        make(map[AccountID]*Account),
		transactions:    make([]Transaction, 0),
		nextAccountID:   1,
		nextTxID:        1,
		systemAccountID: SystemAccountID,
	}
	// 系統帳戶不限幣別，預設 NGN
	l.accounts[SystemAccountID] = newAccount(SystemAccountID, SystemAccountOwner, CurrencyNGN)
	l.applyOptions(opts)
	return l
}

func (l *Ledger) applyOptions(opts []Option) {
	l.now = time.Now
	for _, opt := range opts {
		opt(l)
	}
}

// SystemAccountID 系統帳戶編號
func (l *Ledger) SystemAccountID() AccountID {
	return l.systemAccountID
}

// NextAccountID 下一個帳戶編號
func (l *Ledger) NextAccountID() AccountID {
	return l.nextAccountID
}

// NextTransactionID 下一個交易編號
func (l *Ledger) NextTransactionID() TransactionID {
	return l.nextTxID
}

// CreateAccount 開戶
//
// 非零的初始餘額會以系統帳戶為對手方記一筆 "opening balance" 交易，
// 讓 TotalAssets 永遠等於 -系統帳戶餘額
func (l *Ledger) CreateAccount(owner string, initialBalance int64, currency Currency) (AccountID, error) {
	if !currency.Valid() {
		return 0, ErrInvalidCurrency
	}
	if initialBalance < 0 {
		return 0, ErrInvalidAmount
	}
	if l.nextAccountID == math.MaxUint32 {
		return 0, ErrIDOverflow
	}
	if initialBalance > 0 {
		// 先確認開戶交易一定能寫入，避免帳戶建好了交易卻失敗
		if l.nextTxID == math.MaxUint64 {
			return 0, ErrTxIDOverflow
		}
		if _, ok := subInt64(l.accounts[l.systemAccountID].Balance, initialBalance); !ok {
			return 0, accountErr(ErrBalanceOverflow, l.systemAccountID)
		}
	}

	id := l.nextAccountID
	l.accounts[id] = newAccount(id, owner, currency)
	l.nextAccountID++

	if initialBalance > 0 {
		entries := []TransactionEntry{
			{AccountID: id, Debit: initialBalance},
			{AccountID: l.systemAccountID, Credit: initialBalance},
		}
		if _, err := l.RecordTransaction(OpeningBalanceDescription, entries); err != nil {
			// 上面已檢查過，理論上不會發生；仍然撤銷開戶保持原子性
			delete(l.accounts, id)
			l.nextAccountID--
			return 0, err
		}
	}
	return id, nil
}

// CloseAccount 關閉帳戶，餘額必須為零
// 對已關閉的帳戶再次關閉視為成功
func (l *Ledger) CloseAccount(id AccountID) error {
	acc, ok := l.accounts[id]
	if !ok {
		return accountErr(ErrAccountNotFound, id)
	}
	if id == l.systemAccountID {
		return accountErr(ErrSystemAccount, id)
	}
	if acc.Balance != 0 {
		return &AccountError{Kind: ErrNonZeroBalance, AccountID: id, Balance: acc.Balance}
	}
	acc.Closed = true
	return nil
}

// RecordTransaction 唯一會改變餘額的入口
//
// 參數:
//
//	description: 交易描述 (可為空)
//	entries: 分錄，借貸總和必須相等
//
// 回傳:
//
//	TransactionID: 新交易編號
//	error: 驗證失敗或溢位，失敗時帳本狀態不變
func (l *Ledger) RecordTransaction(description string, entries []TransactionEntry) (TransactionID, error) {
	// 1. 結構檢查
	if len(entries) == 0 {
		return 0, ErrEmptyTransaction
	}
	for _, e := range entries {
		if e.Debit < 0 || e.Credit < 0 {
			return 0, accountErr(ErrInvalidAmount, e.AccountID)
		}
	}
	debits, credits, ok := sumEntries(entries)
	if !ok {
		return 0, ErrBalanceOverflow
	}
	if debits != credits {
		return 0, &UnbalancedError{DebitSum: debits, CreditSum: credits}
	}

	// 2. 帳戶存在且未關閉 (唯讀)
	for _, e := range entries {
		acc, ok := l.accounts[e.AccountID]
		if !ok {
			return 0, accountErr(ErrAccountNotFound, e.AccountID)
		}
		if acc.Closed {
			return 0, accountErr(ErrAccountClosed, e.AccountID)
		}
	}
	if l.nextTxID == math.MaxUint64 {
		return 0, ErrTxIDOverflow
	}

	// 3. 在暫存區計算新餘額，全部成功才寫回
	pending := make(map[AccountID]int64, len(entries))
	for _, e := range entries {
		bal, seen := pending[e.AccountID]
		if !seen {
			bal = l.accounts[e.AccountID].Balance
		}
		if bal, ok = addInt64(bal, e.Debit); !ok {
			return 0, accountErr(ErrBalanceOverflow, e.AccountID)
		}
		if bal, ok = subInt64(bal, e.Credit); !ok {
			return 0, accountErr(ErrBalanceOverflow, e.AccountID)
		}
		pending[e.AccountID] = bal
	}
	// MinInt64 沒有對應的正數，TotalAssets == -系統帳戶 會無法表示
	for id, bal := range pending {
		if bal == math.MinInt64 {
			return 0, accountErr(ErrBalanceOverflow, id)
		}
	}

	// 4. Commit
	for id, bal := range pending {
		l.accounts[id].Balance = bal
	}
	txID := l.nextTxID
	l.transactions = append(l.transactions, Transaction{
		ID:          txID,
		Description: description,
		Entries:     append([]TransactionEntry(nil), entries...),
		Timestamp:   l.now().UTC(),
	})
	l.nextTxID++
	return txID, nil
}

// Deposit 存款: 借記目標帳戶、貸記系統帳戶
func (l *Ledger) Deposit(id AccountID, amount int64, description string) (TransactionID, error) {
	if amount <= 0 {
		return 0, accountErr(ErrInvalidAmount, id)
	}
	return l.RecordTransaction(description, []TransactionEntry{
		{AccountID: id, Debit: amount},
		{AccountID: l.systemAccountID, Credit: amount},
	})
}

// Withdraw 提款: 貸記帳戶、借記系統帳戶，餘額需足夠
func (l *Ledger) Withdraw(id AccountID, amount int64, description string) (TransactionID, error) {
	if amount <= 0 {
		return 0, accountErr(ErrInvalidAmount, id)
	}
	if err := l.checkFunds(id, amount); err != nil {
		return 0, err
	}
	return l.RecordTransaction(description, []TransactionEntry{
		{AccountID: id, Credit: amount},
		{AccountID: l.systemAccountID, Debit: amount},
	})
}

// Transfer 轉帳，兩個帳戶直接對沖，不經過系統帳戶
func (l *Ledger) Transfer(from, to AccountID, amount int64, description string) (TransactionID, error) {
	if amount <= 0 {
		return 0, accountErr(ErrInvalidAmount, from)
	}
	if from == to {
		return 0, accountErr(ErrSelfTransfer, from)
	}
	if err := l.checkFunds(from, amount); err != nil {
		return 0, err
	}
	return l.RecordTransaction(description, []TransactionEntry{
		{AccountID: to, Debit: amount},
		{AccountID: from, Credit: amount},
	})
}

// checkFunds 檢查餘額是否足夠 (帳戶不存在也在這裡回報)
func (l *Ledger) checkFunds(id AccountID, amount int64) error {
	acc, ok := l.accounts[id]
	if !ok {
		return accountErr(ErrAccountNotFound, id)
	}
	if acc.Closed {
		return accountErr(ErrAccountClosed, id)
	}
	if acc.Balance < amount {
		return &AccountError{Kind: ErrInsufficientFunds, AccountID: id, Balance: acc.Balance, Amount: amount}
	}
	return nil
}
