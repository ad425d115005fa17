package domain

// AccountID 帳戶編號，0 保留給系統 (銀行) 帳戶
type AccountID uint32

// SystemAccountID 系統帳戶，存款/提款的對手方
const SystemAccountID AccountID = 0

// SystemAccountOwner 系統帳戶的顯示名稱
const SystemAccountOwner = "BANK"

// Account 帳戶
// Balance 以最小幣值單位 (kobo/cents) 表示，不使用浮點數
type Account struct {
	ID       AccountID `json:"id"`
	Owner    string    `json:"owner"`
	Balance  int64     `json:"balance"`
	Closed   bool      `json:"closed"`
	Currency Currency  `json:"currency"`
}

func newAccount(id AccountID, owner string, currency Currency) *Account {
	return &Account{
		ID:       id,
		Owner:    owner,
		Currency: currency,
	}
}

// IsSystem 是否為系統帳戶
func (a *Account) IsSystem() bool {
	return a.ID == SystemAccountID
}
