package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency 幣別 (ISO 4217)
// 帳本不做匯率換算，同一帳戶的所有分錄都視為該帳戶的幣別
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// DefaultCurrency 未指定幣別時使用
const DefaultCurrency = CurrencyNGN

// MinorUnitDigits 最小單位的小數位數 (1 NGN = 100 kobo)
const MinorUnitDigits = 2

var currencySymbols = map[Currency]string{
	CurrencyNGN: "₦",
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
}

// ParseCurrency 解析幣別代碼 (不分大小寫)
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// Valid 是否為支援的幣別
func (c Currency) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Symbol 幣別符號
func (c Currency) Symbol() string {
	return currencySymbols[c]
}

// Format 將最小單位金額轉為顯示字串，例如 1000 kobo -> ₦10.00
func (c Currency) Format(minor int64) string {
	return c.Symbol() + decimal.New(minor, -MinorUnitDigits).StringFixed(MinorUnitDigits)
}
