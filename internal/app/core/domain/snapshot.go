package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// SnapshotVersion 快照格式版本
const SnapshotVersion = 1

// SnapshotFormat 快照編碼格式
type SnapshotFormat uint8

const (
	// FormatJSON 可讀的 JSON (預設，寫檔用)
	FormatJSON SnapshotFormat = iota
	// FormatProto protobuf wire 編碼 (存 DB / Redis 用)
	FormatProto
)

func (f SnapshotFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatProto:
		return "proto"
	default:
		return fmt.Sprintf("SnapshotFormat(%d)", uint8(f))
	}
}

// ParseSnapshotFormat 解析設定檔中的格式名稱
func ParseSnapshotFormat(s string) (SnapshotFormat, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "proto", "protobuf", "binary":
		return FormatProto, nil
	default:
		return 0, fmt.Errorf("unknown snapshot format %q", s)
	}
}

// snapshotDoc 帳本完整狀態
type snapshotDoc struct {
	Version       int           `json:"version"`
	Accounts      []Account     `json:"accounts"`
	Transactions  []Transaction `json:"transactions"`
	NextAccountID AccountID     `json:"next_account_id"`
	NextTxID      TransactionID `json:"next_tx_id"`
	BankAccountID AccountID     `json:"bank_account_id"`
}

// Serialize 將整個帳本編碼成快照
func (l *Ledger) Serialize(format SnapshotFormat) ([]byte, error) {
	doc := snapshotDoc{
		Version:       SnapshotVersion,
		Accounts:      l.Accounts(""),
		Transactions:  l.transactions,
		NextAccountID: l.nextAccountID,
		NextTxID:      l.nextTxID,
		BankAccountID: l.systemAccountID,
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatProto:
		return marshalProtoSnapshot(&doc), nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %v", format)
	}
}

// Deserialize 由快照還原帳本，格式自動判斷
// 只做結構檢查，不重新驗證歷史交易的借貸平衡
func Deserialize(data []byte, opts ...Option) (*Ledger, error) {
	var (
		doc *snapshotDoc
		err error
	)
	switch {
	case bytes.HasPrefix(data, protoMagic):
		doc, err = unmarshalProtoSnapshot(data[len(protoMagic):])
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("{")):
		doc, err = unmarshalJSONSnapshot(data)
	default:
		return nil, malformed("unrecognized snapshot encoding")
	}
	if err != nil {
		return nil, err
	}
	return restore(doc, opts)
}

func unmarshalJSONSnapshot(data []byte) (*snapshotDoc, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SnapshotError{Reason: "decode json", Err: err}
	}
	return &doc, nil
}

// restore 檢查快照結構並建立 Ledger
func restore(doc *snapshotDoc, opts []Option) (*Ledger, error) {
	if doc.Version != SnapshotVersion {
		return nil, malformed("unsupported version %d", doc.Version)
	}
	l := &Ledger{
		accounts:        make(map[AccountID]*Account, len(doc.Accounts)),
		transactions:    make([]Transaction, 0, len(doc.Transactions)),
		nextAccountID:   doc.NextAccountID,
		nextTxID:        doc.NextTxID,
		systemAccountID: doc.BankAccountID,
	}

	for i := range doc.Accounts {
		acc := doc.Accounts[i]
		if _, dup := l.accounts[acc.ID]; dup {
			return nil, malformed("duplicate account id %d", acc.ID)
		}
		if acc.Balance == math.MinInt64 {
			return nil, malformed("account %d: balance out of range", acc.ID)
		}
		if !acc.Currency.Valid() {
			return nil, malformed("account %d: invalid currency %q", acc.ID, acc.Currency)
		}
		if acc.ID >= doc.NextAccountID {
			return nil, malformed("account %d not below next_account_id %d", acc.ID, doc.NextAccountID)
		}
		l.accounts[acc.ID] = &acc
	}
	if _, ok := l.accounts[doc.BankAccountID]; !ok {
		return nil, malformed("system account %d missing", doc.BankAccountID)
	}
	if doc.NextAccountID == 0 || doc.NextTxID == 0 {
		return nil, malformed("id counters must start at 1")
	}

	var prev TransactionID
	for _, tx := range doc.Transactions {
		if tx.ID <= prev {
			return nil, malformed("transaction id %d out of order", tx.ID)
		}
		if tx.ID >= doc.NextTxID {
			return nil, malformed("transaction %d not below next_tx_id %d", tx.ID, doc.NextTxID)
		}
		if len(tx.Entries) == 0 {
			return nil, malformed("transaction %d has no entries", tx.ID)
		}
		for _, e := range tx.Entries {
			if _, ok := l.accounts[e.AccountID]; !ok {
				return nil, malformed("transaction %d references unknown account %d", tx.ID, e.AccountID)
			}
		}
		tx.Timestamp = tx.Timestamp.UTC()
		l.transactions = append(l.transactions, tx.clone())
		prev = tx.ID
	}

	l.applyOptions(opts)
	return l, nil
}
