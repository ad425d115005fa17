package domain

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// protoMagic 二進位快照的前綴，用來和 JSON 區分
var protoMagic = []byte("LDGR")

// 欄位編號 (等同下列 proto 定義)
//
//	message Snapshot {
//	  uint32 version = 1;
//	  repeated Account accounts = 2;
//	  repeated Transaction transactions = 3;
//	  uint32 next_account_id = 4;
//	  uint64 next_tx_id = 5;
//	  uint32 bank_account_id = 6;
//	}
//	message Account { uint32 id = 1; string owner = 2; sint64 balance = 3; bool closed = 4; string currency = 5; }
//	message Transaction { uint64 id = 1; string description = 2; repeated Entry entries = 3; sint64 timestamp_seconds = 4; int32 timestamp_nanos = 5; }
//	message Entry { uint32 account_id = 1; sint64 debit = 2; sint64 credit = 3; }
const (
	fieldSnapVersion      protowire.Number = 1
	fieldSnapAccounts     protowire.Number = 2
	fieldSnapTransactions protowire.Number = 3
	fieldSnapNextAccount  protowire.Number = 4
	fieldSnapNextTx       protowire.Number = 5
	fieldSnapBankAccount  protowire.Number = 6

	fieldAccID       protowire.Number = 1
	fieldAccOwner    protowire.Number = 2
	fieldAccBalance  protowire.Number = 3
	fieldAccClosed   protowire.Number = 4
	fieldAccCurrency protowire.Number = 5

	fieldTxID          protowire.Number = 1
	fieldTxDescription protowire.Number = 2
	fieldTxEntries     protowire.Number = 3
	fieldTxSeconds     protowire.Number = 4
	fieldTxNanos       protowire.Number = 5

	fieldEntryAccount protowire.Number = 1
	fieldEntryDebit   protowire.Number = 2
	fieldEntryCredit  protowire.Number = 3
)

func marshalProtoSnapshot(doc *snapshotDoc) []byte {
	b := append([]byte(nil), protoMagic...)
	b = appendVarint(b, fieldSnapVersion, uint64(doc.Version))
	for i := range doc.Accounts {
		b = appendMessage(b, fieldSnapAccounts, marshalProtoAccount(&doc.Accounts[i]))
	}
	for i := range doc.Transactions {
		b = appendMessage(b, fieldSnapTransactions, marshalProtoTransaction(&doc.Transactions[i]))
	}
	b = appendVarint(b, fieldSnapNextAccount, uint64(doc.NextAccountID))
	b = appendVarint(b, fieldSnapNextTx, uint64(doc.NextTxID))
	b = appendVarint(b, fieldSnapBankAccount, uint64(doc.BankAccountID))
	return b
}

func marshalProtoAccount(a *Account) []byte {
	var b []byte
	b = appendVarint(b, fieldAccID, uint64(a.ID))
	b = appendString(b, fieldAccOwner, a.Owner)
	b = appendVarint(b, fieldAccBalance, protowire.EncodeZigZag(a.Balance))
	b = appendVarint(b, fieldAccClosed, protowire.EncodeBool(a.Closed))
	b = appendString(b, fieldAccCurrency, string(a.Currency))
	return b
}

func marshalProtoTransaction(t *Transaction) []byte {
	var b []byte
	b = appendVarint(b, fieldTxID, uint64(t.ID))
	b = appendString(b, fieldTxDescription, t.Description)
	for _, e := range t.Entries {
		var eb []byte
		eb = appendVarint(eb, fieldEntryAccount, uint64(e.AccountID))
		eb = appendVarint(eb, fieldEntryDebit, protowire.EncodeZigZag(e.Debit))
		eb = appendVarint(eb, fieldEntryCredit, protowire.EncodeZigZag(e.Credit))
		b = appendMessage(b, fieldTxEntries, eb)
	}
	// 同 google.protobuf.Timestamp 拆成秒與奈秒，UnixNano 在 1678~2262 年以外無定義
	b = appendVarint(b, fieldTxSeconds, protowire.EncodeZigZag(t.Timestamp.Unix()))
	b = appendVarint(b, fieldTxNanos, uint64(t.Timestamp.Nanosecond()))
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func unmarshalProtoSnapshot(b []byte) (*snapshotDoc, error) {
	doc := &snapshotDoc{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldSnapVersion:
			v, n, err := consumeVarint(typ, b)
			doc.Version = int(v)
			return n, err
		case fieldSnapAccounts:
			msg, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			acc, err := unmarshalProtoAccount(msg)
			if err != nil {
				return n, err
			}
			doc.Accounts = append(doc.Accounts, acc)
			return n, nil
		case fieldSnapTransactions:
			msg, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			tx, err := unmarshalProtoTransaction(msg)
			if err != nil {
				return n, err
			}
			doc.Transactions = append(doc.Transactions, tx)
			return n, nil
		case fieldSnapNextAccount:
			v, n, err := consumeUint32(typ, b)
			doc.NextAccountID = AccountID(v)
			return n, err
		case fieldSnapNextTx:
			v, n, err := consumeVarint(typ, b)
			doc.NextTxID = TransactionID(v)
			return n, err
		case fieldSnapBankAccount:
			v, n, err := consumeUint32(typ, b)
			doc.BankAccountID = AccountID(v)
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return nil, &SnapshotError{Reason: "decode proto", Err: err}
	}
	return doc, nil
}

func unmarshalProtoAccount(b []byte) (Account, error) {
	var a Account
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldAccID:
			v, n, err := consumeUint32(typ, b)
			a.ID = AccountID(v)
			return n, err
		case fieldAccOwner:
			v, n, err := consumeBytes(typ, b)
			a.Owner = string(v)
			return n, err
		case fieldAccBalance:
			v, n, err := consumeVarint(typ, b)
			a.Balance = protowire.DecodeZigZag(v)
			return n, err
		case fieldAccClosed:
			v, n, err := consumeVarint(typ, b)
			a.Closed = protowire.DecodeBool(v)
			return n, err
		case fieldAccCurrency:
			v, n, err := consumeBytes(typ, b)
			a.Currency = Currency(v)
			return n, err
		}
		return 0, nil
	})
	return a, err
}

func unmarshalProtoTransaction(b []byte) (Transaction, error) {
	var (
		t              Transaction
		seconds, nanos int64
	)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldTxID:
			v, n, err := consumeVarint(typ, b)
			t.ID = TransactionID(v)
			return n, err
		case fieldTxDescription:
			v, n, err := consumeBytes(typ, b)
			t.Description = string(v)
			return n, err
		case fieldTxEntries:
			msg, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			e, err := unmarshalProtoEntry(msg)
			if err != nil {
				return n, err
			}
			t.Entries = append(t.Entries, e)
			return n, nil
		case fieldTxSeconds:
			v, n, err := consumeVarint(typ, b)
			seconds = protowire.DecodeZigZag(v)
			return n, err
		case fieldTxNanos:
			v, n, err := consumeVarint(typ, b)
			if err == nil && v >= uint64(time.Second) {
				err = malformed("transaction timestamp nanos %d out of range", v)
			}
			nanos = int64(v)
			return n, err
		}
		return 0, nil
	})
	t.Timestamp = time.Unix(seconds, nanos).UTC()
	return t, err
}

func unmarshalProtoEntry(b []byte) (TransactionEntry, error) {
	var e TransactionEntry
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldEntryAccount:
			v, n, err := consumeUint32(typ, b)
			e.AccountID = AccountID(v)
			return n, err
		case fieldEntryDebit:
			v, n, err := consumeVarint(typ, b)
			e.Debit = protowire.DecodeZigZag(v)
			return n, err
		case fieldEntryCredit:
			v, n, err := consumeVarint(typ, b)
			e.Credit = protowire.DecodeZigZag(v)
			return n, err
		}
		return 0, nil
	})
	return e, err
}

// consumeFields 逐欄位解析，fn 回傳 0 表示未知欄位 (直接略過)
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
		}
		b = b[m:]
	}
	return nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("unexpected wire type %d", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeUint32(typ protowire.Type, b []byte) (uint32, int, error) {
	v, n, err := consumeVarint(typ, b)
	if err == nil && v > 1<<32-1 {
		return 0, 0, fmt.Errorf("value %d overflows uint32", v)
	}
	return uint32(v), n, err
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("unexpected wire type %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}
