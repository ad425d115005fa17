package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	grpcpkg "github.com/JoeShih716/go-ledger-core/pkg/grpc"
)

// Client 是 ledger.v1.LedgerService 的客戶端
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient 以既有連線建立客戶端 (通常來自 pkg/grpc.Pool)
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcpkg.CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, owner string, initialBalance int64, currency string, opts ...grpc.CallOption) (domain.AccountID, error) {
	resp, err := invoke[CreateAccountResponse](ctx, c, "CreateAccount", &CreateAccountRequest{
		Owner:          owner,
		InitialBalance: initialBalance,
		Currency:       currency,
	}, opts...)
	if err != nil {
		return 0, err
	}
	return resp.AccountID, nil
}

func (c *Client) CloseAccount(ctx context.Context, id domain.AccountID, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, "CloseAccount", &AccountRequest{AccountID: id}, opts...)
	return err
}

func (c *Client) Deposit(ctx context.Context, req *AmountRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c, "Deposit", req, opts...)
}

func (c *Client) Withdraw(ctx context.Context, req *AmountRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c, "Withdraw", req, opts...)
}

func (c *Client) Transfer(ctx context.Context, req *TransferRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c, "Transfer", req, opts...)
}

func (c *Client) RecordTransaction(ctx context.Context, req *RecordTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[TransactionResponse](ctx, c, "RecordTransaction", req, opts...)
}

func (c *Client) GetBalance(ctx context.Context, id domain.AccountID, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c, "GetBalance", &AccountRequest{AccountID: id}, opts...)
}

func (c *Client) GetAccount(ctx context.Context, id domain.AccountID, opts ...grpc.CallOption) (domain.Account, error) {
	resp, err := invoke[AccountResponse](ctx, c, "GetAccount", &AccountRequest{AccountID: id}, opts...)
	if err != nil {
		return domain.Account{}, err
	}
	return resp.Account, nil
}

func (c *Client) ListAccounts(ctx context.Context, owner string, opts ...grpc.CallOption) ([]domain.Account, error) {
	resp, err := invoke[ListAccountsResponse](ctx, c, "ListAccounts", &ListAccountsRequest{Owner: owner}, opts...)
	if err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (c *Client) ListTransactions(ctx context.Context, accountID *domain.AccountID, opts ...grpc.CallOption) ([]domain.Transaction, error) {
	resp, err := invoke[ListTransactionsResponse](ctx, c, "ListTransactions", &ListTransactionsRequest{AccountID: accountID}, opts...)
	if err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *Client) Report(ctx context.Context, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportResponse](ctx, c, "Report", &Empty{}, opts...)
}

func (c *Client) SaveSnapshot(ctx context.Context, key string, opts ...grpc.CallOption) (*SaveSnapshotResponse, error) {
	return invoke[SaveSnapshotResponse](ctx, c, "SaveSnapshot", &SnapshotRequest{Key: key}, opts...)
}

func (c *Client) LoadSnapshot(ctx context.Context, key string, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, "LoadSnapshot", &SnapshotRequest{Key: key}, opts...)
	return err
}

func (c *Client) ExportSnapshot(ctx context.Context, format string, opts ...grpc.CallOption) ([]byte, error) {
	resp, err := invoke[SnapshotData](ctx, c, "ExportSnapshot", &ExportSnapshotRequest{Format: format}, opts...)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) ImportSnapshot(ctx context.Context, data []byte, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, "ImportSnapshot", &SnapshotData{Data: data}, opts...)
	return err
}
