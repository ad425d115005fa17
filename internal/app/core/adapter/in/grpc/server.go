package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*CreateAccountResponse, error) {
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, toStatus(err)
	}
	id, err := s.core.CreateAccount(ctx, req.Owner, req.InitialBalance, currency)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CreateAccountResponse{AccountID: id}, nil
}

func (s *GrpcServer) CloseAccount(ctx context.Context, req *AccountRequest) (*Empty, error) {
	if err := s.core.CloseAccount(ctx, req.AccountID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GrpcServer) Deposit(ctx context.Context, req *AmountRequest) (*TransactionResponse, error) {
	txID, err := s.core.Deposit(ctx, req.AccountID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.txResponse(ctx, txID, req.AccountID), nil
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *AmountRequest) (*TransactionResponse, error) {
	txID, err := s.core.Withdraw(ctx, req.AccountID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.txResponse(ctx, txID, req.AccountID), nil
}

// Transfer 轉帳，回傳轉出帳戶的餘額
func (s *GrpcServer) Transfer(ctx context.Context, req *TransferRequest) (*TransactionResponse, error) {
	txID, err := s.core.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.txResponse(ctx, txID, req.FromAccountID), nil
}

func (s *GrpcServer) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*TransactionResponse, error) {
	txID, err := s.core.RecordTransaction(ctx, req.Description, req.Entries)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TransactionResponse{TxID: txID}, nil
}

// txResponse 交易後的餘額是 Best Effort，並發下可能已被其他交易改變
func (s *GrpcServer) txResponse(ctx context.Context, txID domain.TransactionID, id domain.AccountID) *TransactionResponse {
	resp := &TransactionResponse{TxID: txID}
	if balance, err := s.core.GetAccountBalance(ctx, id); err == nil {
		resp.Balance = &balance
	}
	return resp
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *AccountRequest) (*BalanceResponse, error) {
	acc, err := s.core.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BalanceResponse{
		AccountID: acc.ID,
		Balance:   acc.Balance,
		Currency:  acc.Currency,
		Formatted: acc.Currency.Format(acc.Balance),
	}, nil
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *AccountRequest) (*AccountResponse, error) {
	acc, err := s.core.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AccountResponse{Account: acc}, nil
}

func (s *GrpcServer) ListAccounts(ctx context.Context, req *ListAccountsRequest) (*ListAccountsResponse, error) {
	return &ListAccountsResponse{Accounts: s.core.ListAccounts(ctx, req.Owner)}, nil
}

func (s *GrpcServer) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	return &ListTransactionsResponse{Transactions: s.core.ListTransactions(ctx, req.AccountID)}, nil
}

func (s *GrpcServer) Report(ctx context.Context, _ *Empty) (*ReportResponse, error) {
	r := s.core.Report(ctx)
	return &ReportResponse{TotalAssets: r.TotalAssets, Richest: r.Richest}, nil
}

func (s *GrpcServer) SaveSnapshot(ctx context.Context, req *SnapshotRequest) (*SaveSnapshotResponse, error) {
	n, err := s.core.Save(ctx, req.Key)
	if err != nil {
		return nil, toStatus(err)
	}
	key := req.Key
	if key == "" {
		key = usecase.DefaultSnapshotKey
	}
	return &SaveSnapshotResponse{Key: key, Bytes: n}, nil
}

func (s *GrpcServer) LoadSnapshot(ctx context.Context, req *SnapshotRequest) (*Empty, error) {
	if err := s.core.Load(ctx, req.Key); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GrpcServer) ExportSnapshot(ctx context.Context, req *ExportSnapshotRequest) (*SnapshotData, error) {
	format, err := domain.ParseSnapshotFormat(req.Format)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	data, err := s.core.Export(ctx, format)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SnapshotData{Data: data}, nil
}

func (s *GrpcServer) ImportSnapshot(ctx context.Context, req *SnapshotData) (*Empty, error) {
	if err := s.core.Import(ctx, req.Data); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func parseCurrency(code string) (domain.Currency, error) {
	if code == "" {
		return domain.DefaultCurrency, nil
	}
	return domain.ParseCurrency(code)
}

// toStatus 將 domain 錯誤轉為 gRPC status
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, usecase.ErrSnapshotNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNonZeroBalance),
		errors.Is(err, domain.ErrSystemAccount),
		errors.Is(err, usecase.ErrSnapshotStoreNotConfigured):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrEmptyTransaction),
		errors.Is(err, domain.ErrUnbalancedTransaction),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrMalformedSnapshot):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrBalanceOverflow):
		code = codes.OutOfRange
	case errors.Is(err, domain.ErrIDOverflow),
		errors.Is(err, domain.ErrTxIDOverflow):
		code = codes.ResourceExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
