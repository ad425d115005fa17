package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName gRPC 服務全名
const ServiceName = "ledger.v1.LedgerService"

// LedgerServiceServer 服務端需要實作的介面
type LedgerServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*CreateAccountResponse, error)
	CloseAccount(context.Context, *AccountRequest) (*Empty, error)
	Deposit(context.Context, *AmountRequest) (*TransactionResponse, error)
	Withdraw(context.Context, *AmountRequest) (*TransactionResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransactionResponse, error)
	RecordTransaction(context.Context, *RecordTransactionRequest) (*TransactionResponse, error)
	GetBalance(context.Context, *AccountRequest) (*BalanceResponse, error)
	GetAccount(context.Context, *AccountRequest) (*AccountResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	Report(context.Context, *Empty) (*ReportResponse, error)
	SaveSnapshot(context.Context, *SnapshotRequest) (*SaveSnapshotResponse, error)
	LoadSnapshot(context.Context, *SnapshotRequest) (*Empty, error)
	ExportSnapshot(context.Context, *ExportSnapshotRequest) (*SnapshotData, error)
	ImportSnapshot(context.Context, *SnapshotData) (*Empty, error)
}

// ServiceDesc 手寫的服務描述，訊息以 JSON codec 編碼
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateAccount", LedgerServiceServer.CreateAccount),
		unary("CloseAccount", LedgerServiceServer.CloseAccount),
		unary("Deposit", LedgerServiceServer.Deposit),
		unary("Withdraw", LedgerServiceServer.Withdraw),
		unary("Transfer", LedgerServiceServer.Transfer),
		unary("RecordTransaction", LedgerServiceServer.RecordTransaction),
		unary("GetBalance", LedgerServiceServer.GetBalance),
		unary("GetAccount", LedgerServiceServer.GetAccount),
		unary("ListAccounts", LedgerServiceServer.ListAccounts),
		unary("ListTransactions", LedgerServiceServer.ListTransactions),
		unary("Report", LedgerServiceServer.Report),
		unary("SaveSnapshot", LedgerServiceServer.SaveSnapshot),
		unary("LoadSnapshot", LedgerServiceServer.LoadSnapshot),
		unary("ExportSnapshot", LedgerServiceServer.ExportSnapshot),
		unary("ImportSnapshot", LedgerServiceServer.ImportSnapshot),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer 註冊服務
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary 把強型別的方法包成 grpc.MethodDesc，並套用攔截器
func unary[Req, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
