package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcx "github.com/JoeShih716/go-mem-bank/pkg/grpc"
)

// ServiceName 帳本服務的完整名稱
const ServiceName = "ledger.v1.LedgerService"

const (
	methodTransfer     = "/" + ServiceName + "/Transfer"
	methodGetBalance   = "/" + ServiceName + "/GetBalance"
	methodOpenAccount  = "/" + ServiceName + "/OpenAccount"
	methodTotalBalance = "/" + ServiceName + "/TotalBalance"
	methodSummary      = "/" + ServiceName + "/Summary"
)

// TransactionType 線上傳輸的交易類型
type TransactionType int32

const (
	TransactionTypeUnspecified TransactionType = 0
	TransactionTypeDeposit     TransactionType = 1
	TransactionTypeWithdraw    TransactionType = 2
	TransactionTypeTransfer    TransactionType = 3
)

// TransferRequest 存款、提款、轉帳共用同一個請求
// 存款只看 ToAccountID，提款只看 FromAccountID
type TransferRequest struct {
	RefID         string          `json:"ref_id"`
	Type          TransactionType `json:"type"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        int64           `json:"amount"`
}

// TransferResponse 業務錯誤以 Success=false 回傳，不走 gRPC status
type TransferResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Sequence       uint64 `json:"sequence,omitempty"`
	CurrentBalance int64  `json:"current_balance"`
}

type OpenAccountRequest struct {
	AccountID      int64  `json:"account_id"`
	Holder         string `json:"holder"`
	InitialDeposit int64  `json:"initial_deposit"`
}

type AccountReply struct {
	AccountID int64  `json:"account_id"`
	Holder    string `json:"holder"`
	Balance   int64  `json:"balance"`
	Summary   string `json:"summary"`
}

// LedgerServiceServer 帳本服務的 server 端介面
type LedgerServiceServer interface {
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	GetBalance(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	OpenAccount(context.Context, *OpenAccountRequest) (*AccountReply, error)
	TotalBalance(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	Summary(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// RegisterLedgerServiceServer 註冊到 grpc.Server
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// unaryHandler 產生 MethodDesc 用的 handler，解碼後交給 interceptor 鏈
func unaryHandler[Req any, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc 手寫的服務描述
// 訊息以 grpcx.Codec 編碼，client 必須帶 content-subtype grpcx.CodecName
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Transfer",
			Handler:    unaryHandler(methodTransfer, LedgerServiceServer.Transfer),
		},
		{
			MethodName: "GetBalance",
			Handler:    unaryHandler(methodGetBalance, LedgerServiceServer.GetBalance),
		},
		{
			MethodName: "OpenAccount",
			Handler:    unaryHandler(methodOpenAccount, LedgerServiceServer.OpenAccount),
		},
		{
			MethodName: "TotalBalance",
			Handler:    unaryHandler(methodTotalBalance, LedgerServiceServer.TotalBalance),
		},
		{
			MethodName: "Summary",
			Handler:    unaryHandler(methodSummary, LedgerServiceServer.Summary),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// Client 帳本服務的 client
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient cc 通常來自 grpcx.Pool.GetConnection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcx.CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, methodTransfer, in, opts)
}

func (c *Client) GetBalance(ctx context.Context, accountID int64, opts ...grpc.CallOption) (int64, error) {
	out, err := invoke[wrapperspb.Int64Value](ctx, c.cc, methodGetBalance, wrapperspb.Int64(accountID), opts)
	if err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) OpenAccount(ctx context.Context, in *OpenAccountRequest, opts ...grpc.CallOption) (*AccountReply, error) {
	return invoke[AccountReply](ctx, c.cc, methodOpenAccount, in, opts)
}

func (c *Client) TotalBalance(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out, err := invoke[wrapperspb.Int64Value](ctx, c.cc, methodTotalBalance, &emptypb.Empty{}, opts)
	if err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Summary(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out, err := invoke[wrapperspb.StringValue](ctx, c.cc, methodSummary, &emptypb.Empty{}, opts)
	if err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
