package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	// 1. UUID 解析
	u, err := uuid.Parse(req.RefID)
	if err != nil {
		return &TransferResponse{
			Success: false,
			Message: "invalid ref_id: " + err.Error(),
		}, nil
	}

	// 2. 轉換交易類型
	var txType domain.TransactionType
	switch req.Type {
	case TransactionTypeDeposit:
		txType = domain.TransactionTypeDeposit
	case TransactionTypeWithdraw:
		txType = domain.TransactionTypeWithdraw
	case TransactionTypeTransfer:
		txType = domain.TransactionTypeTransfer
	default:
		return &TransferResponse{
			Success: false,
			Message: domain.ErrInvalidTransactionType.Error(),
		}, nil
	}

	// 3. 組裝 Domain Transaction
	tx := &domain.Transaction{
		TransactionID: u,
		From:          req.FromAccountID,
		To:            req.ToAccountID,
		Amount:        req.Amount,
		Type:          txType,
	}

	// 4. 執行交易，餘額在引擎內與交易一起取得
	// 轉帳/提款回傳 From 的餘額，存款回傳 To 的餘額
	balance, err := s.core.PostTransaction(ctx, tx)
	if err != nil {
		// 引擎關閉或呼叫端取消不屬於業務錯誤
		if errors.Is(err, domain.ErrLedgerClosed) || ctx.Err() != nil {
			return nil, toStatus(err)
		}
		// 業務邏輯錯誤，回傳 Success=false (Soft Failure)
		return &TransferResponse{
			Success: false,
			Message: err.Error(),
		}, nil
	}

	return &TransferResponse{
		Success:        true,
		Sequence:       tx.Sequence,
		CurrentBalance: balance,
	}, nil
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	balance, err := s.core.GetAccountBalance(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(balance), nil
}

func (s *GrpcServer) OpenAccount(ctx context.Context, req *OpenAccountRequest) (*AccountReply, error) {
	acc, err := s.core.OpenAccount(ctx, req.AccountID, req.Holder, req.InitialDeposit)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AccountReply{
		AccountID: acc.ID(),
		Holder:    acc.Holder(),
		Balance:   acc.Balance(),
		Summary:   acc.Summary(),
	}, nil
}

func (s *GrpcServer) TotalBalance(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	total, err := s.core.TotalBalance(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(total), nil
}

func (s *GrpcServer) Summary(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	snap, err := s.core.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(snap.Summary), nil
}

// toStatus 將領域錯誤轉成 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrInvalidAccountID),
		errors.Is(err, domain.ErrInvalidTransactionType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrAmountOverflow):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, domain.ErrLedgerClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
