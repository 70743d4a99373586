package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Ledger 是帳務引擎的介面，實作必須可供多個 goroutine 同時呼叫
type Ledger interface {
	// OpenAccount 註冊帳戶，重複 ID 回傳 domain.ErrAccountAlreadyExists
	OpenAccount(ctx context.Context, acc *domain.Account) error
	// 不再分 Deposit/Withdraw，直接看 tran.Type 決定；同一 TransactionID 只會套用一次
	// 回傳 tran.BalanceAccountID() 帳戶在這筆交易套用後的餘額，與交易在同一個臨界區內讀取
	PostTransaction(ctx context.Context, tran *domain.Transaction) (int64, error)
	// GetAccountBalance 取得帳戶餘額
	GetAccountBalance(ctx context.Context, accountID int64) (int64, error)
	// GetAccount 取得帳戶快照
	GetAccount(ctx context.Context, accountID int64) (domain.Account, error)
	// TotalBalance 所有帳戶餘額總和
	TotalBalance(ctx context.Context) (int64, error)
	// Snapshot 在同一時間點取得所有帳戶、摘要與總額
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}
