package usecase

import (
	"context"
	"log/slog"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	ledger Ledger
	logger *slog.Logger
}

// NewCoreUseCase logger 為 nil 時使用 slog.Default()
func NewCoreUseCase(ledger Ledger, logger *slog.Logger) *CoreUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoreUseCase{
		ledger: ledger,
		logger: logger,
	}
}

// OpenAccount 開戶，可選擇給初始存款 (initialDeposit = 0 表示不存款)
func (c *CoreUseCase) OpenAccount(ctx context.Context, id int64, holder string, initialDeposit int64) (domain.Account, error) {
	acc, err := domain.NewAccount(id, holder)
	if err != nil {
		return domain.Account{}, err
	}
	if _, err := acc.Deposit(initialDeposit); err != nil {
		return domain.Account{}, err
	}
	if err := c.ledger.OpenAccount(ctx, acc); err != nil {
		c.logger.Warn("open account rejected", "account_id", id, "error", err)
		return domain.Account{}, err
	}
	c.logger.Info("account opened", "account_id", id, "holder", holder, "balance", initialDeposit)
	return c.ledger.GetAccount(ctx, id)
}

// PostTransaction 處理交易，回傳 tran.BalanceAccountID() 帳戶的交易後餘額
func (c *CoreUseCase) PostTransaction(ctx context.Context, tran *domain.Transaction) (int64, error) {
	balance, err := c.ledger.PostTransaction(ctx, tran)
	if err != nil {
		c.logger.Warn("transaction rejected",
			"ref_id", tran.TransactionID,
			"type", tran.Type,
			"from", tran.From,
			"to", tran.To,
			"amount", tran.Amount,
			"error", err,
		)
		return 0, err
	}
	c.logger.Debug("transaction applied", "ref_id", tran.TransactionID, "type", tran.Type, "sequence", tran.Sequence)
	return balance, nil
}

// Deposit 存款，回傳存款後餘額
func (c *CoreUseCase) Deposit(ctx context.Context, accountID int64, amount int64) (int64, error) {
	return c.PostTransaction(ctx, domain.NewDeposit(accountID, amount))
}

// Withdraw 提款，回傳提款後餘額
func (c *CoreUseCase) Withdraw(ctx context.Context, accountID int64, amount int64) (int64, error) {
	return c.PostTransaction(ctx, domain.NewWithdraw(accountID, amount))
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, fromID, toID int64, amount int64) error {
	_, err := c.PostTransaction(ctx, domain.NewTransfer(fromID, toID, amount))
	return err
}

// GetAccountBalance 取得帳戶餘額
func (c *CoreUseCase) GetAccountBalance(ctx context.Context, accountID int64) (int64, error) {
	return c.ledger.GetAccountBalance(ctx, accountID)
}

// GetAccount 取得帳戶快照
func (c *CoreUseCase) GetAccount(ctx context.Context, accountID int64) (domain.Account, error) {
	return c.ledger.GetAccount(ctx, accountID)
}

// TotalBalance 帳本總額
func (c *CoreUseCase) TotalBalance(ctx context.Context) (int64, error) {
	return c.ledger.TotalBalance(ctx)
}

// Snapshot 帳本快照
func (c *CoreUseCase) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return c.ledger.Snapshot(ctx)
}
