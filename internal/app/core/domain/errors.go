package domain

import "errors"

var (
	// ErrNegativeAmount 金額不可為負數
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAmountOverflow 存款後餘額或帳本總額超出 int64 可表示範圍
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrInvalidAccountID 帳戶 ID 必須為正整數
	ErrInvalidAccountID = errors.New("account id must be positive")

	// ErrInvalidTransactionType 未知的交易類型
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrLedgerClosed 帳本引擎已停止
	ErrLedgerClosed = errors.New("ledger closed")
)
