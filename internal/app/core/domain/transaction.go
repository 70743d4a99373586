package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType 交易類型
// 為了節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdraw TransactionType = 2
	// 轉帳
	TransactionTypeTransfer TransactionType = 3
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdraw:
		return "withdraw"
	case TransactionTypeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Transaction 交易 注意欄位排序以避免 Padding
type Transaction struct {
	// Sequence: 引擎套用成功後分配的順序號 (1, 2, 3...)
	Sequence uint64
	// From, To: 帳戶 ID；存款只用 To，提款只用 From
	From int64
	To   int64
	// Amount: 金額 (最小貨幣單位)
	Amount int64
	// CreatedAt: 交易時間 (UnixNano)
	CreatedAt int64
	// TransactionID: 外部追蹤號 (UUID)，用於冪等判斷
	TransactionID uuid.UUID
	// Type: 放到最後面，利用 Padding 空間
	Type TransactionType
}

// NewDeposit 建立存款交易
func NewDeposit(to int64, amount int64) *Transaction {
	return newTransaction(TransactionTypeDeposit, 0, to, amount)
}

// NewWithdraw 建立提款交易
func NewWithdraw(from int64, amount int64) *Transaction {
	return newTransaction(TransactionTypeWithdraw, from, 0, amount)
}

// NewTransfer 建立轉帳交易
func NewTransfer(from, to int64, amount int64) *Transaction {
	return newTransaction(TransactionTypeTransfer, from, to, amount)
}

func newTransaction(typ TransactionType, from, to int64, amount int64) *Transaction {
	return &Transaction{
		From:          from,
		To:            to,
		Amount:        amount,
		CreatedAt:     time.Now().UnixNano(),
		TransactionID: uuid.New(),
		Type:          typ,
	}
}

// Validate 在進入帳本前做不需要帳戶狀態的檢查
func (t *Transaction) Validate() error {
	switch t.Type {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
	default:
		return ErrInvalidTransactionType
	}
	if t.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// BalanceAccountID 交易完成後回報餘額的帳戶: 存款為 To，提款與轉帳為 From
func (t *Transaction) BalanceAccountID() int64 {
	if t.Type == TransactionTypeDeposit {
		return t.To
	}
	return t.From
}
