package domain

import (
	"fmt"
	"math"
)

// Account 帳戶
//
// 結構:
//
//	id: 帳戶 ID (建立後不可變)
//	holder: 持有人名稱 (建立後不可變)
//	balance: 餘額，最小貨幣單位，任何操作完成後皆 >= 0
type Account struct {
	id      int64
	holder  string
	balance int64
}

// NewAccount 建立餘額為 0 的新帳戶
func NewAccount(id int64, holder string) (*Account, error) {
	if id <= 0 {
		return nil, ErrInvalidAccountID
	}
	return &Account{
		id:     id,
		holder: holder,
	}, nil
}

// RestoreAccount 以既有餘額重建帳戶 (從外部來源載入時使用)
func RestoreAccount(id int64, holder string, balance int64) (*Account, error) {
	if balance < 0 {
		return nil, ErrNegativeAmount
	}
	acc, err := NewAccount(id, holder)
	if err != nil {
		return nil, err
	}
	acc.balance = balance
	return acc, nil
}

func (a *Account) ID() int64 { return a.id }

func (a *Account) Holder() string { return a.holder }

func (a *Account) Balance() int64 { return a.balance }

func (a *Account) String() string { return a.Summary() }

// Deposit 存款
//
// 參數:
//
//	amount: 存款金額 (最小貨幣單位)，不可為負
//
// 回傳:
//
//	int64: 存款後餘額
//	error: ErrNegativeAmount 或 ErrAmountOverflow，失敗時餘額不變
func (a *Account) Deposit(amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	if a.balance > math.MaxInt64-amount {
		return 0, ErrAmountOverflow
	}

	a.balance += amount
	return a.balance, nil
}

// Withdraw 提款
//
// 參數:
//
//	amount: 提款金額 (最小貨幣單位)，不可為負
//
// 回傳:
//
//	int64: 提款後餘額
//	error: ErrNegativeAmount 或 ErrInsufficientFunds，失敗時餘額不變
func (a *Account) Withdraw(amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	if a.balance < amount {
		return 0, ErrInsufficientFunds
	}

	a.balance -= amount
	return a.balance, nil
}

// Summary 帳戶摘要，例如: Account 1 (Giorgi) has a balance of $150.00
func (a *Account) Summary() string {
	return fmt.Sprintf("Account %d (%s) has a balance of %s", a.id, a.holder, FormatMoney(a.balance))
}
