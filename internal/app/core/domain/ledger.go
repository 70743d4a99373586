package domain

import (
	"math"
	"sort"
	"strings"
)

// Ledger 帳本，持有所有已註冊帳戶
//
// Ledger 本身不做任何同步，只能由單一 goroutine 操作；
// 併發存取請透過 adapter/out/memory 的引擎包裝。
//
// 結構:
//
//	accounts: 帳戶 ID -> 帳戶，註冊後由帳本獨佔
//	total: 所有帳戶餘額總和，永遠落在 int64 範圍內
type Ledger struct {
	accounts map[int64]*Account
	total    int64
}

// NewLedger 建立空帳本
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[int64]*Account),
	}
}

// AddAccount 註冊帳戶，帳戶交由帳本獨佔，之後只能透過帳本異動
//
// 參數:
//
//	acc: 要註冊的帳戶
//
// 回傳:
//
//	error: ID 重複回傳 ErrAccountAlreadyExists (不會覆蓋)；
//	       加入後總額超出 int64 回傳 ErrAmountOverflow
func (l *Ledger) AddAccount(acc *Account) error {
	if acc == nil || acc.id <= 0 {
		return ErrInvalidAccountID
	}
	if _, ok := l.accounts[acc.id]; ok {
		return ErrAccountAlreadyExists
	}
	if l.total > math.MaxInt64-acc.balance {
		return ErrAmountOverflow
	}
	l.accounts[acc.id] = acc
	l.total += acc.balance
	return nil
}

// Account 依 ID 查詢帳戶，回傳值拷貝
func (l *Ledger) Account(id int64) (Account, bool) {
	acc, ok := l.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Accounts 回傳所有帳戶的值拷貝，依 ID 排序
func (l *Ledger) Accounts() []Account {
	out := make([]Account, 0, len(l.accounts))
	for _, id := range l.sortedIDs() {
		out = append(out, *l.accounts[id])
	}
	return out
}

// TotalBalance 所有帳戶餘額總和
func (l *Ledger) TotalBalance() int64 {
	return l.total
}

// Summary 每個帳戶一行摘要，依 ID 排序
func (l *Ledger) Summary() string {
	lines := make([]string, 0, len(l.accounts))
	for _, id := range l.sortedIDs() {
		lines = append(lines, l.accounts[id].Summary())
	}
	return strings.Join(lines, "\n")
}

// String 帳本總額，例如: Bank total balance: $550.00
func (l *Ledger) String() string {
	return "Bank total balance: " + FormatMoney(l.TotalBalance())
}

// Snapshot 帳本在某一時間點的唯讀快照
type Snapshot struct {
	Accounts []Account
	Total    int64
	// Summary 每個帳戶一行，依 ID 排序
	Summary string
	// TotalLine 例如: Bank total balance: $550.00
	TotalLine string
}

// Snapshot 取得帳本快照
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Accounts:  l.Accounts(),
		Total:     l.TotalBalance(),
		Summary:   l.Summary(),
		TotalLine: l.String(),
	}
}

// Deposit 存款至指定帳戶
//
// 參數:
//
//	id: 帳戶 ID
//	amount: 存款金額 (最小貨幣單位)，不可為負
//
// 回傳:
//
//	int64: 存款後餘額
//	error: ErrAccountNotFound、ErrNegativeAmount，
//	       帳戶餘額或帳本總額溢位時回傳 ErrAmountOverflow
func (l *Ledger) Deposit(id int64, amount int64) (int64, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if amount >= 0 && l.total > math.MaxInt64-amount {
		return 0, ErrAmountOverflow
	}
	balance, err := acc.Deposit(amount)
	if err != nil {
		return 0, err
	}
	l.total += amount
	return balance, nil
}

// Withdraw 從指定帳戶提款
//
// 參數:
//
//	id: 帳戶 ID
//	amount: 提款金額 (最小貨幣單位)，不可為負
//
// 回傳:
//
//	int64: 提款後餘額
//	error: ErrAccountNotFound、ErrNegativeAmount、ErrInsufficientFunds
func (l *Ledger) Withdraw(id int64, amount int64) (int64, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	balance, err := acc.Withdraw(amount)
	if err != nil {
		return 0, err
	}
	l.total -= amount
	return balance, nil
}

// Transfer 轉帳，總額不變
//
// 檢查順序: 金額 -> 來源帳戶 -> 目標帳戶 -> 同帳戶 (no-op) -> 餘額。
// 以上檢查失敗都不會改動任何帳戶。
// 扣款後入帳若失敗 (溢位)，會將來源帳戶還原後再回傳錯誤。
//
// 參數:
//
//	fromID: 扣款帳戶 ID
//	toID: 入帳帳戶 ID
//	amount: 轉帳金額 (最小貨幣單位)，不可為負
//
// 回傳:
//
//	error: ErrNegativeAmount、ErrAccountNotFound、ErrInsufficientFunds、ErrAmountOverflow
func (l *Ledger) Transfer(fromID, toID int64, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	from, ok := l.accounts[fromID]
	if !ok {
		return ErrAccountNotFound
	}
	to, ok := l.accounts[toID]
	if !ok {
		return ErrAccountNotFound
	}

	if fromID == toID {
		return nil
	}

	if from.balance < amount {
		return ErrInsufficientFunds
	}

	before := from.balance
	if _, err := from.Withdraw(amount); err != nil {
		return err
	}
	if _, err := to.Deposit(amount); err != nil {
		// 補償: 還原扣款
		from.balance = before
		return err
	}
	return nil
}

// Apply 依交易類型執行對應操作
//
// 參數:
//
//	tran: 交易
//
// 回傳:
//
//	int64: 交易後 tran.BalanceAccountID() 帳戶的餘額
//	error: 交易失敗時帳本不變
func (l *Ledger) Apply(tran *Transaction) (int64, error) {
	switch tran.Type {
	case TransactionTypeDeposit:
		return l.Deposit(tran.To, tran.Amount)
	case TransactionTypeWithdraw:
		return l.Withdraw(tran.From, tran.Amount)
	case TransactionTypeTransfer:
		if err := l.Transfer(tran.From, tran.To, tran.Amount); err != nil {
			return 0, err
		}
		return l.accounts[tran.From].balance, nil
	default:
		return 0, ErrInvalidTransactionType
	}
}

// Balance 帳戶餘額
func (l *Ledger) Balance(id int64) (int64, bool) {
	acc, ok := l.accounts[id]
	if !ok {
		return 0, false
	}
	return acc.balance, true
}

func (l *Ledger) sortedIDs() []int64 {
	ids := make([]int64, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
