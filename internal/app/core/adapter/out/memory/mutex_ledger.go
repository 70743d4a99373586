package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	ledger: 單執行緒的領域帳本
//	mu: RWMutex，整個轉帳流程都在同一把鎖內完成
//	processedTransactions: 已處理過的交易 Map (冪等)
//	sequence: 已套用交易的順序號
type MutexLedger struct {
	ledger *domain.Ledger
	mu     sync.RWMutex
	// 已處理過的交易
	processedTransactions map[uuid.UUID]time.Time
	sequence              uint64
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	accounts: 初始帳戶
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
//	error: 初始化錯誤 (如帳戶 ID 重複)
func NewMutexLedger(accounts []*domain.Account) (*MutexLedger, error) {
	ledger, err := seedLedger(accounts)
	if err != nil {
		return nil, err
	}
	return &MutexLedger{
		ledger:                ledger,
		processedTransactions: make(map[uuid.UUID]time.Time),
	}, nil
}

// OpenAccount 註冊新帳戶
func (m *MutexLedger) OpenAccount(ctx context.Context, acc *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.AddAccount(acc)
}

// GetAccountBalance 取得指定帳戶的當前餘額
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//
// 回傳:
//
//	int64: 帳戶餘額
//	error: 查詢錯誤 (如帳戶不存在)
func (m *MutexLedger) GetAccountBalance(ctx context.Context, accountID int64) (int64, error) {
	acc, err := m.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance(), nil
}

// GetAccount 取得帳戶快照
func (m *MutexLedger) GetAccount(ctx context.Context, accountID int64) (domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.ledger.Account(accountID)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return acc, nil
}

// TotalBalance 所有帳戶餘額總和
func (m *MutexLedger) TotalBalance(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.TotalBalance(), nil
}

// Snapshot 在讀鎖內取得帳本快照
func (m *MutexLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Snapshot(), nil
}

// PostTransaction 處理交易請求 (Level 1: Mutex Lock)
//
// 參數:
//
//	ctx: 上下文
//	tran: 交易請求物件
//
// 回傳:
//
//	int64: tran.BalanceAccountID() 帳戶的交易後餘額 (鎖內讀取)
//	error: 處理錯誤
func (m *MutexLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) (int64, error) {
	if err := tran.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.postTransactionInternal(tran)
}

// postTransactionInternal 執行交易核心邏輯，呼叫端需持有寫鎖
func (m *MutexLedger) postTransactionInternal(tran *domain.Transaction) (int64, error) {
	if _, ok := m.processedTransactions[tran.TransactionID]; ok {
		// 重送: 不再套用，回報目前餘額
		balance, _ := m.ledger.Balance(tran.BalanceAccountID())
		return balance, nil
	}

	balance, err := m.ledger.Apply(tran)
	if err != nil {
		return 0, err
	}

	m.sequence++
	tran.Sequence = m.sequence
	m.processedTransactions[tran.TransactionID] = time.Now()
	return balance, nil
}

// seedLedger 以初始帳戶建立領域帳本
func seedLedger(accounts []*domain.Account) (*domain.Ledger, error) {
	ledger := domain.NewLedger()
	for _, acc := range accounts {
		if err := ledger.AddAccount(acc); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
