package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// DefaultQueueSize 輸送帶預設緩衝大小
const DefaultQueueSize = 1000

// request 交易請求包裝channel，讓呼叫端可以等待結果
// Tx 與 Op 擇一: Tx 走冪等交易流程，Op 用於開戶與查詢
type request struct {
	Tx *domain.Transaction
	Op func(ledger *domain.Ledger) error
	// Balance 在送出 Result 前由 run loop 寫入，呼叫端收到 Result 後才讀
	Balance int64
	Result  chan error // 讓呼叫端等這個 channel
}

// LMAXLedger 單一 goroutine 擁有帳本，所有請求排隊依序執行，因此帳本本身不需要鎖
type LMAXLedger struct {
	ledger *domain.Ledger
	// 已處理過的交易
	processedTransactions map[uuid.UUID]bool
	sequence              uint64
	// 輸送帶 負責接收請求
	requestChan chan *request
	// run loop 結束後關閉
	done      chan struct{}
	startOnce sync.Once
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 才會開始處理請求
//
// 參數:
//
//	accounts: 初始帳戶
//	queueSize: 輸送帶緩衝大小，<= 0 時使用 DefaultQueueSize
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
//	error: 初始化錯誤
func NewLMAXLedger(accounts []*domain.Account, queueSize int) (*LMAXLedger, error) {
	ledger, err := seedLedger(accounts)
	if err != nil {
		return nil, err
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &LMAXLedger{
		ledger:                ledger,
		processedTransactions: make(map[uuid.UUID]bool),
		requestChan:           make(chan *request, queueSize),
		done:                  make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &request{
					Result: make(chan error, 1),
				}
			},
		},
	}, nil
}

// Start 啟動核心引擎 (非同步)，ctx 取消後處理完剩餘請求即停止
func (l *LMAXLedger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

// Done 引擎停止後關閉
func (l *LMAXLedger) Done() <-chan struct{} {
	return l.done
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			l.drain()
			return
		case req := <-l.requestChan:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requestChan:
			l.process(req)
		default:
			return
		}
	}
}

// process 處理單筆請求並回傳結果
func (l *LMAXLedger) process(req *request) {
	if req.Op != nil {
		req.Result <- req.Op(l.ledger)
		return
	}

	tran := req.Tx
	// 0. Idempotency Check (Thread Safe in Loop)
	if l.processedTransactions[tran.TransactionID] {
		req.Balance, _ = l.ledger.Balance(tran.BalanceAccountID())
		req.Result <- nil
		return
	}

	// 1. 執行業務邏輯 (Deposit/Withdraw/Transfer)
	balance, err := l.ledger.Apply(tran)
	if err != nil {
		req.Result <- err
		return
	}
	req.Balance = balance

	// 2. 更新 Idempotency
	l.sequence++
	tran.Sequence = l.sequence
	l.processedTransactions[tran.TransactionID] = true

	// 3. 回傳結果
	req.Result <- nil
}

// submit 放入輸送帶並等待結果
// PostTransaction(等待) -> Channel -> Run Loop (核心) -> Map Update -> Result Channel -> PostTransaction(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, tran *domain.Transaction, op func(*domain.Ledger) error) (int64, error) {
	req := l.requestPool.Get().(*request)
	req.Tx = tran
	req.Op = op
	req.Balance = 0
	// 清空 Channel (理論上應該是空的)
	select {
	case <-req.Result:
	default:
	}

	select {
	case l.requestChan <- req:
	case <-l.done:
		l.release(req)
		return 0, domain.ErrLedgerClosed
	case <-ctx.Done():
		l.release(req)
		return 0, ctx.Err()
	}

	select {
	case err := <-req.Result:
		return l.finish(req, err)
	case <-l.done:
		// run loop 結束前已處理的請求，結果一定已在 channel 內
		select {
		case err := <-req.Result:
			return l.finish(req, err)
		default:
			return 0, domain.ErrLedgerClosed
		}
	case <-ctx.Done():
		// 請求仍可能被處理，不放回 Pool
		return 0, ctx.Err()
	}
}

// finish 取出結果後放回 Pool
func (l *LMAXLedger) finish(req *request, err error) (int64, error) {
	balance := req.Balance
	l.release(req)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *LMAXLedger) release(req *request) {
	req.Tx = nil
	req.Op = nil
	l.requestPool.Put(req)
}

// PostTransaction 接收交易請求
//
// 參數:
//
//	ctx: 上下文
//	tran: 交易請求物件
//
// 回傳:
//
//	int64: tran.BalanceAccountID() 帳戶的交易後餘額 (在 run loop 內讀取)
//	error: 處理錯誤
func (l *LMAXLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) (int64, error) {
	if err := tran.Validate(); err != nil {
		return 0, err
	}
	return l.submit(ctx, tran, nil)
}

// OpenAccount 註冊新帳戶
func (l *LMAXLedger) OpenAccount(ctx context.Context, acc *domain.Account) error {
	_, err := l.submit(ctx, nil, func(ledger *domain.Ledger) error {
		return ledger.AddAccount(acc)
	})
	return err
}

// GetAccountBalance 取得指定帳戶的當前餘額
func (l *LMAXLedger) GetAccountBalance(ctx context.Context, accountID int64) (int64, error) {
	acc, err := l.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance(), nil
}

// GetAccount 取得帳戶快照
func (l *LMAXLedger) GetAccount(ctx context.Context, accountID int64) (domain.Account, error) {
	var acc domain.Account
	_, err := l.submit(ctx, nil, func(ledger *domain.Ledger) error {
		got, ok := ledger.Account(accountID)
		if !ok {
			return domain.ErrAccountNotFound
		}
		acc = got
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}

// TotalBalance 所有帳戶餘額總和
func (l *LMAXLedger) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	_, err := l.submit(ctx, nil, func(ledger *domain.Ledger) error {
		total = ledger.TotalBalance()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Snapshot 取得帳本快照
func (l *LMAXLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	_, err := l.submit(ctx, nil, func(ledger *domain.Ledger) error {
		snap = ledger.Snapshot()
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
