package memory

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

func seedAccounts(t *testing.T, balances map[int64]int64) []*domain.Account {
	t.Helper()
	accounts := make([]*domain.Account, 0, len(balances))
	for id, bal := range balances {
		acc, err := domain.RestoreAccount(id, "holder", bal)
		require.NoError(t, err)
		accounts = append(accounts, acc)
	}
	return accounts
}

// post 只看錯誤的 PostTransaction
func post(ctx context.Context, ledger usecase.Ledger, tran *domain.Transaction) error {
	_, err := ledger.PostTransaction(ctx, tran)
	return err
}

// engines 兩種引擎跑同一組測試
func engines(t *testing.T, balances map[int64]int64) map[string]usecase.Ledger {
	t.Helper()
	mutexLedger, err := NewMutexLedger(seedAccounts(t, balances))
	require.NoError(t, err)

	lmaxLedger, err := NewLMAXLedger(seedAccounts(t, balances), 16)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	lmaxLedger.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-lmaxLedger.Done()
	})

	return map[string]usecase.Ledger{
		"mutex": mutexLedger,
		"lmax":  lmaxLedger,
	}
}

func TestNewLedgerRejectsDuplicateSeed(t *testing.T) {
	a, _ := domain.NewAccount(1, "a")
	b, _ := domain.NewAccount(1, "b")

	_, err := NewMutexLedger([]*domain.Account{a, b})
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	a, _ = domain.NewAccount(1, "a")
	b, _ = domain.NewAccount(1, "b")
	_, err = NewLMAXLedger([]*domain.Account{a, b}, 0)
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
}

func TestNewLedgerRejectsSeedTotalOverflow(t *testing.T) {
	_, err := NewMutexLedger(seedAccounts(t, map[int64]int64{1: math.MaxInt64, 2: 2}))
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
	_, err = NewLMAXLedger(seedAccounts(t, map[int64]int64{1: math.MaxInt64, 2: 2}), 0)
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
}

func TestEnginePostTransaction(t *testing.T) {
	ctx := context.Background()
	for name, ledger := range engines(t, map[int64]int64{1: 25000, 2: 30000}) {
		t.Run(name, func(t *testing.T) {
			tran := domain.NewTransfer(1, 2, 10000)
			bal, err := ledger.PostTransaction(ctx, tran)
			require.NoError(t, err)
			assert.Equal(t, int64(15000), bal)
			assert.Equal(t, uint64(1), tran.Sequence)

			bal, err = ledger.GetAccountBalance(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(15000), bal)
			bal, err = ledger.GetAccountBalance(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(40000), bal)

			snap, err := ledger.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Account 1 (holder) has a balance of $150.00\nAccount 2 (holder) has a balance of $400.00", snap.Summary)
			assert.Equal(t, "Bank total balance: $550.00", snap.TotalLine)

			bal, err = ledger.PostTransaction(ctx, domain.NewDeposit(1, 5))
			require.NoError(t, err)
			assert.Equal(t, int64(15005), bal)
			bal, err = ledger.PostTransaction(ctx, domain.NewWithdraw(1, 5))
			require.NoError(t, err)
			assert.Equal(t, int64(15000), bal)
			total, err := ledger.TotalBalance(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(55000), total)
		})
	}
}

func TestEngineIdempotency(t *testing.T) {
	ctx := context.Background()
	for name, ledger := range engines(t, map[int64]int64{1: 100, 2: 0}) {
		t.Run(name, func(t *testing.T) {
			tran := domain.NewTransfer(1, 2, 60)
			require.NoError(t, post(ctx, ledger, tran))
			// 同一筆交易重送，不會重複扣款，回報目前餘額
			require.NoError(t, post(ctx, ledger, domain.NewDeposit(1, 5)))
			bal, err := ledger.PostTransaction(ctx, tran)
			require.NoError(t, err)
			assert.Equal(t, int64(45), bal)
			require.NoError(t, post(ctx, ledger, domain.NewWithdraw(1, 5)))

			bal, err = ledger.GetAccountBalance(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(40), bal)

			// 失敗的交易不記錄，之後可以重試
			retry := domain.NewTransfer(1, 2, 50)
			assert.ErrorIs(t, post(ctx, ledger, retry), domain.ErrInsufficientFunds)
			require.NoError(t, post(ctx, ledger, domain.NewDeposit(1, 10)))
			require.NoError(t, post(ctx, ledger, retry))

			bal, err = ledger.GetAccountBalance(ctx, 1)
			require.NoError(t, err)
			assert.Zero(t, bal)
		})
	}
}

func TestEngineErrors(t *testing.T) {
	ctx := context.Background()
	for name, ledger := range engines(t, map[int64]int64{1: 100}) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, post(ctx, ledger, domain.NewTransfer(1, 9, 1)), domain.ErrAccountNotFound)
			assert.ErrorIs(t, post(ctx, ledger, domain.NewTransfer(1, 9, -1)), domain.ErrNegativeAmount)

			bad := domain.NewDeposit(1, 1)
			bad.Type = 42
			assert.ErrorIs(t, post(ctx, ledger, bad), domain.ErrInvalidTransactionType)

			_, err := ledger.GetAccount(ctx, 9)
			assert.ErrorIs(t, err, domain.ErrAccountNotFound)

			dup, _ := domain.NewAccount(1, "dup")
			assert.ErrorIs(t, ledger.OpenAccount(ctx, dup), domain.ErrAccountAlreadyExists)

			fresh, _ := domain.NewAccount(3, "fresh")
			require.NoError(t, ledger.OpenAccount(ctx, fresh))
			acc, err := ledger.GetAccount(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, "fresh", acc.Holder())
		})
	}
}

func TestEngineConcurrentTransfersConserveTotal(t *testing.T) {
	ctx := context.Background()
	for name, ledger := range engines(t, map[int64]int64{1: 1000, 2: 1000, 3: 1000}) {
		t.Run(name, func(t *testing.T) {
			const n = 200
			var wg sync.WaitGroup
			wg.Add(3 * n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					_ = post(ctx, ledger, domain.NewTransfer(1, 2, 3))
				}()
				go func() {
					defer wg.Done()
					_ = post(ctx, ledger, domain.NewTransfer(2, 3, 5))
				}()
				go func() {
					defer wg.Done()
					_ = post(ctx, ledger, domain.NewTransfer(3, 1, 7))
				}()
			}
			wg.Wait()

			snap, err := ledger.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3000), snap.Total)
			for _, acc := range snap.Accounts {
				assert.GreaterOrEqual(t, acc.Balance(), int64(0))
			}
		})
	}
}

func TestEngineReturnsBalanceOfOwnTransaction(t *testing.T) {
	ctx := context.Background()
	for name, ledger := range engines(t, map[int64]int64{1: 0}) {
		t.Run(name, func(t *testing.T) {
			const workers, perWorker = 32, 200
			balances := make(chan int64, workers*perWorker)
			var wg sync.WaitGroup
			wg.Add(workers)
			for w := 0; w < workers; w++ {
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						bal, err := ledger.PostTransaction(ctx, domain.NewDeposit(1, 1))
						if err != nil {
							t.Error(err)
							return
						}
						balances <- bal
					}
				}()
			}
			wg.Wait()
			close(balances)

			// 每筆存款 1，回傳的餘額必須剛好是 1..N 各一次
			seen := make(map[int64]bool, workers*perWorker)
			for bal := range balances {
				assert.False(t, seen[bal], "balance %d returned twice", bal)
				seen[bal] = true
			}
			assert.Len(t, seen, workers*perWorker)
			for want := int64(1); want <= workers*perWorker; want++ {
				assert.True(t, seen[want], "balance %d never returned", want)
			}
		})
	}
}

func TestLMAXLedgerClosed(t *testing.T) {
	ledger, err := NewLMAXLedger(seedAccounts(t, map[int64]int64{1: 10}), 1)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	ledger.Start(ctx)

	bal, err := ledger.GetAccountBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal)

	cancel()
	<-ledger.Done()

	err = post(context.Background(), ledger, domain.NewDeposit(1, 1))
	assert.ErrorIs(t, err, domain.ErrLedgerClosed)
}

func TestLMAXLedgerContextCanceledBeforeStart(t *testing.T) {
	// 未啟動且輸送帶已滿時，呼叫端依 ctx 放棄等待
	ledger, err := NewLMAXLedger(seedAccounts(t, map[int64]int64{1: 10}), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = post(ctx, ledger, domain.NewDeposit(1, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
