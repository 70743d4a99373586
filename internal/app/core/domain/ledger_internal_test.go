package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 總額上限讓入帳溢位無法經由 AddAccount 達成，這裡直接組出帳本驗證補償
func TestTransferRollsBackOnDepositOverflow(t *testing.T) {
	src := &Account{id: 1, holder: "src", balance: 10}
	dst := &Account{id: 2, holder: "dst", balance: math.MaxInt64}
	l := &Ledger{
		accounts: map[int64]*Account{1: src, 2: dst},
	}

	err := l.Transfer(1, 2, 5)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, int64(10), src.balance)
	assert.Equal(t, int64(math.MaxInt64), dst.balance)
}

func TestBalance(t *testing.T) {
	l := NewLedger()
	assert.NoError(t, l.AddAccount(&Account{id: 7, holder: "x", balance: 42}))

	bal, ok := l.Balance(7)
	assert.True(t, ok)
	assert.Equal(t, int64(42), bal)
	_, ok = l.Balance(8)
	assert.False(t, ok)
}
