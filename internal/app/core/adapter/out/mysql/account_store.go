package mysql

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        int64 `gorm:"primaryKey"`
	Holder    string
	Balance   int64
	UpdatedAt int64 `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// AccountStore 帳戶目錄，啟動時載入記憶體帳本
// 只讀: 帳本的變動不會寫回資料庫
type AccountStore struct {
	client *mysql.Client
}

func NewAccountStore(client *mysql.Client) *AccountStore {
	return &AccountStore{
		client: client,
	}
}

// LoadAllAccounts 依 id 排序載入所有帳戶
func (s *AccountStore) LoadAllAccounts(ctx context.Context) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		acc, err := domain.RestoreAccount(row.ID, row.Holder, row.Balance)
		if err != nil {
			return nil, fmt.Errorf("restore account %d: %w", row.ID, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
