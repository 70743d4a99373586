package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

func newMockStore(t *testing.T) (*AccountStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewAccountStore(mysql.NewClientFromDB(db)), mock
}

func TestLoadAllAccounts(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "holder", "balance", "updated_at"}).
		AddRow(1, "Giorgi", 25000, 0).
		AddRow(2, "QioJI", 30000, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `accounts` ORDER BY id")).WillReturnRows(rows)

	accounts, err := store.LoadAllAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Account 1 (Giorgi) has a balance of $250.00", accounts[0].Summary())
	assert.Equal(t, int64(30000), accounts[1].Balance())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAllAccountsRejectsBadRows(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "holder", "balance", "updated_at"}).
		AddRow(1, "Giorgi", -1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `accounts`")).WillReturnRows(rows)

	_, err := store.LoadAllAccounts(context.Background())
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `accounts`")).WillReturnError(errors.New("connection lost"))
	_, err = store.LoadAllAccounts(context.Background())
	assert.ErrorContains(t, err, "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}
