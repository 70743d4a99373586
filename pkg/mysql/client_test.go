package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewClientFromDBClose(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: newLogger("silent")})
	require.NoError(t, err)

	client := NewClientFromDB(db)
	assert.Same(t, db, client.DB())

	mock.ExpectClose()
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewClientGivesUp(t *testing.T) {
	cfg := Config{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "bank",
		DBName:        "ledger",
		LogLevel:      "silent",
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	}
	_, err := NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewClientContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		Host:          "127.0.0.1",
		Port:          1,
		LogLevel:      "silent",
		MaxRetries:    3,
		RetryInterval: time.Hour,
	}
	_, err := NewClient(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "silent", ""} {
		assert.Implements(t, (*logger.Interface)(nil), newLogger(level))
	}
}
