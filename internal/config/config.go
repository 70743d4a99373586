// Package config 載入 yaml 設定並補齊預設值
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/logger"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// Engine 記憶體帳本的併發模型
type Engine string

const (
	EngineMutex Engine = "mutex"
	EngineLMAX  Engine = "lmax"
)

const DefaultGrpcAddr = ":50051"

type Config struct {
	Ledger   LedgerConfig  `yaml:"ledger"`
	Grpc     GrpcConfig    `yaml:"grpc"`
	Log      logger.Config `yaml:"log"`
	MySQL    MySQLConfig   `yaml:"mysql"`
	Accounts []AccountSeed `yaml:"accounts"`
}

type LedgerConfig struct {
	Engine    Engine `yaml:"engine"`
	QueueSize int    `yaml:"queue_size"` // 只有 lmax 使用
}

type GrpcConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// MySQLConfig Enabled 時從 accounts 表載入初始帳戶，取代 Accounts 清單
type MySQLConfig struct {
	Enabled      bool `yaml:"enabled"`
	mysql.Config `yaml:",inline"`
}

// AccountSeed 啟動時開立的帳戶，金額單位為分
type AccountSeed struct {
	ID      int64  `yaml:"id"`
	Holder  string `yaml:"holder"`
	Deposit int64  `yaml:"deposit"`
}

var (
	ErrUnknownEngine  = errors.New("config: unknown ledger engine")
	ErrInvalidAccount = errors.New("config: invalid account seed")
)

// Load 讀取 path 指向的 yaml 檔
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 yaml 內容，補齊預設值後驗證
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default 不讀檔時使用的設定
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Ledger.Engine == "" {
		c.Ledger.Engine = EngineMutex
	}
	if c.Grpc.Addr == "" {
		c.Grpc.Addr = DefaultGrpcAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// 補全 MySQL 預設配置 (如果 yaml 沒寫)
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
}

// Validate 檢查引擎名稱與帳戶清單
func (c *Config) Validate() error {
	switch c.Ledger.Engine {
	case EngineMutex, EngineLMAX:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Ledger.Engine)
	}
	seen := make(map[int64]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID <= 0 || a.Deposit < 0 {
			return fmt.Errorf("%w: id=%d deposit=%d", ErrInvalidAccount, a.ID, a.Deposit)
		}
		if _, ok := seen[a.ID]; ok {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidAccount, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
