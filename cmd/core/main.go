package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	memory_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/config"
	grpcx "github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/logger"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the yaml config file")
	demo := flag.Bool("demo", true, "run the demo scenario against accounts 1 and 2")
	flag.Parse()

	// 1. 載入設定
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *demo, log, os.Stdout); err != nil {
		log.Error("bank exited with error", "error", err)
		os.Exit(1)
	}
}

// loadConfig 檔案不存在時使用預設設定
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func run(ctx context.Context, cfg config.Config, demo bool, log *slog.Logger, out io.Writer) error {
	// 2. 載入 account
	accounts, err := loadAccounts(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("accounts loaded", "count", len(accounts), "engine", cfg.Ledger.Engine)

	// 3. 初始化 Ledger
	ledger, shutdown, err := newLedger(ctx, cfg.Ledger, accounts)
	if err != nil {
		return err
	}
	defer shutdown()

	// 4. 初始化 UseCase
	core := usecase.NewCoreUseCase(ledger, log)

	if demo {
		if err := runScenario(ctx, core, out); err != nil {
			return err
		}
	}

	if !cfg.Grpc.Enabled {
		return nil
	}
	return serve(ctx, cfg.Grpc.Addr, core, log)
}

func loadAccounts(ctx context.Context, cfg config.Config, log *slog.Logger) ([]*domain.Account, error) {
	if cfg.MySQL.Enabled {
		dbClient, err := mysql.NewClient(ctx, cfg.MySQL.Config)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		defer dbClient.Close()
		log.Info("connected to mysql", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName)
		return mysql_adapter.NewAccountStore(dbClient).LoadAllAccounts(ctx)
	}

	seeds := cfg.Accounts
	if len(seeds) == 0 {
		seeds = []config.AccountSeed{
			{ID: 1, Holder: "Giorgi"},
			{ID: 2, Holder: "QioJI"},
		}
	}
	accounts := make([]*domain.Account, 0, len(seeds))
	for _, seed := range seeds {
		acc, err := domain.RestoreAccount(seed.ID, seed.Holder, seed.Deposit)
		if err != nil {
			return nil, fmt.Errorf("seed account %d: %w", seed.ID, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// newLedger 依設定建立引擎，回傳的 shutdown 需在結束時呼叫
func newLedger(ctx context.Context, cfg config.LedgerConfig, accounts []*domain.Account) (usecase.Ledger, func(), error) {
	switch cfg.Engine {
	case config.EngineLMAX:
		lmax, err := memory_adapter.NewLMAXLedger(accounts, cfg.QueueSize)
		if err != nil {
			return nil, nil, fmt.Errorf("init lmax ledger: %w", err)
		}
		// 引擎使用獨立的 ctx，讓 gRPC GracefulStop 期間仍可處理請求
		engineCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		lmax.Start(engineCtx)
		return lmax, func() {
			cancel()
			<-lmax.Done()
		}, nil
	case config.EngineMutex:
		mutex, err := memory_adapter.NewMutexLedger(accounts)
		if err != nil {
			return nil, nil, fmt.Errorf("init mutex ledger: %w", err)
		}
		return mutex, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, cfg.Engine)
	}
}

// runScenario 示範流程，任何錯誤都直接中止
func runScenario(ctx context.Context, core *usecase.CoreUseCase, out io.Writer) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"deposit 1", func() error { _, err := core.Deposit(ctx, 1, 50000); return err }},
		{"withdraw 1", func() error { _, err := core.Withdraw(ctx, 1, 25000); return err }},
		{"deposit 2", func() error { _, err := core.Deposit(ctx, 2, 30000); return err }},
		{"transfer 1->2", func() error { return core.Transfer(ctx, 1, 2, 10000) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	snap, err := core.Snapshot(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n%s\n", snap.Summary, snap.TotalLine)
	return err
}

func serve(ctx context.Context, addr string, core *usecase.CoreUseCase, log *slog.Logger) error {
	// 5. 初始化 gRPC Adapter (Driving Adapter)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcx.UnaryServerLogging(log)))
	grpc_adapter.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(core))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus(grpc_adapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting grpc server", "addr", lis.Addr().String())
		errCh <- s.Serve(lis)
	}()

	// Graceful Shutdown
	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")
	healthServer.Shutdown()
	s.GracefulStop()
	log.Info("server exited")
	return nil
}
