package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	grpcx "github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/logger"
)

func main() {
	target := flag.String("target", "localhost:50051", "ledger gRPC address")
	total := flag.Int("n", 100000, "number of deposits to send")
	concurrency := flag.Int("c", 1000, "concurrent in-flight requests")
	accountID := flag.Int64("account", 1, "account receiving the deposits")
	amount := flag.Int64("amount", 100, "deposit amount in minor units")
	flag.Parse()

	log := logger.Setup(logger.Config{Level: "info", Prefix: "rpc-client"})

	pool := grpcx.NewPool(grpcx.WithInterceptor(grpcx.UnaryClientLogging(log)))
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		log.Error("did not connect", "error", err)
		os.Exit(1)
	}
	c := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	before, err := c.TotalBalance(ctx)
	if err != nil {
		log.Error("total balance failed", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	var failed atomic.Int64
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *total; i++ {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := c.Transfer(ctx, &grpc_adapter.TransferRequest{
				RefID:       uuid.NewString(),
				Type:        grpc_adapter.TransactionTypeDeposit,
				ToAccountID: *accountID,
				Amount:      *amount,
			})
			if err == nil && !resp.Success {
				err = fmt.Errorf("rejected: %s", resp.Message)
			}
			if err != nil {
				failed.Add(1)
				if idx%10000 == 0 {
					log.Warn("deposit failed", "index", idx, "error", err)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	after, err := c.TotalBalance(ctx)
	if err != nil {
		log.Error("total balance failed", "error", err)
		os.Exit(1)
	}
	summary, err := c.Summary(ctx)
	if err != nil {
		log.Error("summary failed", "error", err)
		os.Exit(1)
	}

	ok := int64(*total) - failed.Load()
	fmt.Println(summary)
	fmt.Printf("Completed %d requests (%d failed) in %v\n", *total, failed.Load(), elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
	if want := ok * *amount; after-before != want {
		log.Error("total balance drift", "before", before, "after", after, "expected_delta", want)
		os.Exit(1)
	}
	log.Info("total balance consistent", "delta", after-before)
}
