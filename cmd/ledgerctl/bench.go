package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/grpc"
)

type benchResult struct {
	Mode        string        `json:"mode"`
	Requests    int           `json:"requests"`
	Failed      int64         `json:"failed"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	TPS         float64       `json:"tps"`
	FromAccount uint32        `json:"from_account"`
	ToAccount   uint32        `json:"to_account"`
}

// benchCommand 對服務端送出大量並發交易並計算 TPS
func benchCommand(c *cli) *cobra.Command {
	var (
		total       int
		concurrency int
		amount      int64
		mode        string
		duration    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Fire concurrent deposits or transfers and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total <= 0 || concurrency <= 0 || amount <= 0 {
				return fmt.Errorf("count, concurrency and amount must be positive")
			}
			if mode != "deposit" && mode != "transfer" {
				return fmt.Errorf("unknown mode %q", mode)
			}

			setupCtx, cancelSetup := c.ctx(cmd)
			defer cancelSetup()
			// 轉帳模式先把來源帳戶存滿，所有請求都應該成功
			initial := int64(0)
			if mode == "transfer" {
				initial = amount * int64(total)
			}
			from, err := c.client.CreateAccount(setupCtx, "bench-from", initial, "")
			if err != nil {
				return err
			}
			to, err := c.client.CreateAccount(setupCtx, "bench-to", 0, "")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), duration)
			defer cancel()

			var (
				wg     sync.WaitGroup
				failed atomic.Int64
				sem    = make(chan struct{}, concurrency)
			)
			start := time.Now()
			for i := 0; i < total; i++ {
				sem <- struct{}{}
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					defer func() { <-sem }()

					var err error
					if mode == "transfer" {
						_, err = c.client.Transfer(ctx, &grpc_adapter.TransferRequest{
							FromAccountID: from,
							ToAccountID:   to,
							Amount:        amount,
						})
					} else {
						_, err = c.client.Deposit(ctx, &grpc_adapter.AmountRequest{AccountID: to, Amount: amount})
					}
					if err != nil {
						failed.Add(1)
						if idx%10000 == 0 {
							logrus.Warnf("request %d failed: %v", idx, err)
						}
					}
				}(i)
			}
			wg.Wait()
			elapsed := time.Since(start)

			return printJSON(cmd.OutOrStdout(), benchResult{
				Mode:        mode,
				Requests:    total,
				Failed:      failed.Load(),
				Elapsed:     elapsed,
				TPS:         float64(total) / elapsed.Seconds(),
				FromAccount: uint32(from),
				ToAccount:   uint32(to),
			})
		},
	}
	cmd.Flags().IntVar(&total, "count", 100000, "number of requests")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1000, "requests in flight")
	cmd.Flags().Int64Var(&amount, "amount", 100, "amount per request in minor units")
	cmd.Flags().StringVar(&mode, "mode", "transfer", "deposit or transfer")
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Minute, "overall deadline")
	return cmd
}

