package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/grpc"
	grpcpkg "github.com/JoeShih716/go-ledger-core/pkg/grpc"
)

// cli 所有子命令共用的連線狀態
type cli struct {
	addr    string
	timeout time.Duration
	pool    *grpcpkg.Pool
	client  *grpc_adapter.Client
}

// connect 在子命令執行前建立 gRPC 客戶端
func (c *cli) connect(cmd *cobra.Command, args []string) error {
	c.pool = grpcpkg.NewPool()
	conn, err := c.pool.GetConnection(c.addr)
	if err != nil {
		return err
	}
	c.client = grpc_adapter.NewClient(conn)
	return nil
}

func (c *cli) close(cmd *cobra.Command, args []string) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Close()
}

// ctx 每個請求的 timeout
func (c *cli) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// newRootCommand 建立 ledgerctl 根命令
func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:                "ledgerctl",
		Short:              "Command line client for the ledger gRPC service",
		SilenceUsage:       true,
		PersistentPreRunE:  c.connect,
		PersistentPostRunE: c.close,
	}
	root.PersistentFlags().StringVar(&c.addr, "addr", "localhost:50051", "ledger gRPC address")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 5*time.Second, "per request timeout")

	root.AddCommand(
		createAccountCommand(c),
		closeAccountCommand(c),
		accountCommand(c),
		accountsCommand(c),
		balanceCommand(c),
		depositCommand(c),
		withdrawCommand(c),
		transferCommand(c),
		recordCommand(c),
		transactionsCommand(c),
		reportCommand(c),
		saveCommand(c),
		loadCommand(c),
		exportCommand(c),
		importCommand(c),
		benchCommand(c),
	)
	return root
}

// printJSON 以縮排 JSON 輸出結果
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
