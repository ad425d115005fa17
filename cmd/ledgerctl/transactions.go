package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

// amountCall 是 Client.Deposit / Client.Withdraw 的 method expression
type amountCall func(*grpc_adapter.Client, context.Context, *grpc_adapter.AmountRequest, ...grpc.CallOption) (*grpc_adapter.TransactionResponse, error)

// amountCommand 存款與提款共用的命令
func amountCommand(c *cli, use, short string, call amountCall) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   use + " <id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			resp, err := call(c.client, ctx, &grpc_adapter.AmountRequest{AccountID: id, Amount: amount, Description: description})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	return cmd
}

func depositCommand(c *cli) *cobra.Command {
	return amountCommand(c, "deposit", "Deposit into an account", (*grpc_adapter.Client).Deposit)
}

func withdrawCommand(c *cli) *cobra.Command {
	return amountCommand(c, "withdraw", "Withdraw from an account", (*grpc_adapter.Client).Withdraw)
}

func transferCommand(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move funds between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			to, err := parseAccountID(args[1])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[2])
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			resp, err := c.client.Transfer(ctx, &grpc_adapter.TransferRequest{
				FromAccountID: from,
				ToAccountID:   to,
				Amount:        amount,
				Description:   description,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	return cmd
}

// parseEntry 解析 "account:debit:credit"
func parseEntry(raw string) (domain.TransactionEntry, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return domain.TransactionEntry{}, fmt.Errorf("entry %q must be account:debit:credit", raw)
	}
	id, err := parseAccountID(parts[0])
	if err != nil {
		return domain.TransactionEntry{}, err
	}
	debit, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("entry %q: invalid debit", raw)
	}
	credit, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("entry %q: invalid credit", raw)
	}
	return domain.TransactionEntry{AccountID: id, Debit: debit, Credit: credit}, nil
}

func recordCommand(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "record <account:debit:credit>...",
		Short: "Record a balanced multi-entry transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]domain.TransactionEntry, 0, len(args))
			for _, raw := range args {
				e, err := parseEntry(raw)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			resp, err := c.client.RecordTransaction(ctx, &grpc_adapter.RecordTransactionRequest{
				Description: description,
				Entries:     entries,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	return cmd
}

func transactionsCommand(c *cli) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the journal, optionally for one account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *domain.AccountID
			if account != "" {
				id, err := parseAccountID(account)
				if err != nil {
					return err
				}
				filter = &id
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			txs, err := c.client.ListTransactions(ctx, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txs)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")
	return cmd
}
