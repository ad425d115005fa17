package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

func parseAccountID(raw string) (domain.AccountID, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", raw)
	}
	return domain.AccountID(id), nil
}

func createAccountCommand(c *cli) *cobra.Command {
	var (
		initial  int64
		currency string
	)
	cmd := &cobra.Command{
		Use:   "create-account <owner>",
		Short: "Open a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			id, err := c.client.CreateAccount(ctx, args[0], initial, currency)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": id})
		},
	}
	cmd.Flags().Int64Var(&initial, "initial", 0, "opening balance in minor units")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (NGN, USD, EUR, GBP)")
	return cmd
}

func closeAccountCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "close-account <id>",
		Short: "Close an account with a zero balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			if err := c.client.CloseAccount(ctx, id); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "closed": true})
		},
	}
}

func accountCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "account <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			acc, err := c.client.GetAccount(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acc)
		},
	}
}

func accountsCommand(c *cli) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			accs, err := c.client.ListAccounts(ctx, owner)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), accs)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "only accounts with this owner")
	return cmd
}

func balanceCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			bal, err := c.client.GetBalance(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bal)
		},
	}
}

func reportCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show total assets and the richest account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			r, err := c.client.Report(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
}
