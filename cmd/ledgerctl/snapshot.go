package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JoeShih716/go-ledger-core/pkg/wal"
)

func saveCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save [key]",
		Short: "Save a snapshot to the server's snapshot store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			resp, err := c.client.SaveSnapshot(ctx, firstArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func loadCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "load [key]",
		Short: "Replace the ledger with a snapshot from the server's snapshot store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			if err := c.client.LoadSnapshot(ctx, firstArg(args)); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"loaded": true})
		},
	}
}

func exportCommand(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Download a snapshot into a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			data, err := c.client.ExportSnapshot(ctx, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, wal.FileModePrivate); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"file": args[0], "bytes": len(data)})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "snapshot format (json or proto)")
	return cmd
}

func importCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with a local snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.ctx(cmd)
			defer cancel()
			if err := c.client.ImportSnapshot(ctx, data); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"file": args[0], "imported": true})
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
