// Package commands implements the ledgerctl CLI, a thin client for the
// ledger service HTTP API.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var serverURL string

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Command-line client for the ledger service",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "ledger service base URL")

	client := &apiClient{baseURL: func() string { return serverURL }}
	rootCmd.AddCommand(
		newOpenCommand(client),
		newBalanceCommand(client),
		newDepositCommand(client),
		newWithdrawCommand(client),
		newTransferCommand(client),
		newHistoryCommand(client),
	)

	return rootCmd
}
