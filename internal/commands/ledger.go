package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type balanceResult struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

type accountResult struct {
	AccountNumber string `json:"account_number"`
	OwnerID       string `json:"owner_id"`
	Balance       string `json:"balance"`
}

type historyResult struct {
	Transactions []struct {
		ID        string  `json:"id"`
		Type      string  `json:"type"`
		Amount    string  `json:"amount"`
		Date      string  `json:"date"`
		ToAccount *string `json:"to_account"`
	} `json:"transactions"`
}

func newOpenCommand(client *apiClient) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account with a zero balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out accountResult
			err := client.do("POST", "/accounts", map[string]string{"owner_id": ownerID}, &out)
			if err != nil {
				return err
			}
			fmt.Printf("account %s opened (balance %s)\n", out.AccountNumber, out.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func newBalanceCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out balanceResult
			if err := client.do("GET", "/accounts/"+args[0]+"/balance", nil, &out); err != nil {
				return err
			}
			fmt.Println(out.Balance)
			return nil
		},
	}
}

func newDepositCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Deposit funds into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out balanceResult
			err := client.do("POST", "/accounts/"+args[0]+"/deposit", map[string]string{"amount": args[1]}, &out)
			if err != nil {
				return err
			}
			fmt.Printf("new balance: %s\n", out.Balance)
			return nil
		},
	}
}

func newWithdrawCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <account> <amount>",
		Short: "Withdraw funds from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out balanceResult
			err := client.do("POST", "/accounts/"+args[0]+"/withdraw", map[string]string{"amount": args[1]}, &out)
			if err != nil {
				return err
			}
			fmt.Printf("new balance: %s\n", out.Balance)
			return nil
		},
	}
}

func newTransferCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer funds between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out balanceResult
			err := client.do("POST", "/transfers", map[string]string{
				"from_account": args[0],
				"to_account":   args[1],
				"amount":       args[2],
			}, &out)
			if err != nil {
				return err
			}
			fmt.Printf("new balance: %s\n", out.Balance)
			return nil
		},
	}
}

func newHistoryCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "history <account>",
		Short: "Show an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out historyResult
			if err := client.do("GET", "/accounts/"+args[0]+"/transactions", nil, &out); err != nil {
				return err
			}
			for _, t := range out.Transactions {
				if t.ToAccount != nil {
					fmt.Printf("%s  %-9s %10s  -> %s  (%s)\n", t.Date, t.Type, t.Amount, *t.ToAccount, t.ID)
				} else {
					fmt.Printf("%s  %-9s %10s  (%s)\n", t.Date, t.Type, t.Amount, t.ID)
				}
			}
			return nil
		},
	}
}
