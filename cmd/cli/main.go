package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "settlement-cli",
		Short: "Settlement CLI tool",
		Long:  `A command line interface for interacting with the settlement API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the settlement API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		reconcileCmd(),
		balanceCmd(),
		walletsCmd(),
		transactionCmd(),
		statsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check wallet balances against the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doGet("/api/v1/reconciliation")
			if err != nil {
				return err
			}

			var result struct {
				Consistent        bool     `json:"consistent"`
				MismatchedWallets []string `json:"mismatched_wallets"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if result.Consistent {
				fmt.Println("Reconciliation PASSED")
				return nil
			}

			fmt.Println("Reconciliation FAILED")
			for _, id := range result.MismatchedWallets {
				fmt.Printf("  mismatched wallet: %s\n", id)
			}
			os.Exit(1)
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's aggregated balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doGet("/api/v1/users/" + args[0] + "/balance?currency=" + currency)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency to aggregate")
	return cmd
}

func walletsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallets <user-id>",
		Short: "List a user's wallets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doGet("/api/v1/users/" + args[0] + "/wallets")
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
}

func transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Settlement transaction operations",
	}

	get := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doGet("/api/v1/transactions/" + args[0])
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm <transaction-id>",
		Short: "Confirm a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doPost("/api/v1/transactions/"+args[0]+"/confirm", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	var reason string
	fail := &cobra.Command{
		Use:   "fail <transaction-id>",
		Short: "Fail a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{"reason": reason})
			if err != nil {
				return err
			}
			body, err := doPost("/api/v1/transactions/"+args[0]+"/fail", payload)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
	fail.Flags().StringVar(&reason, "reason", "", "Failure reason")

	cmd.AddCommand(get, confirm, fail)
	return cmd
}

func statsCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Show a user's journal statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doGet("/api/v1/users/" + args[0] + "/records/stats?currency=" + currency)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency to aggregate")
	return cmd
}

func doGet(path string) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func doPost(path string, payload []byte) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// printJSON re-indents a raw JSON body; non-JSON bodies print as-is.
func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(buf.String())
}
