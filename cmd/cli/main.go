package main

import (
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
		Use:   "tripsettle-cli",
		Short: "TripSettle CLI tool",
		Long:  `A command line interface for interacting with the TripSettle API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TripSettle API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(tripCmd(), settlementCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func tripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Trip operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Trips []struct {
					ID            string `json:"id"`
					Name          string `json:"name"`
					BaseCurrency  string `json:"base_currency"`
					LedgerVersion int64  `json:"ledger_version"`
				} `json:"trips"`
			}
			if err := getJSON("/api/v1/trips", &result); err != nil {
				return err
			}

			for _, trip := range result.Trips {
				fmt.Printf("%-27s %-20s %s v%d\n", trip.ID, truncate(trip.Name, 20), trip.BaseCurrency, trip.LedgerVersion)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <trip-id>",
		Short: "Show a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/trips/"+args[0], &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	return cmd
}

func settlementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settlement operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <trip-id>",
		Short: "Show the trip's current settlement plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/trips/"+args[0]+"/settlement", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute <trip-id>",
		Short: "Recompute the settlement from the current ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := postJSON("/api/v1/trips/"+args[0]+"/settlement/recompute", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pairwise <trip-id>",
		Short: "Show raw pairwise debts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/trips/"+args[0]+"/settlement/pairwise", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <trip-id>",
		Short: "List stored settlement snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/trips/"+args[0]+"/settlement/history", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	return cmd
}

func getJSON(path string, out any) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func postJSON(path string, out any) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
