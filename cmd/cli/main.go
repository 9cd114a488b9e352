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
		Use:   "pocketbank-cli",
		Short: "PocketBank CLI tool",
		Long:  `A command line interface for interacting with the PocketBank daemon.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PocketBank API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Dump the full state snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			dumpSnapshot()
		},
	}

	usageCmd := &cobra.Command{
		Use:   "usage",
		Short: "Show storage usage",
		Run: func(cmd *cobra.Command, args []string) {
			showUsage()
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all stored state and reseed defaults",
		Run: func(cmd *cobra.Command, args []string) {
			resetState()
		},
	}

	rootCmd.AddCommand(snapshotCmd, usageCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) []byte {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	return body
}

func dumpSnapshot() {
	body := get("/api/v1/snapshot")

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func showUsage() {
	body := get("/api/v1/storage/usage")

	var usage struct {
		UsedBytes  int64 `json:"usedBytes"`
		QuotaBytes int64 `json:"quotaBytes"`
	}
	if err := json.Unmarshal(body, &usage); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Used:  %d bytes\n", usage.UsedBytes)
	if usage.QuotaBytes > 0 {
		fmt.Printf("Quota: %d bytes (%.1f%%)\n", usage.QuotaBytes,
			float64(usage.UsedBytes)/float64(usage.QuotaBytes)*100)
	} else {
		fmt.Println("Quota: unreported")
	}
}

func resetState() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/reset", "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Reset FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	fmt.Println("State reset to defaults")
}
