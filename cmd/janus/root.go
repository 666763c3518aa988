package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus - API gate service for AI code review traffic",
	Long: `Janus guards the AI code review service. Every request passes three
protection layers before reaching an LLM provider:

  - Sliding-window rate limiting per user, IP, and API key
  - Per-provider circuit breakers around the LLM backends
  - Role-based access control with signed identity tokens

Gate decisions are written to a queryable audit trail.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
