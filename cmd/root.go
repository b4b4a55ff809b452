package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jup-swap",
	Short: "A CLI for Solana token swaps via the Jupiter aggregator",
	Long: `jup-swap is a command-line tool for swapping Solana tokens through the
Jupiter aggregator. It fetches a priced route, builds the swap transaction,
signs it with your configured wallet and submits it.

Examples:
  jup-swap quote 2.5 SOL to USDC
  jup-swap swap 2.5 SOL to USDC --slippage-bps 50
  jup-swap price EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
  jup-swap status <signature>`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// newLogger builds the logger shared by all commands. Debug level when verbose.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
