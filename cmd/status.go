package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jup-swap/config"
	"jup-swap/pkg/signer"
)

var statusCmd = &cobra.Command{
	Use:   "status <signature>",
	Short: "Look up a submitted swap transaction",
	Long: `Look up a transaction signature on the configured Solana RPC node and
show its slot, fee and error status.

Example:
  jup-swap status 5UfDu...`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := signer.TransactionInfo(ctx, cfg.Solana.RPCUrl, args[0])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  Signature: %s\n", color.CyanString(args[0]))
	fmt.Printf("  Slot:      %v\n", info["slot"])
	if fee, ok := info["fee"]; ok {
		fmt.Printf("  Fee:       %v lamports\n", fee)
	}
	if txErr, ok := info["err"]; ok && txErr != nil {
		color.Red("  Error:     %v\n", txErr)
	} else {
		color.Green("  Status:    confirmed\n")
	}
	fmt.Println()
}
