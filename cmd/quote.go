package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"jup-swap/config"
	"jup-swap/pkg/client"
	"jup-swap/pkg/parser"
	"jup-swap/pkg/swap"
)

var quoteSlippageBps int

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <input-token> to <output-token>",
	Short: "Fetch a swap quote without executing",
	Long: `Fetch a priced route from the Jupiter aggregator without building or
signing a transaction. No wallet is required.

Examples:
  jup-swap quote 2.5 SOL to USDC
  jup-swap quote 100 USDC to SOL --slippage-bps 100`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().IntVar(&quoteSlippageBps, "slippage-bps", 0, "Max slippage in basis points (default from config)")
}

func runQuote(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	swapCommand, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	bps := quoteSlippageBps
	if bps == 0 {
		bps = cfg.SlippageBps
	}

	intent, err := swapCommand.ToIntent(bps)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := intent.Validate(); err != nil {
		printError(err)
		os.Exit(1)
	}

	amountBase, err := swap.ToBaseUnits(intent.HumanAmount, intent.Input.Decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	aggregator := client.NewJupiterClient(client.Config{
		BaseURL:  cfg.QuoteAPIURL,
		Timeout:  cfg.HTTPTimeout,
		QuoteTTL: cfg.QuoteTTL,
	}, newLogger(verbose))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := aggregator.GetQuote(ctx, swap.QuoteRequest{
		Input:       intent.Input,
		Output:      intent.Output,
		AmountBase:  amountBase,
		SlippageBps: intent.SlippageBps,
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayQuote(quote, swapCommand)
}
