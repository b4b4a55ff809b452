package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jup-swap/config"
	"jup-swap/pkg/client"
	"jup-swap/pkg/parser"
	"jup-swap/pkg/signer"
	"jup-swap/pkg/swap"
)

var (
	slippageBps int
	noConfirm   bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <input-token> to <output-token>",
	Short: "Swap Solana tokens through the Jupiter aggregator",
	Long: `Swap tokens on Solana using the Jupiter aggregator.

The configured wallet (JUP_SWAP_SOLANA_PRIVATE_KEY) signs and submits the
transaction. Quotes are short-lived: if the quote expires before you confirm,
re-run the command to fetch a fresh one.

Examples:
  # Swap by symbol
  jup-swap swap 2.5 SOL to USDC

  # Swap to a raw mint address with custom slippage
  jup-swap swap 1 SOL to EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --slippage-bps 100

  # Skip the confirmation prompt
  jup-swap swap 0.1 SOL to USDC --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().IntVar(&slippageBps, "slippage-bps", 0, "Max slippage in basis points (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Parse the command
	commandStr := strings.Join(args, " ")
	swapCommand, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	bps := slippageBps
	if bps == 0 {
		bps = cfg.SlippageBps
	}

	intent, err := swapCommand.ToIntent(bps)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	logger := newLogger(verbose)

	// Wire the session: Jupiter serves both quoting and transaction building,
	// the local keypair signs and submits.
	aggregator := client.NewJupiterClient(client.Config{
		BaseURL:  cfg.QuoteAPIURL,
		Timeout:  cfg.HTTPTimeout,
		QuoteTTL: cfg.QuoteTTL,
	}, logger)

	keypair, err := signer.NewKeypairSigner(signer.KeypairConfig{
		RPCUrl:        cfg.Solana.RPCUrl,
		PrivateKey:    cfg.Solana.PrivateKey,
		Commitment:    cfg.Solana.Commitment,
		SkipPreflight: cfg.Solana.SkipPreflight,
	}, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	opts := []swap.SessionOption{swap.WithQuoteTTL(cfg.QuoteTTL)}
	if !jsonOutput {
		opts = append(opts, swap.WithEventSink(printEvent))
	}
	session := swap.NewSession(aggregator, aggregator, signer.NewGateway(keypair, logger), logger, opts...)

	if err := session.Connect(keypair.PublicKey()); err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := session.SetIntent(intent); err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Fetch quote with spinner
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := session.RequestQuote(ctx)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		displayQuote(quote, swapCommand)

		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}

		s.Suffix = " Building, signing and submitting swap..."
		s.Start()
	}

	result, err := session.ExecuteSwap(ctx)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"signature":    result.Signature,
			"in_amount":    swap.FromBaseUnits(quote.InAmountBase, quote.Input.Decimals),
			"input_token":  swapCommand.InputToken,
			"out_amount":   swap.FromBaseUnits(quote.OutAmountBase, quote.Output.Decimals),
			"output_token": swapCommand.OutputToken,
			"slippage_bps": quote.SlippageBps,
			"status":       "submitted",
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	printSuccess(color.GreenString("✓ Swap submitted!"))
	fmt.Printf("  Signature: %s\n", color.CyanString(result.Signature))
	fmt.Println("\nYou can check the transaction using:")
	color.Cyan("  jup-swap status %s\n", result.Signature)
}

func displayQuote(quote *swap.Quote, swapCommand *parser.SwapCommand) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:          %s %s\n",
		swap.FromBaseUnits(quote.InAmountBase, quote.Input.Decimals), color.YellowString(swapCommand.InputToken))
	fmt.Printf("  To:            ~%s %s\n",
		swap.FromBaseUnits(quote.OutAmountBase, quote.Output.Decimals), color.YellowString(swapCommand.OutputToken))
	fmt.Printf("  Price Impact:  %s%%\n", quote.PriceImpactPct)
	fmt.Printf("  Max Slippage:  %d bps\n", quote.SlippageBps)
	fmt.Printf("  Quote ID:      %s\n", quote.ID)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// printEvent renders warn and error session events for the terminal.
func printEvent(evt swap.Event) {
	switch evt.Severity {
	case swap.SeverityWarn:
		color.Yellow("  [%s] %s", evt.Kind, evt.Message)
	case swap.SeverityError:
		color.Red("  [%s] %s", evt.Kind, evt.Message)
	}
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
