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
	"jup-swap/pkg/feed"
	"jup-swap/pkg/parser"
)

var priceCmd = &cobra.Command{
	Use:   "price <token>",
	Short: "Show a token's market price from DexScreener",
	Long: `Look up a token's current market data on DexScreener by symbol or mint
address. This is display data only; swap pricing always comes from a fresh
aggregator quote.

Examples:
  jup-swap price USDC
  jup-swap price DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263`,
	Args: cobra.ExactArgs(1),
	Run:  runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	asset, err := parser.ResolveAsset(args[0])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	feedClient := feed.NewClient(cfg.DexScreenerURL, cfg.HTTPTimeout, newLogger(verbose))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := feedClient.GetToken(ctx, asset.Mint)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  %s (%s)\n", color.GreenString(info.Name), color.YellowString(info.Symbol))
	fmt.Printf("  Mint:   %s\n", info.Mint)
	fmt.Printf("  Price:  $%s\n", color.CyanString(info.PriceUsd))
	fmt.Printf("  Dex:    %s\n", info.DexID)
	fmt.Printf("  Pair:   %s\n\n", info.PairAddress)
}
