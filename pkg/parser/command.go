package parser

import (
	"fmt"
	"regexp"
	"strings"

	"jup-swap/pkg/swap"
)

// SwapCommand is the parsed form of a natural swap command. Tokens may be symbols
// from the known registry or raw base58 mint addresses.
type SwapCommand struct {
	Amount      string
	InputToken  string
	OutputToken string
}

// commandPattern matches "<amount> <token> to <token>". The separator is matched
// case-insensitively but token text is preserved as typed, since mint addresses
// are case-sensitive.
var commandPattern = regexp.MustCompile(`^([0-9]+\.?[0-9]*)\s+(\S+)\s+(?i:to)\s+(\S+)$`)

// knownToken describes a registry entry for a common token symbol.
type knownToken struct {
	mint     string
	decimals uint8
}

// knownTokens maps common symbols to their Solana mints and precisions, so users
// can type "SOL" instead of the wrapped SOL mint address.
var knownTokens = map[string]knownToken{
	"SOL":  {"So11111111111111111111111111111111111111112", 9},
	"USDC": {"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 6},
	"USDT": {"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", 6},
	"JUP":  {"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", 6},
	"BONK": {"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", 5},
}

// ParseSwapCommand parses a natural language swap command.
// Examples:
//   - "swap 2.5 SOL to USDC"
//   - "1 SOL to EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
func ParseSwapCommand(command string) (*SwapCommand, error) {
	command = strings.TrimSpace(command)

	// Drop a leading "swap" if present.
	if len(command) >= 5 && strings.EqualFold(command[:5], "swap ") {
		command = strings.TrimSpace(command[5:])
	}

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 2.5 SOL to USDC')")
	}

	return &SwapCommand{
		Amount:      matches[1],
		InputToken:  matches[2],
		OutputToken: matches[3],
	}, nil
}

// ResolveAsset turns a token symbol or raw mint address into an asset reference.
// Unknown mints get the documented default precision and are flagged as assumed.
func ResolveAsset(token string) (swap.AssetRef, error) {
	if known, ok := knownTokens[strings.ToUpper(token)]; ok {
		return swap.NewAssetRef(known.mint, known.decimals), nil
	}

	// Not a known symbol: treat as a raw mint address.
	if err := swap.ValidateIdentity(token); err != nil {
		return swap.AssetRef{}, fmt.Errorf("unknown token '%s': not a known symbol or plausible mint address", token)
	}

	return swap.NewAssetRefAssumed(token), nil
}

// ToIntent resolves both tokens of a parsed command into a swap intent.
func (c *SwapCommand) ToIntent(slippageBps int) (swap.SwapIntent, error) {
	input, err := ResolveAsset(c.InputToken)
	if err != nil {
		return swap.SwapIntent{}, err
	}
	output, err := ResolveAsset(c.OutputToken)
	if err != nil {
		return swap.SwapIntent{}, err
	}

	return swap.SwapIntent{
		Input:       input,
		Output:      output,
		HumanAmount: c.Amount,
		SlippageBps: slippageBps,
	}, nil
}
