package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SolanaConfig holds the wallet and RPC settings for the local keypair signer.
type SolanaConfig struct {
	RPCUrl        string
	PrivateKey    string
	Commitment    string
	SkipPreflight bool
}

// Config holds the application configuration
type Config struct {
	QuoteAPIURL    string
	DexScreenerURL string
	SlippageBps    int
	QuoteTTL       time.Duration
	HTTPTimeout    time.Duration
	Solana         SolanaConfig
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".jup-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("quote_api_url", "https://quote-api.jup.ag/v6")
	viper.SetDefault("dexscreener_url", "https://api.dexscreener.com/latest/dex/tokens")
	viper.SetDefault("slippage_bps", 50)
	viper.SetDefault("quote_ttl", "30s")
	viper.SetDefault("http_timeout", "10s")
	viper.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("solana.commitment", "confirmed")

	// Read from environment variables
	viper.SetEnvPrefix("JUP_SWAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		QuoteAPIURL:    viper.GetString("quote_api_url"),
		DexScreenerURL: viper.GetString("dexscreener_url"),
		SlippageBps:    viper.GetInt("slippage_bps"),
		QuoteTTL:       viper.GetDuration("quote_ttl"),
		HTTPTimeout:    viper.GetDuration("http_timeout"),
		Solana: SolanaConfig{
			RPCUrl:        viper.GetString("solana.rpc_url"),
			PrivateKey:    viper.GetString("solana.private_key"),
			Commitment:    viper.GetString("solana.commitment"),
			SkipPreflight: viper.GetBool("solana.skip_preflight"),
		},
	}

	if cfg.SlippageBps < 0 || cfg.SlippageBps > 10000 {
		return nil, fmt.Errorf("slippage_bps %d outside [0,10000]", cfg.SlippageBps)
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
