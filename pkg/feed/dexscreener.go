package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public DexScreener token endpoint.
	DefaultBaseURL = "https://api.dexscreener.com/latest/dex/tokens"

	DefaultTimeout = 10 * time.Second
)

// TokenInfo is the read-only market snapshot for a token, taken from the most
// liquid pair DexScreener reports. It is display data only and never feeds the
// swap orchestrator.
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Mint        string `json:"mint"`
	PriceUsd    string `json:"price_usd"`
	PriceNative string `json:"price_native"`
	DexID       string `json:"dex_id"`
	PairAddress string `json:"pair_address"`
}

// Client fetches token market data from DexScreener.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a DexScreener feed client.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type pairsResponse struct {
	Pairs []struct {
		DexID       string `json:"dexId"`
		PairAddress string `json:"pairAddress"`
		PriceUsd    string `json:"priceUsd"`
		PriceNative string `json:"priceNative"`
		BaseToken   struct {
			Address string `json:"address"`
			Name    string `json:"name"`
			Symbol  string `json:"symbol"`
		} `json:"baseToken"`
	} `json:"pairs"`
}

// GetToken looks up a token by mint address and returns its first reported pair.
func (c *Client) GetToken(ctx context.Context, mint string) (*TokenInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode token data: %w", err)
	}

	if len(parsed.Pairs) == 0 {
		return nil, fmt.Errorf("token '%s' not found", mint)
	}

	pair := parsed.Pairs[0]
	return &TokenInfo{
		Name:        pair.BaseToken.Name,
		Symbol:      pair.BaseToken.Symbol,
		Mint:        pair.BaseToken.Address,
		PriceUsd:    pair.PriceUsd,
		PriceNative: pair.PriceNative,
		DexID:       pair.DexID,
		PairAddress: pair.PairAddress,
	}, nil
}
