package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jup-swap/pkg/swap"
)

const (
	// DefaultBaseURL is the public Jupiter v6 aggregator endpoint.
	DefaultBaseURL = "https://quote-api.jup.ag/v6"

	// DefaultTimeout bounds each aggregator call. The core applies no implicit
	// timeouts, so the HTTP client carries an explicit one.
	DefaultTimeout = 10 * time.Second

	noRouteErrorCode = "COULD_NOT_FIND_ANY_ROUTE"
)

// Config holds the Jupiter client settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	QuoteTTL time.Duration
}

// JupiterClient talks to the Jupiter aggregator's quote and swap endpoints. It
// implements both swap.QuoteService and swap.SwapBuilder.
type JupiterClient struct {
	baseURL    string
	quoteTTL   time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
	clock      func() time.Time
}

// NewJupiterClient creates a new aggregator client.
func NewJupiterClient(cfg Config, logger *logrus.Logger) *JupiterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = swap.DefaultQuoteTTL
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &JupiterClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		quoteTTL:   cfg.QuoteTTL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		clock:      time.Now,
	}
}

// quoteResponse mirrors the Jupiter v6 quote payload. Amounts are decimal strings
// of base units. The full raw body is carried along as the opaque route data the
// swap endpoint expects back.
type quoteResponse struct {
	InputMint      string          `json:"inputMint"`
	InAmount       string          `json:"inAmount"`
	OutputMint     string          `json:"outputMint"`
	OutAmount      string          `json:"outAmount"`
	SlippageBps    int             `json:"slippageBps"`
	PriceImpactPct string          `json:"priceImpactPct"`
	RoutePlan      json.RawMessage `json:"routePlan"`
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// GetQuote requests a priced route for the given pair and base-unit amount.
//
// Classification: the aggregator signalling that no route exists is ErrNoRouteFound;
// a response missing its required numeric fields is ErrMalformedQuote; transport
// failures, timeouts and server errors are ErrQuoteUnavailable. Nothing is retried
// here — retry policy belongs to the caller.
func (c *JupiterClient) GetQuote(ctx context.Context, req swap.QuoteRequest) (*swap.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", req.Input.Mint)
	params.Set("outputMint", req.Output.Mint)
	params.Set("amount", strconv.FormatUint(req.AmountBase, 10))
	params.Set("slippageBps", strconv.Itoa(req.SlippageBps))

	endpoint := c.baseURL + "/quote?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(swap.ErrQuoteUnavailable, err.Error())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(swap.ErrQuoteUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(swap.ErrQuoteUnavailable, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message, code := extractAPIError(body)
		if code == noRouteErrorCode || resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "route") {
			return nil, errors.Wrapf(swap.ErrNoRouteFound, "%s -> %s", req.Input.Mint, req.Output.Mint)
		}
		return nil, errors.Wrapf(swap.ErrQuoteUnavailable, "status %d: %s", resp.StatusCode, message)
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(swap.ErrMalformedQuote, err.Error())
	}

	inAmount, err := strconv.ParseUint(parsed.InAmount, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(swap.ErrMalformedQuote, "inAmount %q", parsed.InAmount)
	}
	outAmount, err := strconv.ParseUint(parsed.OutAmount, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(swap.ErrMalformedQuote, "outAmount %q", parsed.OutAmount)
	}
	if len(parsed.RoutePlan) == 0 || string(parsed.RoutePlan) == "null" || string(parsed.RoutePlan) == "[]" {
		return nil, errors.Wrapf(swap.ErrNoRouteFound, "%s -> %s", req.Input.Mint, req.Output.Mint)
	}

	quote := &swap.Quote{
		ID:             uuid.New().String(),
		Input:          req.Input,
		Output:         req.Output,
		InAmountBase:   inAmount,
		OutAmountBase:  outAmount,
		SlippageBps:    parsed.SlippageBps,
		PriceImpactPct: parsed.PriceImpactPct,
		RouteData:      json.RawMessage(body),
		IssuedAt:       c.clock(),
	}

	c.logger.WithFields(logrus.Fields{
		"quoteID":   quote.ID,
		"inAmount":  inAmount,
		"outAmount": outAmount,
		"impact":    quote.PriceImpactPct,
	}).Debug("Quote received")

	return quote, nil
}

// BuildSwap asks the aggregator to construct an unsigned transaction from the
// quote's route data. An expired quote fails fast with ErrQuoteExpired before any
// network call; the aggregator would reject the stale route anyway.
//
// The returned payload is treated as opaque and the quote is never mutated.
func (c *JupiterClient) BuildSwap(ctx context.Context, quote *swap.Quote, identity string) (*swap.SwapTransaction, error) {
	if quote.Expired(c.clock(), c.quoteTTL) {
		return nil, errors.Wrapf(swap.ErrQuoteExpired, "quote %s older than %s", quote.ID, c.quoteTTL)
	}

	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    quote.RouteData,
		UserPublicKey:    identity,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message, _ := extractAPIError(body)
		return nil, errors.Wrapf(swap.ErrSwapBuildFailed, "status %d: %s", resp.StatusCode, message)
	}

	var parsed swapResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, err.Error())
	}
	if parsed.SwapTransaction == "" {
		return nil, errors.Wrap(swap.ErrSwapBuildFailed, "empty transaction payload")
	}

	c.logger.WithFields(logrus.Fields{
		"quoteID":              quote.ID,
		"lastValidBlockHeight": parsed.LastValidBlockHeight,
	}).Debug("Swap transaction built")

	return &swap.SwapTransaction{
		Payload: parsed.SwapTransaction,
		Source:  quote,
	}, nil
}

// extractAPIError pulls the human-readable message and error code out of an
// aggregator error body, falling back to the raw body when it is not JSON.
func extractAPIError(body []byte) (message, code string) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body)), ""
	}

	if m, ok := parsed["error"].(string); ok {
		message = m
	} else if m, ok := parsed["message"].(string); ok {
		message = m
	} else {
		message = strings.TrimSpace(string(body))
	}

	if c, ok := parsed["errorCode"].(string); ok {
		code = c
	}
	return message, code
}

var _ swap.QuoteService = (*JupiterClient)(nil)
var _ swap.SwapBuilder = (*JupiterClient)(nil)

// String describes the client for verbose output.
func (c *JupiterClient) String() string {
	return fmt.Sprintf("jupiter aggregator at %s", c.baseURL)
}
