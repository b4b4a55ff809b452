package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jup-swap/pkg/swap"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	wallet   = "7fUAJdStEuGbc3sM84cKRL6yYaaSstyLSU4ve5oovLS7"
)

func testClient(t *testing.T, srv *httptest.Server) *JupiterClient {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewJupiterClient(Config{BaseURL: srv.URL, Timeout: time.Second, QuoteTTL: 30 * time.Second}, logger)
	c.httpClient = srv.Client()
	return c
}

func solUsdcRequest() swap.QuoteRequest {
	return swap.QuoteRequest{
		Input:       swap.NewAssetRef(solMint, 9),
		Output:      swap.NewAssetRef(usdcMint, 6),
		AmountBase:  2500000000,
		SlippageBps: 50,
		Identity:    wallet,
	}
}

func TestGetQuoteSuccess(t *testing.T) {
	var captured capturedQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = capturedQuery{
			inputMint:   r.URL.Query().Get("inputMint"),
			outputMint:  r.URL.Query().Get("outputMint"),
			amount:      r.URL.Query().Get("amount"),
			slippageBps: r.URL.Query().Get("slippageBps"),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"inputMint":      solMint,
			"inAmount":       "2500000000",
			"outputMint":     usdcMint,
			"outAmount":      "412500000",
			"slippageBps":    50,
			"priceImpactPct": "0.01",
			"routePlan":      []map[string]any{{"percent": 100}},
		})
	}))
	defer srv.Close()

	quote, err := testClient(t, srv).GetQuote(context.Background(), solUsdcRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.amount != "2500000000" || captured.slippageBps != "50" {
		t.Fatalf("unexpected query params: %+v", captured)
	}
	if quote.InAmountBase != 2500000000 || quote.OutAmountBase != 412500000 {
		t.Fatalf("unexpected amounts: in=%d out=%d", quote.InAmountBase, quote.OutAmountBase)
	}
	if quote.ID == "" {
		t.Fatalf("quote missing ID")
	}
	if quote.IssuedAt.IsZero() {
		t.Fatalf("quote missing issue time")
	}
	if len(quote.RouteData) == 0 {
		t.Fatalf("quote missing route data")
	}
}

type capturedQuery struct {
	inputMint, outputMint, amount, slippageBps string
}

func TestGetQuoteNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":     "Could not find any route",
			"errorCode": "COULD_NOT_FIND_ANY_ROUTE",
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv).GetQuote(context.Background(), solUsdcRequest())
	if !errors.Is(err, swap.ErrNoRouteFound) {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestGetQuoteEmptyRoutePlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"inAmount":  "2500000000",
			"outAmount": "412500000",
			"routePlan": []any{},
		})
	}))
	defer srv.Close()

	_, err := testClient(t, srv).GetQuote(context.Background(), solUsdcRequest())
	if !errors.Is(err, swap.ErrNoRouteFound) {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestGetQuoteMalformed(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing outAmount", map[string]any{"inAmount": "2500000000", "routePlan": []any{map[string]any{}}}},
		{"non numeric inAmount", map[string]any{"inAmount": "abc", "outAmount": "1", "routePlan": []any{map[string]any{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			_, err := testClient(t, srv).GetQuote(context.Background(), solUsdcRequest())
			if !errors.Is(err, swap.ErrMalformedQuote) {
				t.Fatalf("expected ErrMalformedQuote, got %v", err)
			}
		})
	}
}

func TestGetQuoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).GetQuote(context.Background(), solUsdcRequest())
	if !errors.Is(err, swap.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
}

func TestGetQuoteNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewJupiterClient(Config{BaseURL: srv.URL, Timeout: time.Second}, logger)

	_, err := c.GetQuote(context.Background(), solUsdcRequest())
	if !errors.Is(err, swap.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
}

func freshQuote(route string) *swap.Quote {
	return &swap.Quote{
		ID:            "quote-1",
		Input:         swap.NewAssetRef(solMint, 9),
		Output:        swap.NewAssetRef(usdcMint, 6),
		InAmountBase:  2500000000,
		OutAmountBase: 412500000,
		SlippageBps:   50,
		RouteData:     json.RawMessage(route),
		IssuedAt:      time.Now(),
	}
}

func TestBuildSwapSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"swapTransaction":      "c2lnbmFibGU=",
			"lastValidBlockHeight": 123456,
		})
	}))
	defer srv.Close()

	quote := freshQuote(`{"inAmount":"2500000000","outAmount":"412500000"}`)
	tx, err := testClient(t, srv).BuildSwap(context.Background(), quote, wallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.Payload != "c2lnbmFibGU=" {
		t.Fatalf("payload = %q", tx.Payload)
	}
	if tx.Source != quote {
		t.Fatalf("transaction does not reference the source quote")
	}
	if captured["userPublicKey"] != wallet {
		t.Fatalf("userPublicKey = %v", captured["userPublicKey"])
	}
	if _, ok := captured["quoteResponse"].(map[string]any); !ok {
		t.Fatalf("quoteResponse not forwarded: %v", captured["quoteResponse"])
	}
}

func TestBuildSwapExpiredQuoteFailsFast(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	quote := freshQuote(`{}`)
	quote.IssuedAt = time.Now().Add(-time.Minute)

	_, err := testClient(t, srv).BuildSwap(context.Background(), quote, wallet)
	if !errors.Is(err, swap.ErrQuoteExpired) {
		t.Fatalf("expected ErrQuoteExpired, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("aggregator called %d times for an expired quote, want 0", calls)
	}
}

func TestBuildSwapUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "route no longer valid"})
	}))
	defer srv.Close()

	_, err := testClient(t, srv).BuildSwap(context.Background(), freshQuote(`{}`), wallet)
	if !errors.Is(err, swap.ErrSwapBuildFailed) {
		t.Fatalf("expected ErrSwapBuildFailed, got %v", err)
	}
	// The upstream message must survive verbatim for observability.
	if !strings.Contains(err.Error(), "route no longer valid") {
		t.Fatalf("upstream message lost: %v", err)
	}
}

func TestBuildSwapEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"swapTransaction": ""})
	}))
	defer srv.Close()

	_, err := testClient(t, srv).BuildSwap(context.Background(), freshQuote(`{}`), wallet)
	if !errors.Is(err, swap.ErrSwapBuildFailed) {
		t.Fatalf("expected ErrSwapBuildFailed, got %v", err)
	}
}
