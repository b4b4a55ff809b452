package swap

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// DefaultDecimals is assumed when a token's precision is unknown. Assets built this
// way carry DecimalsAssumed=true so callers can surface a warning before trading.
const DefaultDecimals uint8 = 6

// Solana addresses are base58-encoded 32-byte keys, which is 32 to 44 characters.
// The core only checks plausible length; real validation is the signer's job.
const (
	minAddressLen = 32
	maxAddressLen = 44
)

// AssetRef identifies a fungible token by its mint address and decimal precision.
type AssetRef struct {
	Mint            string `json:"mint"`
	Decimals        uint8  `json:"decimals"`
	DecimalsAssumed bool   `json:"decimals_assumed,omitempty"`
}

// NewAssetRef creates an asset reference with a known decimal precision.
func NewAssetRef(mint string, decimals uint8) AssetRef {
	return AssetRef{Mint: mint, Decimals: decimals}
}

// NewAssetRefAssumed creates an asset reference for a token whose precision is
// unknown, falling back to DefaultDecimals and flagging the assumption.
func NewAssetRefAssumed(mint string) AssetRef {
	return AssetRef{Mint: mint, Decimals: DefaultDecimals, DecimalsAssumed: true}
}

// SwapIntent is the user's normalized request: swap HumanAmount of Input for Output
// tolerating at most SlippageBps of adverse price movement.
type SwapIntent struct {
	Input       AssetRef `json:"input"`
	Output      AssetRef `json:"output"`
	HumanAmount string   `json:"human_amount"`
	SlippageBps int      `json:"slippage_bps"`
}

// Validate checks the intent's structural invariants. Amount syntax is validated
// separately by ToBaseUnits when the intent is normalized.
func (si *SwapIntent) Validate() error {
	if si.Input.Mint == "" {
		return errors.Wrap(ErrInvalidIntent, "input asset is required")
	}
	if si.Output.Mint == "" {
		return errors.Wrap(ErrInvalidIntent, "output asset is required")
	}
	if si.Input.Mint == si.Output.Mint {
		return errors.Wrap(ErrInvalidIntent, "input and output assets must differ")
	}
	if si.SlippageBps < 0 || si.SlippageBps > 10000 {
		return errors.Wrapf(ErrInvalidIntent, "slippage %d bps outside [0,10000]", si.SlippageBps)
	}
	if si.HumanAmount == "" || si.HumanAmount == "0" {
		return errors.Wrap(ErrInvalidIntent, "amount must be greater than 0")
	}
	return nil
}

// Quote is a priced route returned by the aggregator. It is immutable once issued,
// references the exact asset pair and amount that produced it, and is only good for
// a single transaction build within its TTL.
type Quote struct {
	ID             string          `json:"id"`
	Input          AssetRef        `json:"input"`
	Output         AssetRef        `json:"output"`
	InAmountBase   uint64          `json:"in_amount_base"`
	OutAmountBase  uint64          `json:"out_amount_base"`
	SlippageBps    int             `json:"slippage_bps"`
	PriceImpactPct string          `json:"price_impact_pct"`
	RouteData      json.RawMessage `json:"route_data"`
	IssuedAt       time.Time       `json:"issued_at"`
}

// Age returns how long ago the quote was issued.
func (q *Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.IssuedAt)
}

// Expired reports whether the quote is older than the given TTL.
func (q *Quote) Expired(now time.Time, ttl time.Duration) bool {
	return q.Age(now) > ttl
}

// SwapTransaction is the unsigned transaction built from a quote. The payload is an
// opaque base64 blob passed through to the signer without inspection. Source points
// at the exact Quote the transaction was built from; the orchestrator compares it by
// identity before submission.
type SwapTransaction struct {
	Payload string `json:"payload"`
	Source  *Quote `json:"-"`
}

// SubmissionResult is returned after the signer accepts and submits a transaction.
type SubmissionResult struct {
	Signature string `json:"signature"`
}

// ValidateIdentity checks that a wallet address is a plausible Solana address.
func ValidateIdentity(identity string) error {
	if len(identity) < minAddressLen || len(identity) > maxAddressLen {
		return errors.Wrapf(ErrInvalidIdentity, "implausible wallet address %q", identity)
	}
	return nil
}
