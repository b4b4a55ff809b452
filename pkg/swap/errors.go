package swap

import "github.com/pkg/errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidIntent       = errors.New("invalid swap intent")
	ErrInvalidIdentity     = errors.New("invalid wallet identity")
	ErrNotConnected        = errors.New("wallet not connected")
	ErrNoRouteFound        = errors.New("no viable route found")
	ErrMalformedQuote      = errors.New("malformed quote response")
	ErrQuoteUnavailable    = errors.New("quote service unavailable")
	ErrQuoteExpired        = errors.New("quote expired")
	ErrNoQuote             = errors.New("no quote held")
	ErrSwapBuildFailed     = errors.New("swap transaction build failed")
	ErrSignerUnavailable   = errors.New("signer unavailable")
	ErrSigningRejected     = errors.New("signing rejected")
	ErrSigningFailed       = errors.New("signing failed")
	ErrOperationInProgress = errors.New("operation already in progress")
)
