package signer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jup-swap/pkg/swap"
)

// Signer is the externally supplied wallet capability. Implementations decide what
// signing means (local keypair, hardware wallet, browser provider); the gateway
// only forwards the opaque payload and classifies the outcome.
type Signer interface {
	// IsAvailable reports whether the signer can currently sign.
	IsAvailable() bool
	// PublicKey returns the signer's address.
	PublicKey() string
	// Sign signs and submits the opaque transaction payload, returning the
	// resulting transaction signature. A deliberate refusal should be returned
	// as an error wrapping swap.ErrSigningRejected.
	Sign(ctx context.Context, payload string) (string, error)
}

// Gateway hands opaque transaction payloads to a Signer. It implements
// swap.SignerGateway.
type Gateway struct {
	signer Signer
	logger *logrus.Logger
}

// NewGateway creates a gateway over the given signer capability.
func NewGateway(s Signer, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.New()
	}
	return &Gateway{signer: s, logger: logger}
}

// SignAndSubmit forwards the transaction payload to the signer. The signer's
// absence is detected before the payload is touched. Rejections pass through
// verbatim as swap.ErrSigningRejected; everything else is swap.ErrSigningFailed.
func (g *Gateway) SignAndSubmit(ctx context.Context, tx *swap.SwapTransaction) (*swap.SubmissionResult, error) {
	if g.signer == nil || !g.signer.IsAvailable() {
		return nil, errors.Wrap(swap.ErrSignerUnavailable, "no signer capability present")
	}

	signature, err := g.signer.Sign(ctx, tx.Payload)
	if err != nil {
		if errors.Is(err, swap.ErrSigningRejected) {
			return nil, err
		}
		return nil, errors.Wrap(swap.ErrSigningFailed, err.Error())
	}

	g.logger.WithField("signature", signature).Debug("Transaction signed and submitted")

	return &swap.SubmissionResult{Signature: signature}, nil
}

var _ swap.SignerGateway = (*Gateway)(nil)
