package signer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

// KeypairSigner signs swap transactions with a local Solana keypair and submits
// them through an RPC node.
type KeypairSigner struct {
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
	commitment rpc.CommitmentType
	preflight  bool
	logger     *logrus.Logger
}

// KeypairConfig holds the settings for a local keypair signer.
type KeypairConfig struct {
	RPCUrl        string
	PrivateKey    string // Base58 encoded
	Commitment    string // finalized, confirmed or processed
	SkipPreflight bool
}

// NewKeypairSigner creates a signer from a Base58-encoded private key.
func NewKeypairSigner(cfg KeypairConfig, logger *logrus.Logger) (*KeypairSigner, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured")
	}
	if logger == nil {
		logger = logrus.New()
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &KeypairSigner{
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		commitment: parseCommitment(cfg.Commitment),
		preflight:  !cfg.SkipPreflight,
		logger:     logger,
	}, nil
}

// IsAvailable reports whether the signer holds a usable key.
func (s *KeypairSigner) IsAvailable() bool {
	return len(s.privateKey) > 0
}

// PublicKey returns the signer's wallet address.
func (s *KeypairSigner) PublicKey() string {
	return s.publicKey.String()
}

// Sign decodes the opaque base64 transaction, signs it with the local keypair and
// submits it to the RPC node. The payload's instructions are never inspected.
func (s *KeypairSigner) Sign(ctx context.Context, payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid transaction payload: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	opts := rpc.TransactionOpts{
		SkipPreflight:       !s.preflight,
		PreflightCommitment: s.commitment,
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

// TransactionInfo retrieves slot, fee and error status for a submitted signature
// from an RPC node. This is a convenience for display commands; the orchestrator
// itself never polls for confirmation.
func TransactionInfo(ctx context.Context, rpcURL, txSignature string) (map[string]interface{}, error) {
	sig, err := solana.SignatureFromBase58(txSignature)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	txInfo, err := rpc.New(rpcURL).GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding: solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	info := map[string]interface{}{
		"signature": txSignature,
		"slot":      txInfo.Slot,
	}

	if txInfo.Meta != nil {
		info["fee"] = txInfo.Meta.Fee
		info["err"] = txInfo.Meta.Err

		if txInfo.BlockTime != nil {
			info["block_time"] = *txInfo.BlockTime
		}
	}

	return info, nil
}

func parseCommitment(commitment string) rpc.CommitmentType {
	switch strings.ToLower(commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

var _ Signer = (*KeypairSigner)(nil)
