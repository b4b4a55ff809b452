package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultQuoteTTL bounds how long a quote may be held before it is considered stale.
// Routes reflect live market prices, so the window is deliberately short.
const DefaultQuoteTTL = 30 * time.Second

// State identifies where a session is in the swap lifecycle.
type State string

const (
	StateDisconnected State = "disconnected" // no wallet identity
	StateConnected    State = "connected"    // identity set, no intent
	StateIntentSet    State = "intent_set"   // intent set, no quote held
	StateQuoted       State = "quoted"       // fresh quote held, ready to execute
	StateSubmitted    State = "submitted"    // last swap submitted successfully
)

// QuoteRequest carries the normalized parameters for a quote call. The amount is
// already in integer base units; the quote service never sees human decimals.
type QuoteRequest struct {
	Input       AssetRef
	Output      AssetRef
	AmountBase  uint64
	SlippageBps int
	Identity    string
}

// QuoteService requests a priced route from the aggregator.
type QuoteService interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// SwapBuilder turns a previously obtained quote into an unsigned transaction.
type SwapBuilder interface {
	BuildSwap(ctx context.Context, quote *Quote, identity string) (*SwapTransaction, error)
}

// SignerGateway hands an opaque transaction payload to the wallet for signing and
// submission.
type SignerGateway interface {
	SignAndSubmit(ctx context.Context, tx *SwapTransaction) (*SubmissionResult, error)
}

// Session is the swap orchestrator: it owns the connected identity, the current
// intent, and the current quote, and enforces that quote, build, and sign calls
// happen in order with consistent data.
//
// A session serves a single logical user interaction context. Operations are
// serialized: a second RequestQuote or ExecuteSwap while one is in flight is
// rejected with ErrOperationInProgress rather than queued.
type Session struct {
	quotes   QuoteService
	builder  SwapBuilder
	signer   SignerGateway
	logger   *logrus.Logger
	sink     EventSink
	quoteTTL time.Duration
	clock    func() time.Time

	mu       sync.Mutex
	busy     bool
	state    State
	identity string
	intent   *SwapIntent
	quote    *Quote
	tx       *SwapTransaction
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithQuoteTTL overrides the default quote freshness window.
func WithQuoteTTL(ttl time.Duration) SessionOption {
	return func(s *Session) {
		if ttl > 0 {
			s.quoteTTL = ttl
		}
	}
}

// WithEventSink registers a sink that receives every operation event in addition to
// the structured log line.
func WithEventSink(sink EventSink) SessionOption {
	return func(s *Session) { s.sink = sink }
}

// WithClock overrides the session's time source.
func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSession creates a session in the Disconnected state.
func NewSession(quotes QuoteService, builder SwapBuilder, signer SignerGateway, logger *logrus.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Session{
		quotes:   quotes,
		builder:  builder,
		signer:   signer,
		logger:   logger,
		quoteTTL: DefaultQuoteTTL,
		clock:    time.Now,
		state:    StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the connected wallet address, or "" when disconnected.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// CurrentIntent returns the intent the session holds, or nil.
func (s *Session) CurrentIntent() *SwapIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent
}

// CurrentQuote returns the quote the session holds, or nil.
func (s *Session) CurrentQuote() *Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote
}

// Connect stores the wallet identity and moves the session out of Disconnected.
// Connecting again with the same identity is a no-op. Connecting with a different
// identity drops any held quote and transaction: transactions embed the signer, so
// artifacts from the previous identity cannot be trusted.
func (s *Session) Connect(identity string) error {
	if err := ValidateIdentity(identity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == identity {
		s.emit(SeverityInfo, "connect", fmt.Sprintf("already connected as %s", shortAddr(identity)))
		return nil
	}

	switched := s.identity != ""
	s.identity = identity
	s.quote = nil
	s.tx = nil
	if s.intent != nil {
		s.state = StateIntentSet
	} else {
		s.state = StateConnected
	}

	if switched {
		s.emit(SeverityWarn, "connect", fmt.Sprintf("identity changed to %s, held quote discarded", shortAddr(identity)))
	} else {
		s.emit(SeverityInfo, "connect", fmt.Sprintf("connected as %s", shortAddr(identity)))
	}
	return nil
}

// SetIntent validates and stores a new swap intent, discarding any held quote.
func (s *Session) SetIntent(intent SwapIntent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	// Surface amount syntax problems before any network call.
	base, err := ToBaseUnits(intent.HumanAmount, intent.Input.Decimals)
	if err != nil {
		return err
	}
	if base == 0 {
		return errors.Wrapf(ErrInvalidAmount, "amount %q is below one base unit", intent.HumanAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return errors.Wrap(ErrOperationInProgress, "set intent")
	}
	if s.state == StateDisconnected {
		return errors.Wrap(ErrNotConnected, "set intent")
	}

	if intent.Input.DecimalsAssumed {
		s.emit(SeverityWarn, "intent", fmt.Sprintf("precision of %s unknown, assuming %d decimals", shortAddr(intent.Input.Mint), DefaultDecimals))
	}

	s.intent = &intent
	s.quote = nil
	s.tx = nil
	s.state = StateIntentSet

	s.emit(SeverityInfo, "intent", fmt.Sprintf("intent set: %s %s -> %s (%d bps slippage)",
		intent.HumanAmount, shortAddr(intent.Input.Mint), shortAddr(intent.Output.Mint), intent.SlippageBps))
	return nil
}

// RequestQuote asks the aggregator to price the current intent. On success the
// returned quote supersedes any previously held one. On failure the session keeps
// its previous state and quote.
func (s *Session) RequestQuote(ctx context.Context) (*Quote, error) {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrOperationInProgress, "request quote")
	}
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrNotConnected, "request quote")
	}
	if s.intent == nil {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrInvalidIntent, "no intent set")
	}

	intent := *s.intent
	identity := s.identity
	s.busy = true
	s.mu.Unlock()

	quote, err := s.doRequestQuote(ctx, intent, identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.emit(SeverityError, "quote", fmt.Sprintf("quote failed: %v", err))
		return nil, err
	}

	s.quote = quote
	s.tx = nil
	s.state = StateQuoted

	s.emit(SeverityInfo, "quote", fmt.Sprintf("quote %s: %s -> %s (impact %s%%)",
		quote.ID,
		FromBaseUnits(quote.InAmountBase, quote.Input.Decimals),
		FromBaseUnits(quote.OutAmountBase, quote.Output.Decimals),
		quote.PriceImpactPct))
	return quote, nil
}

func (s *Session) doRequestQuote(ctx context.Context, intent SwapIntent, identity string) (*Quote, error) {
	amountBase, err := ToBaseUnits(intent.HumanAmount, intent.Input.Decimals)
	if err != nil {
		return nil, err
	}

	return s.quotes.GetQuote(ctx, QuoteRequest{
		Input:       intent.Input,
		Output:      intent.Output,
		AmountBase:  amountBase,
		SlippageBps: intent.SlippageBps,
		Identity:    identity,
	})
}

// ExecuteSwap builds a transaction from the held quote and hands it to the signer.
// The quote is single-use: success consumes it and the session returns to
// IntentSet for a fresh swap. A failed build or signing leaves the quote held and
// the session in Quoted so the caller may retry or re-quote — unless the quote
// itself had expired, in which case it is discarded and an explicit re-quote is
// required.
func (s *Session) ExecuteSwap(ctx context.Context) (*SubmissionResult, error) {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrOperationInProgress, "execute swap")
	}
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrNotConnected, "execute swap")
	}
	if s.quote == nil {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrNoQuote, "execute swap")
	}

	if s.quote.Expired(s.clock(), s.quoteTTL) {
		age := s.quote.Age(s.clock()).Round(time.Second)
		s.quote = nil
		s.tx = nil
		s.state = StateIntentSet
		s.emit(SeverityWarn, "execute", fmt.Sprintf("quote expired after %s, re-quote required", age))
		s.mu.Unlock()
		return nil, errors.Wrapf(ErrQuoteExpired, "quote older than %s", s.quoteTTL)
	}

	quote := s.quote
	identity := s.identity
	s.busy = true
	s.mu.Unlock()

	result, err := s.doExecuteSwap(ctx, quote, identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.tx = nil

	if err != nil {
		if errors.Is(err, ErrQuoteExpired) {
			// The aggregator judged the route stale; holding on to it would only
			// invite a retry against dead pricing.
			s.quote = nil
			s.state = StateIntentSet
		}
		s.emit(SeverityError, "execute", fmt.Sprintf("swap failed: %v", err))
		return nil, err
	}

	s.quote = nil
	s.state = StateSubmitted
	s.emit(SeverityInfo, "execute", fmt.Sprintf("swap submitted: %s", result.Signature))
	return result, nil
}

func (s *Session) doExecuteSwap(ctx context.Context, quote *Quote, identity string) (*SubmissionResult, error) {
	tx, err := s.builder.BuildSwap(ctx, quote, identity)
	if err != nil {
		return nil, err
	}

	// The transaction must reference the exact quote we hold, by identity.
	if tx.Source != quote {
		return nil, errors.Wrap(ErrSwapBuildFailed, "transaction references a different quote")
	}

	s.mu.Lock()
	s.tx = tx
	s.mu.Unlock()

	return s.signer.SignAndSubmit(ctx, tx)
}

// shortAddr abbreviates an address for log lines: first and last four characters.
func shortAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
