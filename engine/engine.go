// Package engine implements the flash-loan arbitrage state machine: loan
// initiation, callback authentication, multi-hop execution with per-hop
// slippage and price-impact guards, profitability enforcement and settlement.
//
// The engine never persists partial work. A unit of work either runs to full
// settlement or returns an error; callers execute Initiate inside the host
// environment's transaction wrapper so that an error also rolls back every
// ledger and pool mutation made along the way.
package engine

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/flasharb-go/access"
	"github.com/defistate/flasharb-go/gateway"
	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
	"github.com/defistate/flasharb-go/protocols/uniswapv2/calculator"
	"github.com/defistate/flasharb-go/risk"
	"github.com/defistate/flasharb-go/routes"
	"github.com/defistate/flasharb-go/streams/events"
)

const (
	defaultPriceImpactCeilingBps = 1000
	defaultDeadlineBuffer        = 300 * time.Second
	defaultMaxCallDepth          = 3

	// maxProtocolFeeBps is the hard cap on the protocol's cut of gross profit.
	maxProtocolFeeBps = 1000
)

// Route describes how one borrow asset is worked: which pair grants the loan
// and the cyclic path the borrowed funds are traded through.
type Route struct {
	// LoanCounterAsset is the other token of the lending pair. The lending
	// pair must not appear as a hop pool, otherwise the optimistic loan
	// transfer corrupts the hop's deposit measurement.
	LoanCounterAsset common.Address

	// Path is the cyclic trade route, starting and ending on the borrow asset.
	Path []common.Address
}

// Config holds construction parameters for the Engine.
type Config struct {
	// Self is the engine's own account identity. Loans are granted to it,
	// trades settle through it, and callbacks must report it as the sender.
	Self common.Address

	Owner        common.Address
	FeeRecipient common.Address

	// ProtocolFeeBps is the protocol's share of gross profit, at most 1000.
	ProtocolFeeBps uint16

	MinLoanAmount *big.Int
	MaxLoanAmount *big.Int

	// PriceImpactCeilingBps rejects hops that would move a pool by more than
	// this many basis points. Defaults to 1000.
	PriceImpactCeilingBps uint16

	// AnomalyBps is the quoted-vs-realized deviation beyond which a hop is
	// reported as a price anomaly. Zero disables reporting.
	AnomalyBps uint16

	// DeadlineBuffer is added to the clock at initiation to form the trade
	// deadline. Defaults to 300 seconds.
	DeadlineBuffer time.Duration

	// MaxCallDepth caps how many initiations one initiator may have in
	// flight at once. The counter is taken before the single-loan state
	// gate, so it bounds an initiator fanning out concurrent attempts
	// that queue ahead of the gate. Defaults to 3.
	MaxCallDepth int

	// FeeSchedule mirrors the lending pair's flash-swap fee. Zero value
	// defaults to the canonical 3/997 schedule.
	FeeSchedule calculator.FeeSchedule

	Routes map[common.Address]Route
	Graph  *routes.Graph

	Factory gateway.Factory
	Router  gateway.Router
	Ledger  gateway.Ledger
	Deriver uniswapv2.AddressDeriver

	Risk    *risk.Controller
	Logger  Logger
	Emitter events.Emitter

	// Clock drives deadlines. Defaults to time.Now.
	Clock func() time.Time

	// PrometheusReg receives the engine's metrics. Nil leaves them unregistered.
	PrometheusReg prometheus.Registerer
}

func (c *Config) validate() error {
	if c.Self == (common.Address{}) {
		return fmt.Errorf("engine: self address must be set")
	}
	if c.Owner == (common.Address{}) {
		return access.ErrZeroAddress
	}
	if c.FeeRecipient == (common.Address{}) {
		return ErrInvalidFeeRecipient
	}
	if c.ProtocolFeeBps > maxProtocolFeeBps {
		return fmt.Errorf("%w: %d bps above %d", ErrInvalidProtocolFee, c.ProtocolFeeBps, maxProtocolFeeBps)
	}
	if c.MinLoanAmount == nil || c.MinLoanAmount.Sign() <= 0 {
		return fmt.Errorf("%w: min loan amount must be positive", ErrInvalidAmount)
	}
	if c.MaxLoanAmount == nil || c.MaxLoanAmount.Cmp(c.MinLoanAmount) < 0 {
		return fmt.Errorf("%w: max loan amount must be at least the minimum", ErrInvalidAmount)
	}
	if c.Factory == nil || c.Router == nil || c.Ledger == nil {
		return fmt.Errorf("engine: factory, router and ledger must be set")
	}
	if c.Risk == nil {
		return fmt.Errorf("engine: risk controller must be set")
	}
	if c.Graph == nil {
		return fmt.Errorf("engine: route graph must be set")
	}
	if len(c.Routes) == 0 {
		return fmt.Errorf("%w: no routes configured", ErrInvalidAsset)
	}
	for asset, route := range c.Routes {
		if err := c.validateRoute(asset, route); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRoute(asset common.Address, route Route) error {
	if len(route.Path) == 0 || route.Path[0] != asset {
		return fmt.Errorf("%w: route for %s must start on the asset", ErrInvalidAsset, asset)
	}
	if err := c.Graph.ValidateCycle(route.Path); err != nil {
		return fmt.Errorf("%w: route for %s: %v", ErrInvalidAsset, asset, err)
	}
	if route.LoanCounterAsset == (common.Address{}) || route.LoanCounterAsset == asset {
		return fmt.Errorf("%w: route for %s needs a distinct loan counter asset", ErrInvalidAsset, asset)
	}
	if _, ok := c.Factory.GetPair(asset, route.LoanCounterAsset); !ok {
		return fmt.Errorf("%w: lending pair %s/%s", ErrPairNotFound, asset, route.LoanCounterAsset)
	}

	// The lending pair's reserves are stale while the loan is outstanding,
	// so it must not double as a hop pool.
	loan0, loan1 := uniswapv2.SortTokens(asset, route.LoanCounterAsset)
	for i := 0; i < len(route.Path)-1; i++ {
		hop0, hop1 := uniswapv2.SortTokens(route.Path[i], route.Path[i+1])
		if hop0 == loan0 && hop1 == loan1 {
			return fmt.Errorf("%w: route for %s trades through its own lending pair", ErrInvalidAsset, asset)
		}
	}
	return nil
}

// Engine is the arbitrage orchestrator. Exactly one loan can be in flight at
// a time; the state gate rejects nested initiations and unsolicited callbacks.
type Engine struct {
	cfg     Config
	auth    *access.Authority
	risk    *risk.Controller
	log     Logger
	emitter events.Emitter
	clock   func() time.Time
	metrics *metricSet

	mu      sync.Mutex
	state   State
	depth   map[common.Address]int
	pending *Settlement
}

// New validates the config (including every configured route) and builds an
// Engine. Defaults are applied for the price-impact ceiling, deadline buffer,
// call-depth cap and fee schedule.
func New(cfg Config) (*Engine, error) {
	if cfg.PriceImpactCeilingBps == 0 {
		cfg.PriceImpactCeilingBps = defaultPriceImpactCeilingBps
	}
	if cfg.DeadlineBuffer <= 0 {
		cfg.DeadlineBuffer = defaultDeadlineBuffer
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = defaultMaxCallDepth
	}
	if cfg.FeeSchedule.Numerator == nil && cfg.FeeSchedule.Denominator == nil {
		cfg.FeeSchedule = calculator.DefaultFeeSchedule()
	}
	if err := cfg.FeeSchedule.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Emitter == nil {
		cfg.Emitter = nopEmitter{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	auth, err := access.NewAuthority(cfg.Owner)
	if err != nil {
		return nil, err
	}

	cfg.MinLoanAmount = new(big.Int).Set(cfg.MinLoanAmount)
	cfg.MaxLoanAmount = new(big.Int).Set(cfg.MaxLoanAmount)

	return &Engine{
		cfg:     cfg,
		auth:    auth,
		risk:    cfg.Risk,
		log:     cfg.Logger,
		emitter: cfg.Emitter,
		clock:   cfg.Clock,
		metrics: newMetricSet(cfg.PrometheusReg),
		state:   StateIdle,
		depth:   make(map[common.Address]int),
	}, nil
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Initiate runs one full arbitrage: it validates the request, passes the risk
// controls, asks the lending pair for the loan and, via the synchronous
// flash-swap callback, executes the trade route and settles. On success the
// settled volume is committed to the daily window and the settlement is
// returned; on any failure nothing is committed and the error names the cause.
func (e *Engine) Initiate(req LoanRequest) (*Settlement, error) {
	route, err := e.validateRequest(req)
	if err != nil {
		e.failLoan(req, err)
		return nil, err
	}

	if err := e.risk.CheckLoan(req.Asset, req.Amount); err != nil {
		e.failLoan(req, err)
		return nil, err
	}

	if err := e.enterInitiator(req.Initiator); err != nil {
		e.failLoan(req, err)
		return nil, err
	}
	defer e.exitInitiator(req.Initiator)

	if err := e.transition(StateIdle, StateLoanRequested); err != nil {
		err = fmt.Errorf("%w: %v", ErrReentrantCall, err)
		e.failLoan(req, err)
		return nil, err
	}
	defer e.reset()

	lendingPair, ok := e.cfg.Factory.GetPair(req.Asset, route.LoanCounterAsset)
	if !ok {
		err := fmt.Errorf("%w: lending pair %s/%s", ErrPairNotFound, req.Asset, route.LoanCounterAsset)
		e.failLoan(req, err)
		return nil, err
	}

	deadline := e.clock().Add(e.cfg.DeadlineBuffer)
	data, err := callbackContext{
		Asset:       req.Asset,
		Amount:      req.Amount,
		Initiator:   req.Initiator,
		SlippageBps: req.SlippageToleranceBps,
		Deadline:    deadline.Unix(),
	}.encode()
	if err != nil {
		e.failLoan(req, err)
		return nil, err
	}

	// Token ordering decides which output slot carries the loan.
	amount0Out, amount1Out := new(big.Int), new(big.Int)
	if req.Asset == lendingPair.Token0() {
		amount0Out.Set(req.Amount)
	} else {
		amount1Out.Set(req.Amount)
	}

	e.metrics.initiated.Inc()
	e.emitter.Emit(events.Event{
		Kind:      events.LoanStarted,
		Timestamp: e.clock(),
		Asset:     req.Asset,
		Initiator: req.Initiator,
		Amount:    new(big.Int).Set(req.Amount),
	})
	e.log.Info("loan initiated",
		"asset", req.Asset,
		"amount", req.Amount.String(),
		"pair", lendingPair.Address(),
		"slippageBps", req.SlippageToleranceBps,
	)

	// The callback runs synchronously inside this call and leaves the
	// settlement behind on success.
	if err := lendingPair.Swap(amount0Out, amount1Out, e.cfg.Self, data); err != nil {
		e.failLoan(req, err)
		return nil, err
	}

	e.mu.Lock()
	settlement := e.pending
	e.pending = nil
	e.mu.Unlock()
	if settlement == nil {
		err := fmt.Errorf("%w: swap returned without settling", ErrUnauthorizedCallback)
		e.failLoan(req, err)
		return nil, err
	}

	e.risk.CommitVolume(req.Amount)
	used, _ := e.risk.DailyVolume()
	e.metrics.completed.Inc()
	e.metrics.dailyVolume.Set(bigFloat(used))
	e.metrics.profit.Add(bigFloat(settlement.NetProfit))

	e.emitter.Emit(events.Event{
		Kind:      events.LoanCompleted,
		Timestamp: e.clock(),
		Asset:     req.Asset,
		Initiator: req.Initiator,
		Amount:    new(big.Int).Set(req.Amount),
		Fee:       new(big.Int).Set(settlement.Fee),
		Profit:    new(big.Int).Set(settlement.NetProfit),
	})
	e.log.Info("loan completed",
		"asset", req.Asset,
		"amount", req.Amount.String(),
		"fee", settlement.Fee.String(),
		"netProfit", settlement.NetProfit.String(),
	)
	return settlement, nil
}

// validateRequest checks request shape: a configured route, principal within
// the global bounds and a representable slippage tolerance.
func (e *Engine) validateRequest(req LoanRequest) (Route, error) {
	route, ok := e.cfg.Routes[req.Asset]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrInvalidAsset, req.Asset)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return Route{}, fmt.Errorf("%w: principal must be positive", ErrInvalidAmount)
	}
	if req.Amount.Cmp(e.cfg.MinLoanAmount) < 0 {
		return Route{}, fmt.Errorf("%w: %s below minimum %s", ErrInvalidAmount, req.Amount, e.cfg.MinLoanAmount)
	}
	if req.Amount.Cmp(e.cfg.MaxLoanAmount) > 0 {
		return Route{}, fmt.Errorf("%w: %s above maximum %s", ErrInvalidAmount, req.Amount, e.cfg.MaxLoanAmount)
	}
	if req.SlippageToleranceBps > 10_000 {
		return Route{}, fmt.Errorf("%w: %d bps", ErrSlippageTooHigh, req.SlippageToleranceBps)
	}
	return route, nil
}

// OnFlashSwapCallback is the resume point of the state machine. The pair that
// granted the loan re-enters here; everything it reports is untrusted until
// the caller address is re-derived from the tokens it claims to own and the
// reported sender matches the engine's own identity.
func (e *Engine) OnFlashSwapCallback(caller, sender common.Address, amount0, amount1 *big.Int, data []byte) error {
	if err := e.gateCallback(); err != nil {
		return err
	}

	p, err := e.authenticateCaller(caller, sender)
	if err != nil {
		e.log.Warn("callback rejected", "caller", caller, "sender", sender, "err", err)
		return err
	}

	ctx, err := decodeCallbackContext(data)
	if err != nil {
		return fmt.Errorf("%w: malformed callback data: %v", ErrUnauthorizedCallback, err)
	}
	if e.clock().After(ctx.deadline()) {
		return fmt.Errorf("%w: deadline %s", ErrDeadlineExpired, ctx.deadline())
	}

	borrowed := amount1
	if ctx.Asset == p.Token0() {
		borrowed = amount0
	}
	if borrowed == nil || borrowed.Cmp(ctx.Amount) != 0 {
		e.log.Warn("loan slot mismatch", "expected", ctx.Amount.String(), "got", borrowed)
	}

	fee, err := e.cfg.FeeSchedule.FlashFee(ctx.Amount)
	if err != nil {
		return err
	}
	repay, err := e.cfg.FeeSchedule.RepayAmount(ctx.Amount)
	if err != nil {
		return err
	}

	route := e.cfg.Routes[ctx.Asset]
	finalOutput, err := e.executeRoute(ctx, route)
	if err != nil {
		return err
	}

	if err := e.transition(StateTradesExecuting, StateProfitabilityChecked); err != nil {
		return fmt.Errorf("%w: %v", ErrReentrantCall, err)
	}
	if !calculator.IsProfitable(finalOutput, repay) {
		return fmt.Errorf("%w: output %s does not cover repay %s", ErrNotProfitable, finalOutput, repay)
	}

	settlement, err := e.settle(ctx, caller, route, fee, repay, finalOutput)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.pending = settlement
	e.state = StateSettlementComplete
	e.mu.Unlock()
	return nil
}

// gateCallback admits the callback only while a loan is in flight.
func (e *Engine) gateCallback() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateLoanRequested:
		e.state = StateTradesExecuting
		return nil
	case StateIdle:
		return fmt.Errorf("%w: no loan in flight", ErrUnauthorizedCallback)
	default:
		return fmt.Errorf("%w: callback while %s", ErrReentrantCall, e.state)
	}
}

// authenticateCaller re-derives the pair address from the tokens the caller
// reports owning and checks the reported sender is the engine itself.
func (e *Engine) authenticateCaller(caller, sender common.Address) (gateway.Pair, error) {
	p, ok := e.cfg.Factory.PairAt(caller)
	if !ok {
		return nil, fmt.Errorf("%w: caller %s is not a known pair", ErrUnauthorizedCallback, caller)
	}
	expected := e.cfg.Deriver.PairFor(p.Token0(), p.Token1())
	if caller != expected {
		return nil, fmt.Errorf("%w: caller %s does not match derived pair %s", ErrUnauthorizedCallback, caller, expected)
	}
	if sender != e.cfg.Self {
		return nil, fmt.Errorf("%w: reported sender %s is not this contract", ErrUnauthorizedCallback, sender)
	}
	return p, nil
}

// executeRoute trades the borrowed funds through the cyclic path, requoting
// every hop from the actual amount received and measuring delivery through
// balance deltas. Returns the measured final output in the borrow asset.
func (e *Engine) executeRoute(ctx callbackContext, route Route) (*big.Int, error) {
	// First hop spends whatever the loan actually delivered; fee-on-transfer
	// assets hand over less than the nominal principal.
	amountIn := e.cfg.Ledger.BalanceOf(ctx.Asset, e.cfg.Self)
	if amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: loan delivered nothing", ErrInsufficientLiquidity)
	}

	deadline := ctx.deadline()
	for i := 0; i < len(route.Path)-1; i++ {
		tokenIn, tokenOut := route.Path[i], route.Path[i+1]

		hopPair, ok := e.cfg.Factory.GetPair(tokenIn, tokenOut)
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrPairNotFound, tokenIn, tokenOut)
		}

		// Reserves are re-read here, immediately before the guard; any
		// earlier read is stale once an external call has run.
		pool := poolSnapshot(hopPair)
		if err := calculator.CheckPriceImpact(amountIn, tokenIn, pool, e.cfg.PriceImpactCeilingBps); err != nil {
			return nil, err
		}

		path := []common.Address{tokenIn, tokenOut}
		quoted, err := e.cfg.Router.GetAmountsOut(amountIn, path)
		if err != nil {
			return nil, err
		}
		expectedOut := quoted[len(quoted)-1]

		minOut, err := calculator.MinAmountOut(expectedOut, ctx.SlippageBps)
		if err != nil {
			return nil, err
		}

		balanceBefore := e.cfg.Ledger.BalanceOf(tokenOut, e.cfg.Self)
		if _, err := e.cfg.Router.SwapExactTokensForTokens(e.cfg.Self, amountIn, minOut, path, e.cfg.Self, deadline); err != nil {
			return nil, err
		}
		received := new(big.Int).Sub(e.cfg.Ledger.BalanceOf(tokenOut, e.cfg.Self), balanceBefore)

		e.reportDeviation(tokenIn, tokenOut, expectedOut, received)

		e.log.Debug("hop executed",
			"tokenIn", tokenIn,
			"tokenOut", tokenOut,
			"amountIn", amountIn.String(),
			"received", received.String(),
		)
		amountIn = received
	}
	return amountIn, nil
}

// reportDeviation compares the quoted and realized output of a hop. A
// deviation at or beyond the configured threshold is reported and escalated
// to the risk controller; it does not abort the hop by itself.
func (e *Engine) reportDeviation(tokenIn, tokenOut common.Address, expected, received *big.Int) {
	if e.cfg.AnomalyBps == 0 || expected.Sign() <= 0 || received.Cmp(expected) >= 0 {
		return
	}
	shortfall := new(big.Int).Sub(expected, received)
	shortfall.Mul(shortfall, big.NewInt(10_000))
	shortfall.Div(shortfall, expected)
	if !shortfall.IsUint64() || shortfall.Uint64() < uint64(e.cfg.AnomalyBps) {
		return
	}
	deviation := uint16(shortfall.Uint64())

	e.metrics.anomalies.Inc()
	e.emitter.Emit(events.Event{
		Kind:      events.PriceAnomaly,
		Timestamp: e.clock(),
		Asset:     tokenOut,
		Reason:    fmt.Sprintf("hop %s -> %s realized %d bps under quote", tokenIn, tokenOut, deviation),
	})
	e.log.Warn("price anomaly",
		"tokenIn", tokenIn,
		"tokenOut", tokenOut,
		"expected", expected.String(),
		"received", received.String(),
		"deviationBps", deviation,
	)

	if e.risk.RecordPriceDeviation(deviation) {
		e.emitter.Emit(events.Event{
			Kind:      events.CircuitBreakerTriggered,
			Timestamp: e.clock(),
			Reason:    fmt.Sprintf("price deviation %d bps", deviation),
		})
	}
}

// settle repays the lending pair first, then splits the gross profit between
// the fee recipient and the original initiator and verifies no balance is
// left behind. A repayment failure aborts the whole unit of work.
func (e *Engine) settle(ctx callbackContext, lendingPair common.Address, route Route, fee, repay, finalOutput *big.Int) (*Settlement, error) {
	if err := e.cfg.Ledger.Transfer(ctx.Asset, e.cfg.Self, lendingPair, repay); err != nil {
		return nil, fmt.Errorf("repayment failed: %w", err)
	}

	e.mu.Lock()
	feeBps := e.cfg.ProtocolFeeBps
	feeRecipient := e.cfg.FeeRecipient
	e.mu.Unlock()

	gross := new(big.Int).Sub(finalOutput, repay)
	protocolFee, netProfit, err := calculator.SplitProfit(gross, feeBps)
	if err != nil {
		return nil, err
	}

	if protocolFee.Sign() > 0 {
		if err := e.cfg.Ledger.Transfer(ctx.Asset, e.cfg.Self, feeRecipient, protocolFee); err != nil {
			return nil, fmt.Errorf("protocol fee payout failed: %w", err)
		}
	}
	if netProfit.Sign() > 0 {
		if err := e.cfg.Ledger.Transfer(ctx.Asset, e.cfg.Self, ctx.Initiator, netProfit); err != nil {
			return nil, fmt.Errorf("profit payout failed: %w", err)
		}
	}

	for _, token := range route.Path {
		if bal := e.cfg.Ledger.BalanceOf(token, e.cfg.Self); bal.Sign() != 0 {
			return nil, fmt.Errorf("%w: %s of %s", ErrResidualBalance, bal, token)
		}
	}

	pathCopy := make([]common.Address, len(route.Path))
	copy(pathCopy, route.Path)
	return &Settlement{
		Asset:       ctx.Asset,
		Amount:      new(big.Int).Set(ctx.Amount),
		Fee:         fee,
		RepayAmount: repay,
		FinalOutput: finalOutput,
		GrossProfit: gross,
		ProtocolFee: protocolFee,
		NetProfit:   netProfit,
		Route:       pathCopy,
	}, nil
}

// --- state machine plumbing ---

func (e *Engine) transition(from, to State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return fmt.Errorf("in state %s, want %s", e.state, from)
	}
	e.state = to
	return nil
}

// reset returns the machine to idle. It runs on every exit path of Initiate,
// so an aborted unit of work never wedges the gate.
func (e *Engine) reset() {
	e.mu.Lock()
	e.state = StateIdle
	e.pending = nil
	e.mu.Unlock()
}

// enterInitiator counts an initiation in flight for the initiator. The count
// is taken before the state gate, so concurrent attempts from one initiator
// accumulate here even though at most one of them will hold the gate.
func (e *Engine) enterInitiator(initiator common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.depth[initiator]+1 > e.cfg.MaxCallDepth {
		return fmt.Errorf("%w: initiator %s at depth %d", ErrRecursionDepthExceeded, initiator, e.depth[initiator])
	}
	e.depth[initiator]++
	return nil
}

func (e *Engine) exitInitiator(initiator common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.depth[initiator] <= 1 {
		delete(e.depth, initiator)
		return
	}
	e.depth[initiator]--
}

func (e *Engine) failLoan(req LoanRequest, cause error) {
	e.metrics.failed.Inc()
	e.emitter.Emit(events.Event{
		Kind:      events.LoanFailed,
		Timestamp: e.clock(),
		Asset:     req.Asset,
		Initiator: req.Initiator,
		Amount:    copyAmount(req.Amount),
		Reason:    cause.Error(),
	})
	e.log.Warn("loan failed", "asset", req.Asset, "err", cause)
}

func poolSnapshot(p gateway.Pair) uniswapv2.Pool {
	reserve0, reserve1 := p.GetReserves()
	return uniswapv2.Pool{
		Addr:     p.Address(),
		Token0:   p.Token0(),
		Token1:   p.Token1(),
		Reserve0: reserve0,
		Reserve1: reserve1,
		FeeBps:   p.FeeBps(),
	}
}

func copyAmount(a *big.Int) *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set(a)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopEmitter struct{}

func (nopEmitter) Emit(events.Event) {}
