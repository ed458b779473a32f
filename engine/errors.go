package engine

import (
	"errors"

	"github.com/defistate/flasharb-go/access"
	"github.com/defistate/flasharb-go/protocols/uniswapv2/calculator"
	"github.com/defistate/flasharb-go/risk"
)

// The engine surfaces one named sentinel per failure cause so off-chain
// tooling can branch on errors.Is. Causes owned by a lower layer keep that
// layer's sentinel; re-exporting them here gives callers a single import.
var (
	// ErrInvalidAsset is returned for assets with no configured route.
	ErrInvalidAsset = errors.New("engine: invalid asset")
	// ErrInvalidAmount is returned for nil, zero or out-of-bounds loan amounts.
	ErrInvalidAmount = errors.New("engine: invalid amount")
	// ErrSlippageTooHigh is returned for tolerances above 10000 bps.
	ErrSlippageTooHigh = errors.New("engine: slippage tolerance too high")
	// ErrPairNotFound is returned when a required pool does not exist.
	ErrPairNotFound = errors.New("engine: pair not found")
	// ErrReentrantCall is returned when initiation is attempted while a loan is in flight.
	ErrReentrantCall = errors.New("engine: reentrant call")
	// ErrRecursionDepthExceeded is returned when nested self-invocation passes the cap.
	ErrRecursionDepthExceeded = errors.New("engine: recursion depth exceeded")
	// ErrUnauthorizedCallback is returned for callbacks that fail authentication.
	ErrUnauthorizedCallback = errors.New("engine: unauthorized callback")
	// ErrNotProfitable is returned when the final output does not strictly exceed the repay amount.
	ErrNotProfitable = errors.New("engine: arbitrage not profitable")
	// ErrDeadlineExpired is returned when the callback resumes past its deadline.
	ErrDeadlineExpired = errors.New("engine: deadline expired")
	// ErrInvalidFeeRecipient is returned for a zero fee recipient address.
	ErrInvalidFeeRecipient = errors.New("engine: invalid fee recipient")
	// ErrInvalidProtocolFee is returned for a protocol fee above the hard cap.
	ErrInvalidProtocolFee = errors.New("engine: protocol fee above cap")
	// ErrNoBalanceToWithdraw is returned for an emergency withdrawal of a zero balance.
	ErrNoBalanceToWithdraw = errors.New("engine: no balance to withdraw")
	// ErrResidualBalance is returned if settlement somehow leaves funds behind.
	ErrResidualBalance = errors.New("engine: residual balance after settlement")
	// ErrNotPaused is returned when emergency withdrawal is attempted while live.
	ErrNotPaused = errors.New("engine: not paused")

	// Lower-layer sentinels, re-exported.
	ErrPaused                = risk.ErrPaused
	ErrCircuitBreakerActive  = risk.ErrCircuitBreakerActive
	ErrDailyLimitExceeded    = risk.ErrDailyLimitExceeded
	ErrUnauthorized          = access.ErrUnauthorized
	ErrInsufficientLiquidity = calculator.ErrInsufficientLiquidity
	ErrPriceImpactTooHigh    = calculator.ErrPriceImpactTooHigh
)
