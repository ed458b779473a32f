package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/flasharb-go/risk"
	"github.com/defistate/flasharb-go/streams/events"
)

// Owner-facing configuration surface. Every mutation is gated through the
// two-step ownership authority; read paths are free.

// Owner returns the current owner.
func (e *Engine) Owner() common.Address { return e.auth.Owner() }

// PendingOwner returns the proposed owner, if any.
func (e *Engine) PendingOwner() common.Address { return e.auth.PendingOwner() }

// ProposeOwner stages a candidate owner. Owner only.
func (e *Engine) ProposeOwner(caller, candidate common.Address) error {
	if err := e.auth.ProposeOwner(caller, candidate); err != nil {
		return err
	}
	e.emitter.Emit(events.Event{
		Kind:      events.OwnershipProposed,
		Timestamp: e.clock(),
		Initiator: candidate,
	})
	e.log.Info("ownership proposed", "candidate", candidate)
	return nil
}

// AcceptOwnership promotes the pending owner. Pending owner only.
func (e *Engine) AcceptOwnership(caller common.Address) error {
	if err := e.auth.AcceptOwnership(caller); err != nil {
		return err
	}
	e.emitter.Emit(events.Event{
		Kind:      events.OwnershipTransferred,
		Timestamp: e.clock(),
		Initiator: caller,
	})
	e.log.Info("ownership transferred", "owner", caller)
	return nil
}

// Pause stops all initiations. Owner only.
func (e *Engine) Pause(caller common.Address) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	e.risk.Pause()
	e.log.Warn("paused")
	return nil
}

// Unpause resumes initiations. Owner only.
func (e *Engine) Unpause(caller common.Address) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	e.risk.Unpause()
	e.log.Info("unpaused")
	return nil
}

// TriggerCircuitBreaker trips the breaker manually. Owner only.
func (e *Engine) TriggerCircuitBreaker(caller common.Address, reason string) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	e.risk.TriggerBreaker(reason)
	e.emitter.Emit(events.Event{
		Kind:      events.CircuitBreakerTriggered,
		Timestamp: e.clock(),
		Reason:    reason,
	})
	e.log.Warn("circuit breaker triggered", "reason", reason)
	return nil
}

// ResetCircuitBreaker clears the breaker. Owner only.
func (e *Engine) ResetCircuitBreaker(caller common.Address) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	e.risk.ResetBreaker()
	e.log.Info("circuit breaker reset")
	return nil
}

// SetRiskConfig validates and stores the per-asset guardrails. Owner only.
func (e *Engine) SetRiskConfig(caller, asset common.Address, cfg risk.AssetConfig) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if err := e.risk.SetAssetConfig(asset, cfg); err != nil {
		return err
	}
	e.emitter.Emit(events.Event{
		Kind:      events.RiskConfigUpdated,
		Timestamp: e.clock(),
		Asset:     asset,
	})
	e.log.Info("risk config updated",
		"asset", asset,
		"maxLoanAmount", cfg.MaxLoanAmount.String(),
		"active", cfg.Active,
	)
	return nil
}

// SetMaxDailyVolume replaces the daily volume cap. Owner only.
func (e *Engine) SetMaxDailyVolume(caller common.Address, max *big.Int) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if err := e.risk.SetMaxDailyVolume(max); err != nil {
		return err
	}
	e.log.Info("max daily volume updated", "max", max.String())
	return nil
}

// SetProtocolFeeBps updates the protocol's share of gross profit. Owner only;
// capped at 1000 bps.
func (e *Engine) SetProtocolFeeBps(caller common.Address, bps uint16) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if bps > maxProtocolFeeBps {
		return fmt.Errorf("%w: %d bps above %d", ErrInvalidProtocolFee, bps, maxProtocolFeeBps)
	}
	e.mu.Lock()
	e.cfg.ProtocolFeeBps = bps
	e.mu.Unlock()
	e.log.Info("protocol fee updated", "bps", bps)
	return nil
}

// SetFeeRecipient updates the protocol fee destination. Owner only; the zero
// address is rejected.
func (e *Engine) SetFeeRecipient(caller, recipient common.Address) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if recipient == (common.Address{}) {
		return ErrInvalidFeeRecipient
	}
	e.mu.Lock()
	e.cfg.FeeRecipient = recipient
	e.mu.Unlock()
	e.log.Info("fee recipient updated", "recipient", recipient)
	return nil
}

// EmergencyWithdraw moves the engine's entire balance of an asset to the
// owner. Owner only, paused only, and a zero balance is an error rather than
// a silent no-op.
func (e *Engine) EmergencyWithdraw(caller, asset common.Address) (*big.Int, error) {
	if err := e.auth.RequireOwner(caller); err != nil {
		return nil, err
	}
	if !e.risk.IsPaused() {
		return nil, fmt.Errorf("%w: emergency withdrawal requires pause", ErrNotPaused)
	}

	balance := e.cfg.Ledger.BalanceOf(asset, e.cfg.Self)
	if balance.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBalanceToWithdraw, asset)
	}

	owner := e.auth.Owner()
	if err := e.cfg.Ledger.Transfer(asset, e.cfg.Self, owner, balance); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.Event{
		Kind:      events.EmergencyWithdrawal,
		Timestamp: e.clock(),
		Asset:     asset,
		Initiator: owner,
		Amount:    new(big.Int).Set(balance),
	})
	e.log.Warn("emergency withdrawal", "asset", asset, "amount", balance.String(), "owner", owner)
	return balance, nil
}
