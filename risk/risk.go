// Package risk implements the pre-trade control layer: per-asset loan
// guardrails, the daily volume window, the circuit breaker and the pause
// switch. It is pure mechanism; callers are responsible for authorization.
package risk

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrPaused is returned while the pause switch is engaged.
	ErrPaused = errors.New("risk: paused")
	// ErrCircuitBreakerActive is returned while the circuit breaker is tripped.
	ErrCircuitBreakerActive = errors.New("risk: circuit breaker active")
	// ErrAssetNotSupported is returned for assets without an active config.
	ErrAssetNotSupported = errors.New("risk: asset not supported")
	// ErrAmountAboveAssetCap is returned when a loan exceeds the asset's cap.
	ErrAmountAboveAssetCap = errors.New("risk: amount above per-asset cap")
	// ErrDailyLimitExceeded is returned when a loan would push the daily window over its cap.
	ErrDailyLimitExceeded = errors.New("risk: daily volume limit exceeded")
	// ErrInvalidAssetConfig is returned for configs that violate their bounds.
	ErrInvalidAssetConfig = errors.New("risk: invalid asset config")
	// ErrInvalidVolumeCap is returned for a non-positive daily volume cap.
	ErrInvalidVolumeCap = errors.New("risk: max daily volume must be positive")
)

const (
	basisPointCeiling = 10_000
	maxRiskScore      = 100

	// resetWindow is the length of the rolling daily volume window.
	resetWindow = 24 * time.Hour
)

// AssetConfig carries the per-asset guardrails.
type AssetConfig struct {
	MaxLoanAmount *big.Int
	LTVRatioBps   uint16
	RiskScore     uint8
	Active        bool
}

// Validate checks the config against its documented bounds.
func (c AssetConfig) Validate() error {
	if c.MaxLoanAmount == nil || c.MaxLoanAmount.Sign() <= 0 {
		return fmt.Errorf("%w: max loan amount must be positive", ErrInvalidAssetConfig)
	}
	if c.LTVRatioBps > basisPointCeiling {
		return fmt.Errorf("%w: ltv %d bps above %d", ErrInvalidAssetConfig, c.LTVRatioBps, basisPointCeiling)
	}
	if c.RiskScore > maxRiskScore {
		return fmt.Errorf("%w: risk score %d above %d", ErrInvalidAssetConfig, c.RiskScore, maxRiskScore)
	}
	return nil
}

// Config holds construction parameters for the Controller.
type Config struct {
	MaxDailyVolume *big.Int

	// DeviationTripBps is the quoted-vs-realized price deviation beyond
	// which the circuit breaker trips. Zero disables escalation.
	DeviationTripBps uint16

	// Clock is used for the daily window. Defaults to time.Now.
	Clock func() time.Time
}

// Controller is the mutable risk state shared by all initiations.
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	paused        bool
	breakerActive bool
	breakerReason string

	maxDailyVolume  *big.Int
	dailyVolumeUsed *big.Int
	lastReset       time.Time

	deviationTripBps uint16

	assets map[common.Address]AssetConfig

	clock func() time.Time
}

// NewController constructs a Controller. MaxDailyVolume must be positive.
func NewController(cfg Config) (*Controller, error) {
	if cfg.MaxDailyVolume == nil || cfg.MaxDailyVolume.Sign() <= 0 {
		return nil, ErrInvalidVolumeCap
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		maxDailyVolume:   new(big.Int).Set(cfg.MaxDailyVolume),
		dailyVolumeUsed:  new(big.Int),
		lastReset:        clock(),
		deviationTripBps: cfg.DeviationTripBps,
		assets:           make(map[common.Address]AssetConfig),
		clock:            clock,
	}, nil
}

// --- Pause switch ---

func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

func (c *Controller) Unpause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// --- Circuit breaker ---

// TriggerBreaker trips the breaker with a reason for off-chain monitoring.
func (c *Controller) TriggerBreaker(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakerActive = true
	c.breakerReason = reason
}

// ResetBreaker clears the breaker.
func (c *Controller) ResetBreaker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakerActive = false
	c.breakerReason = ""
}

// IsBreakerActive reports breaker state and the reason it was tripped.
func (c *Controller) IsBreakerActive() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.breakerActive, c.breakerReason
}

// RecordPriceDeviation reports a quoted-vs-realized deviation. Deviations at
// or beyond the trip threshold trip the breaker; the return value reports
// whether this call tripped it.
func (c *Controller) RecordPriceDeviation(deviationBps uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deviationTripBps == 0 || deviationBps < c.deviationTripBps {
		return false
	}
	if c.breakerActive {
		return false
	}
	c.breakerActive = true
	c.breakerReason = fmt.Sprintf("price deviation %d bps", deviationBps)
	return true
}

// --- Per-asset configuration ---

// SetAssetConfig validates and stores the config for an asset.
func (c *Controller) SetAssetConfig(asset common.Address, cfg AssetConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := cfg
	stored.MaxLoanAmount = new(big.Int).Set(cfg.MaxLoanAmount)
	c.assets[asset] = stored
	return nil
}

// AssetConfig returns the stored config for an asset.
func (c *Controller) AssetConfig(asset common.Address) (AssetConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.assets[asset]
	if !ok {
		return AssetConfig{}, false
	}
	cfg.MaxLoanAmount = new(big.Int).Set(cfg.MaxLoanAmount)
	return cfg, true
}

// --- Daily volume window ---

// SetMaxDailyVolume replaces the daily cap. The used counter is untouched.
func (c *Controller) SetMaxDailyVolume(max *big.Int) error {
	if max == nil || max.Sign() <= 0 {
		return ErrInvalidVolumeCap
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxDailyVolume = new(big.Int).Set(max)
	return nil
}

// DailyVolume reports the current window usage and cap.
func (c *Controller) DailyVolume() (used, max *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWindowIfElapsedLocked()
	return new(big.Int).Set(c.dailyVolumeUsed), new(big.Int).Set(c.maxDailyVolume)
}

// CheckLoan runs every pre-initiation control that does not mutate state:
// pause, breaker, asset support, per-asset cap and the daily window headroom.
func (c *Controller) CheckLoan(asset common.Address, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if c.breakerActive {
		return fmt.Errorf("%w: %s", ErrCircuitBreakerActive, c.breakerReason)
	}

	cfg, ok := c.assets[asset]
	if !ok || !cfg.Active {
		return fmt.Errorf("%w: %s", ErrAssetNotSupported, asset)
	}
	if amount.Cmp(cfg.MaxLoanAmount) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrAmountAboveAssetCap, amount, cfg.MaxLoanAmount)
	}

	c.resetWindowIfElapsedLocked()
	projected := new(big.Int).Add(c.dailyVolumeUsed, amount)
	if projected.Cmp(c.maxDailyVolume) > 0 {
		return fmt.Errorf("%w: %s + %s > %s", ErrDailyLimitExceeded, c.dailyVolumeUsed, amount, c.maxDailyVolume)
	}
	return nil
}

// CommitVolume records a successfully settled loan in the daily window.
// Callers must have passed CheckLoan for the same amount within the same
// unit of work; a failed unit of work must never be committed, matching the
// all-or-nothing host semantics.
func (c *Controller) CommitVolume(amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWindowIfElapsedLocked()
	c.dailyVolumeUsed.Add(c.dailyVolumeUsed, amount)
}

func (c *Controller) resetWindowIfElapsedLocked() {
	now := c.clock()
	if now.Sub(c.lastReset) >= resetWindow {
		c.dailyVolumeUsed.SetInt64(0)
		c.lastReset = now
	}
}
