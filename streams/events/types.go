package events

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Kind identifies an event class for off-chain monitoring.
type Kind string

const (
	LoanStarted             Kind = "loanStarted"
	LoanCompleted           Kind = "loanCompleted"
	LoanFailed              Kind = "loanFailed"
	CircuitBreakerTriggered Kind = "circuitBreakerTriggered"
	RiskConfigUpdated       Kind = "riskConfigUpdated"
	EmergencyWithdrawal     Kind = "emergencyWithdrawal"
	PriceAnomaly            Kind = "priceAnomaly"
	OwnershipProposed       Kind = "ownershipProposed"
	OwnershipTransferred    Kind = "ownershipTransferred"
)

// Event is the side-channel record emitted by the engine. Numeric fields are
// populated where they make sense for the kind and nil otherwise.
type Event struct {
	Kind      Kind           `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Asset     common.Address `json:"asset,omitempty"`
	Initiator common.Address `json:"initiator,omitempty"`
	Amount    *big.Int       `json:"amount,omitempty"`
	Fee       *big.Int       `json:"fee,omitempty"`
	Profit    *big.Int       `json:"profit,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// Emitter is the surface the engine publishes through.
type Emitter interface {
	Emit(Event)
}

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
