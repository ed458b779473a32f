package engine

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// State tracks the in-flight unit of work. Exactly one loan can be in flight;
// the state gate doubles as the reentrancy guard across initiation and the
// flash-swap callback.
type State uint8

const (
	StateIdle State = iota
	StateLoanRequested
	StateTradesExecuting
	StateProfitabilityChecked
	StateSettlementComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoanRequested:
		return "loanRequested"
	case StateTradesExecuting:
		return "tradesExecuting"
	case StateProfitabilityChecked:
		return "profitabilityChecked"
	case StateSettlementComplete:
		return "settlementComplete"
	}
	return "unknown"
}

// LoanRequest is the borrower-specified intent. It lives only for the
// duration of the initiating call.
type LoanRequest struct {
	Asset                common.Address
	Amount               *big.Int
	SlippageToleranceBps uint16
	Initiator            common.Address
}

// callbackContext is the opaque data threaded through the pair's callback.
// It is encoded at the swap boundary and decoded when the pair re-enters the
// engine; it has no life outside the transaction.
type callbackContext struct {
	Asset       common.Address `json:"asset"`
	Amount      *big.Int       `json:"amount"`
	Initiator   common.Address `json:"initiator"`
	SlippageBps uint16         `json:"slippageBps"`
	Deadline    int64          `json:"deadline"` // unix seconds
}

func (c callbackContext) encode() ([]byte, error) {
	return json.Marshal(c)
}

func decodeCallbackContext(data []byte) (callbackContext, error) {
	var c callbackContext
	if err := json.Unmarshal(data, &c); err != nil {
		return callbackContext{}, err
	}
	return c, nil
}

func (c callbackContext) deadline() time.Time {
	return time.Unix(c.Deadline, 0)
}

// Settlement reports a completed arbitrage.
type Settlement struct {
	Asset       common.Address `json:"asset"`
	Amount      *big.Int       `json:"amount"`
	Fee         *big.Int       `json:"fee"`
	RepayAmount *big.Int       `json:"repayAmount"`
	FinalOutput *big.Int       `json:"finalOutput"`
	GrossProfit *big.Int       `json:"grossProfit"`
	ProtocolFee *big.Int       `json:"protocolFee"`
	NetProfit   *big.Int       `json:"netProfit"`
	Route       []common.Address `json:"route"`
}

// Quote is the read-only mirror of a would-be execution, used for off-chain
// pre-flight checks.
type Quote struct {
	Asset           common.Address `json:"asset"`
	Amount          *big.Int       `json:"amount"`
	Fee             *big.Int       `json:"fee"`
	RepayAmount     *big.Int       `json:"repayAmount"`
	ExpectedOutput  *big.Int       `json:"expectedOutput"`
	EstimatedProfit *big.Int       `json:"estimatedProfit"`
	ProtocolFee     *big.Int       `json:"protocolFee"`
	NetProfit       *big.Int       `json:"netProfit"`
	Profitable      bool           `json:"profitable"`
}
