package calculator

import (
	"fmt"
	"math/big"
)

// FeeSchedule mirrors the lending pair's own flash-swap fee formula.
// The canonical V2 schedule is 3/997: the pair checks the constant product
// after deducting 0.3% from every input, so repaying principal*3/997 + 1 on
// top of the principal is the smallest amount that satisfies the K invariant.
type FeeSchedule struct {
	Numerator   *big.Int
	Denominator *big.Int
}

// DefaultFeeSchedule returns the canonical 3/997 flash-swap schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{Numerator: big.NewInt(3), Denominator: big.NewInt(997)}
}

// Validate checks the schedule is usable.
func (s FeeSchedule) Validate() error {
	if s.Numerator == nil || s.Denominator == nil {
		return fmt.Errorf("%w: fee schedule numerator/denominator must be non-nil", ErrInvalidState)
	}
	if s.Numerator.Sign() < 0 || s.Denominator.Sign() <= 0 {
		return fmt.Errorf("%w: fee schedule must be non-negative with positive denominator", ErrInvalidState)
	}
	return nil
}

// FlashFee computes the loan fee for a principal:
//
//	fee = principal * numerator / denominator + 1
//
// The +1 rounds in the protocol's favor so integer truncation can never
// produce an under-repayment.
func (s FeeSchedule) FlashFee(principal *big.Int) (*big.Int, error) {
	if principal == nil {
		return nil, ErrNilAmount
	}
	if principal.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	fee := new(big.Int).Mul(principal, s.Numerator)
	fee.Div(fee, s.Denominator)
	return fee.Add(fee, one), nil
}

// RepayAmount computes principal + FlashFee(principal).
func (s FeeSchedule) RepayAmount(principal *big.Int) (*big.Int, error) {
	fee, err := s.FlashFee(principal)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(principal, fee), nil
}

// IsProfitable reports whether finalOutput strictly exceeds repayAmount.
// Breaking exactly even is not profitable: the trade must cover its own fee
// and still leave something behind.
func IsProfitable(finalOutput, repayAmount *big.Int) bool {
	if finalOutput == nil || repayAmount == nil {
		return false
	}
	return finalOutput.Cmp(repayAmount) > 0
}

// SplitProfit divides grossProfit into the protocol's cut and the initiator's
// net share. protocolFeeBps must be at most 10000.
func SplitProfit(grossProfit *big.Int, protocolFeeBps uint16) (protocolFee, netProfit *big.Int, err error) {
	if grossProfit == nil {
		return nil, nil, ErrNilAmount
	}
	if grossProfit.Sign() < 0 {
		return nil, nil, ErrInvalidAmount
	}
	if int64(protocolFeeBps) > basisPointDivisor.Int64() {
		return nil, nil, fmt.Errorf("%w: protocol fee %d bps above 10000", ErrInvalidState, protocolFeeBps)
	}

	protocolFee = new(big.Int).Mul(grossProfit, big.NewInt(int64(protocolFeeBps)))
	protocolFee.Div(protocolFee, basisPointDivisor)
	netProfit = new(big.Int).Sub(grossProfit, protocolFee)
	return protocolFee, netProfit, nil
}
