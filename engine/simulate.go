package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
	"github.com/defistate/flasharb-go/protocols/uniswapv2/calculator"
)

// Simulate runs the same fee, routing and profitability math as Initiate
// against current pool state without committing anything. Given identical
// pool state, the quote's fee, repay amount and profit equal the values a
// real execution computes.
func (e *Engine) Simulate(req LoanRequest) (*Quote, error) {
	route, err := e.validateRequest(req)
	if err != nil {
		return nil, err
	}

	fee, err := e.cfg.FeeSchedule.FlashFee(req.Amount)
	if err != nil {
		return nil, err
	}
	repay, err := e.cfg.FeeSchedule.RepayAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// Pool state is carried forward hop by hop, so every hop is priced on
	// the reserves the preceding hops would leave behind, exactly as the
	// sequential execution does.
	simulated := make(map[common.Address]uniswapv2.Pool)
	amountIn := new(big.Int).Set(req.Amount)
	for i := 0; i < len(route.Path)-1; i++ {
		tokenIn, tokenOut := route.Path[i], route.Path[i+1]

		hopPair, ok := e.cfg.Factory.GetPair(tokenIn, tokenOut)
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrPairNotFound, tokenIn, tokenOut)
		}
		pool, seen := simulated[hopPair.Address()]
		if !seen {
			pool = poolSnapshot(hopPair)
		}
		if err := calculator.CheckPriceImpact(amountIn, tokenIn, pool, e.cfg.PriceImpactCeilingBps); err != nil {
			return nil, err
		}

		out, nextPool, err := calculator.SimulateSwap(amountIn, tokenIn, tokenOut, pool)
		if err != nil {
			return nil, err
		}
		simulated[hopPair.Address()] = nextPool
		amountIn = out
	}
	expectedOut := amountIn

	e.mu.Lock()
	feeBps := e.cfg.ProtocolFeeBps
	e.mu.Unlock()

	estimated := new(big.Int).Sub(expectedOut, repay)
	profitable := calculator.IsProfitable(expectedOut, repay)

	protocolFee, netProfit := new(big.Int), new(big.Int)
	if profitable {
		protocolFee, netProfit, err = calculator.SplitProfit(estimated, feeBps)
		if err != nil {
			return nil, err
		}
	}

	return &Quote{
		Asset:           req.Asset,
		Amount:          new(big.Int).Set(req.Amount),
		Fee:             fee,
		RepayAmount:     repay,
		ExpectedOutput:  expectedOut,
		EstimatedProfit: estimated,
		ProtocolFee:     protocolFee,
		NetProfit:       netProfit,
		Profitable:      profitable,
	}, nil
}
