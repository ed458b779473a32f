package tokenregistry

import "github.com/ethereum/go-ethereum/common"

// Token is a safe, structured representation of a token's data for external use.
type Token struct {
	Address  common.Address `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`

	// FeeOnTransferBps is nonzero for tokens that skim a cut on every
	// transfer. The engine never trusts a transfer's nominal amount for such
	// tokens; it measures balance deltas instead.
	FeeOnTransferBps uint16 `json:"feeOnTransferBps"`
}

// TakesTransferFee reports whether transfers of this token can deliver less
// than the nominal amount.
func (t Token) TakesTransferFee() bool {
	return t.FeeOnTransferBps > 0
}
