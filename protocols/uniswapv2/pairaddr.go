package uniswapv2

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MainnetInitCodeHash is the keccak256 of the canonical UniswapV2Pair creation
// bytecode. Forks ship their own hash, so deployments must configure it.
var MainnetInitCodeHash = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbe574a85ab1ba6cfbbd")

// AddressDeriver computes counterfactual pair addresses the same way the
// factory's CREATE2 deployment does. Recomputing the address from a reported
// token pair is the only trustworthy way to authenticate a flash-swap
// callback: the caller claims to be a pair, the derivation proves it.
type AddressDeriver struct {
	Factory      common.Address
	InitCodeHash common.Hash
}

// PairFor returns the deterministic pair address for the given tokens.
// Token ordering is canonicalized internally, so arguments may come in either order.
func (d AddressDeriver) PairFor(tokenA, tokenB common.Address) common.Address {
	token0, token1 := SortTokens(tokenA, tokenB)

	salt := crypto.Keccak256(token0.Bytes(), token1.Bytes())

	// CREATE2: keccak256(0xff ++ factory ++ salt ++ initCodeHash)[12:]
	payload := make([]byte, 0, 1+common.AddressLength+2*common.HashLength)
	payload = append(payload, 0xff)
	payload = append(payload, d.Factory.Bytes()...)
	payload = append(payload, salt...)
	payload = append(payload, d.InitCodeHash.Bytes()...)

	return common.BytesToAddress(crypto.Keccak256(payload)[12:])
}
