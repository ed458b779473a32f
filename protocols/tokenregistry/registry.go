package tokenregistry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Registry provides indexed, read-only access to a fixed set of tokens.
// It is built once at startup from configuration and never mutated, so it is
// safe for concurrent readers.
type Registry struct {
	byAddress map[common.Address]Token
	bySymbol  map[string]Token
	all       []Token
}

// NewRegistry indexes the given tokens. Duplicate addresses or symbols are a
// configuration error, not something to silently collapse.
func NewRegistry(tokens []Token) (*Registry, error) {
	byAddress := make(map[common.Address]Token, len(tokens))
	bySymbol := make(map[string]Token, len(tokens))

	for _, token := range tokens {
		if token.Address == (common.Address{}) {
			return nil, fmt.Errorf("token %q has a zero address", token.Symbol)
		}
		if _, exists := byAddress[token.Address]; exists {
			return nil, fmt.Errorf("duplicate token address %s", token.Address)
		}
		symbol := strings.ToUpper(token.Symbol)
		if symbol == "" {
			return nil, fmt.Errorf("token %s has an empty symbol", token.Address)
		}
		if _, exists := bySymbol[symbol]; exists {
			return nil, fmt.Errorf("duplicate token symbol %q", token.Symbol)
		}
		byAddress[token.Address] = token
		bySymbol[symbol] = token
	}

	allCopy := make([]Token, len(tokens))
	copy(allCopy, tokens)

	return &Registry{
		byAddress: byAddress,
		bySymbol:  bySymbol,
		all:       allCopy,
	}, nil
}

// ByAddress retrieves a token by its address.
func (r *Registry) ByAddress(addr common.Address) (Token, bool) {
	t, ok := r.byAddress[addr]
	return t, ok
}

// BySymbol retrieves a token by its symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (Token, bool) {
	t, ok := r.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// All returns a defensive copy of the slice of all tokens.
func (r *Registry) All() []Token {
	allCopy := make([]Token, len(r.all))
	copy(allCopy, r.all)
	return allCopy
}
