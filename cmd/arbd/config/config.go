// Package config loads and validates the arbd daemon configuration.
package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// AssetConfig declares one borrowable asset: its risk guardrails, its lending
// pair counter asset and the cyclic trade route.
type AssetConfig struct {
	Address          string   `yaml:"address"`
	MaxLoanAmount    string   `yaml:"maxLoanAmount"`
	LTVRatioBps      uint16   `yaml:"ltvRatioBps"`
	RiskScore        uint8    `yaml:"riskScore"`
	Active           bool     `yaml:"active"`
	LoanCounterAsset string   `yaml:"loanCounterAsset"`
	Route            []string `yaml:"route"`
}

// TokenConfig declares token metadata for the token registry. Fee-on-transfer
// tokens carry a nonzero fee, applied by the ledger on every transfer.
type TokenConfig struct {
	Address          string `yaml:"address"`
	Name             string `yaml:"name"`
	Symbol           string `yaml:"symbol"`
	Decimals         uint8  `yaml:"decimals"`
	FeeOnTransferBps uint16 `yaml:"feeOnTransferBps"`
}

// PoolConfig seeds one liquidity pool in the in-memory exchange.
type PoolConfig struct {
	TokenA   string `yaml:"tokenA"`
	TokenB   string `yaml:"tokenB"`
	ReserveA string `yaml:"reserveA"`
	ReserveB string `yaml:"reserveB"`
	FeeBps   uint16 `yaml:"feeBps"`
}

// ArbdConfig is the full daemon configuration.
type ArbdConfig struct {
	Owner        string `yaml:"owner"`
	Self         string `yaml:"self"`
	FeeRecipient string `yaml:"feeRecipient"`

	ProtocolFeeBps        uint16 `yaml:"protocolFeeBps"`
	MinLoanAmount         string `yaml:"minLoanAmount"`
	MaxLoanAmount         string `yaml:"maxLoanAmount"`
	PriceImpactCeilingBps uint16 `yaml:"priceImpactCeilingBps"`
	AnomalyBps            uint16 `yaml:"anomalyBps"`
	DeadlineSeconds       uint32 `yaml:"deadlineSeconds"`
	MaxCallDepth          int    `yaml:"maxCallDepth"`

	MaxDailyVolume   string `yaml:"maxDailyVolume"`
	DeviationTripBps uint16 `yaml:"deviationTripBps"`

	FactoryAddress string `yaml:"factoryAddress"`
	InitCodeHash   string `yaml:"initCodeHash"`

	EventBufferSize uint `yaml:"eventBufferSize"`

	// ScanIntervalSeconds drives the read-only quoting loop. Zero disables it.
	ScanIntervalSeconds uint32 `yaml:"scanIntervalSeconds"`
	ScanAmount          string `yaml:"scanAmount"`

	Tokens []TokenConfig `yaml:"tokens"`
	Assets []AssetConfig `yaml:"assets"`
	Pools  []PoolConfig  `yaml:"pools"`
}

// LoadConfig reads, parses and validates a YAML configuration file.
func LoadConfig(path string) (*ArbdConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg ArbdConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ArbdConfig) validate() error {
	for name, addr := range map[string]string{
		"owner":          c.Owner,
		"self":           c.Self,
		"feeRecipient":   c.FeeRecipient,
		"factoryAddress": c.FactoryAddress,
	} {
		if _, err := parseAddress(addr); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if _, err := ParseAmount(c.MinLoanAmount); err != nil {
		return fmt.Errorf("config: minLoanAmount: %w", err)
	}
	if _, err := ParseAmount(c.MaxLoanAmount); err != nil {
		return fmt.Errorf("config: maxLoanAmount: %w", err)
	}
	if _, err := ParseAmount(c.MaxDailyVolume); err != nil {
		return fmt.Errorf("config: maxDailyVolume: %w", err)
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("config: at least one token is required")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("config: at least one asset is required")
	}
	for i, token := range c.Tokens {
		if _, err := parseAddress(token.Address); err != nil {
			return fmt.Errorf("config: tokens[%d].address: %w", i, err)
		}
		if token.Symbol == "" {
			return fmt.Errorf("config: tokens[%d]: symbol is required", i)
		}
	}
	if len(c.Pools) == 0 {
		return fmt.Errorf("config: at least one pool is required")
	}
	for i, asset := range c.Assets {
		if _, err := parseAddress(asset.Address); err != nil {
			return fmt.Errorf("config: assets[%d].address: %w", i, err)
		}
		if _, err := parseAddress(asset.LoanCounterAsset); err != nil {
			return fmt.Errorf("config: assets[%d].loanCounterAsset: %w", i, err)
		}
		if _, err := ParseAmount(asset.MaxLoanAmount); err != nil {
			return fmt.Errorf("config: assets[%d].maxLoanAmount: %w", i, err)
		}
		if len(asset.Route) < 3 {
			return fmt.Errorf("config: assets[%d].route needs at least two hops", i)
		}
		for j, hop := range asset.Route {
			if _, err := parseAddress(hop); err != nil {
				return fmt.Errorf("config: assets[%d].route[%d]: %w", i, j, err)
			}
		}
	}
	for i, pool := range c.Pools {
		if _, err := parseAddress(pool.TokenA); err != nil {
			return fmt.Errorf("config: pools[%d].tokenA: %w", i, err)
		}
		if _, err := parseAddress(pool.TokenB); err != nil {
			return fmt.Errorf("config: pools[%d].tokenB: %w", i, err)
		}
		if _, err := ParseAmount(pool.ReserveA); err != nil {
			return fmt.Errorf("config: pools[%d].reserveA: %w", i, err)
		}
		if _, err := ParseAmount(pool.ReserveB); err != nil {
			return fmt.Errorf("config: pools[%d].reserveB: %w", i, err)
		}
	}
	if c.ScanIntervalSeconds > 0 {
		if _, err := ParseAmount(c.ScanAmount); err != nil {
			return fmt.Errorf("config: scanAmount: %w", err)
		}
	}
	return nil
}

// Address returns a validated field as a common.Address. Call only after
// LoadConfig succeeded.
func Address(s string) common.Address {
	return common.HexToAddress(s)
}

// ParseAmount parses a positive decimal integer amount.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a decimal integer", s)
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("%q must be positive", s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address")
	}
	return addr, nil
}
