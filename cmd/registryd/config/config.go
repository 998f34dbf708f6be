// Package config loads the registryd daemon configuration from a YAML file.
package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// RegistrydConfig is the daemon's on-disk configuration.
type RegistrydConfig struct {
	// RPCURL is the Ethereum JSON-RPC endpoint the collaborators query.
	RPCURL string `yaml:"rpcUrl"`
	// ListenAddr is the HTTP listen address serving the registry RPC API
	// and the Prometheus metrics endpoint.
	ListenAddr string `yaml:"listenAddr"`

	ClearingHouse string `yaml:"clearingHouse"`
	Factory       string `yaml:"factory"`
	QuoteToken    string `yaml:"quoteToken"`
	Owner         string `yaml:"owner"`

	// MinCustodyBalance is the minimum clearing house balance required of a
	// base token at registration, in whole tokens.
	MinCustodyBalance uint64 `yaml:"minCustodyBalance"`
	// EventBufferSize is the per-subscriber buffer of the PoolAdded notifier.
	EventBufferSize uint `yaml:"eventBufferSize"`
}

// LoadConfig reads and validates the configuration at path.
func LoadConfig(path string) (*RegistrydConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg RegistrydConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RegistrydConfig) validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("config: rpcUrl is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listenAddr is required")
	}
	for name, addr := range map[string]string{
		"clearingHouse": c.ClearingHouse,
		"factory":       c.Factory,
		"quoteToken":    c.QuoteToken,
		"owner":         c.Owner,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("config: %s is not a valid address: %q", name, addr)
		}
	}
	return nil
}

func (c *RegistrydConfig) ClearingHouseAddress() common.Address {
	return common.HexToAddress(c.ClearingHouse)
}

func (c *RegistrydConfig) FactoryAddress() common.Address {
	return common.HexToAddress(c.Factory)
}

func (c *RegistrydConfig) QuoteTokenAddress() common.Address {
	return common.HexToAddress(c.QuoteToken)
}

func (c *RegistrydConfig) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// MinCustodyBalanceTokens returns the configured minimum as a big integer in
// whole tokens.
func (c *RegistrydConfig) MinCustodyBalanceTokens() *big.Int {
	return new(big.Int).SetUint64(c.MinCustodyBalance)
}
