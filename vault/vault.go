// Package vault queries the balance and decimals surface of custody token
// contracts. The registry uses it to evaluate whether the clearing house
// holds a sufficient balance of a candidate base token before registration.
package vault

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/perpstate/market-registry-go/abi"
)

var (
	// Method signatures for the vault balance surface, loaded from the ABI package.
	decimalsSig = abi.VaultABI.Methods["decimals"].ID
)

// defaultRPCTimeout bounds individual RPC calls so a slow node cannot stall
// a registration indefinitely.
const defaultRPCTimeout = 10 * time.Second

// BalanceReader is the query surface the registry needs from a vault-like
// collaborator.
type BalanceReader interface {
	// BalanceOf returns the amount of token held by account.
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	// Decimals returns the fixed-point scale of token's balances.
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// CodeReader is the minimal chain-state surface needed to probe for contract
// code. *ethclient.Client satisfies it.
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// CodeChecker reports whether an address currently hosts contract code.
type CodeChecker func(ctx context.Context, addr common.Address) (bool, error)

// NewCodeChecker builds a CodeChecker on top of a chain-state reader.
// The zero address is never a contract.
func NewCodeChecker(reader CodeReader) CodeChecker {
	return func(parentCtx context.Context, addr common.Address) (bool, error) {
		if addr == (common.Address{}) {
			return false, nil
		}

		ctx, cancel := context.WithTimeout(parentCtx, defaultRPCTimeout)
		defer cancel()

		code, err := reader.CodeAt(ctx, addr, nil)
		if err != nil {
			return false, fmt.Errorf("eth_getCode for %s failed: %w", addr.Hex(), err)
		}
		return len(code) > 0, nil
	}
}

// Client implements BalanceReader over raw eth_call.
type Client struct {
	caller  ethereum.ContractCaller
	timeout time.Duration
}

// NewClient creates a vault client backed by the given contract caller.
func NewClient(caller ethereum.ContractCaller) *Client {
	return &Client{
		caller:  caller,
		timeout: defaultRPCTimeout,
	}
}

// BalanceOf fetches token's balance of account with a single eth_call.
func (c *Client) BalanceOf(parentCtx context.Context, token, account common.Address) (*big.Int, error) {
	callData, err := abi.VaultABI.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, c.timeout)
	defer cancel()

	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: callData}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call for balanceOf failed: %w", err)
	}
	if len(res) != 32 {
		return nil, fmt.Errorf("invalid response length for balanceOf: got %d bytes", len(res))
	}

	return new(big.Int).SetBytes(res), nil
}

// Decimals fetches token's fixed-point scale.
func (c *Client) Decimals(parentCtx context.Context, token common.Address) (uint8, error) {
	ctx, cancel := context.WithTimeout(parentCtx, c.timeout)
	defer cancel()

	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: decimalsSig}, nil)
	if err != nil {
		return 0, fmt.Errorf("eth_call for decimals failed: %w", err)
	}
	if len(res) != 32 {
		return 0, fmt.Errorf("invalid response length for decimals: got %d bytes", len(res))
	}

	// decimals is a uint8 right-aligned in a single 32-byte word.
	return res[31], nil
}
