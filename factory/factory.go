// Package factory resolves canonical liquidity pools from a Uniswap-V3-style
// pool factory and reads their first-slot price state.
package factory

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/perpstate/market-registry-go/abi"
)

var (
	// Method signature for the pool's slot0 call, loaded from the ABI package.
	slot0Sig = abi.UniswapV3PoolABI.Methods["slot0"].ID
)

// defaultRPCTimeout bounds individual RPC calls made by the client.
const defaultRPCTimeout = 10 * time.Second

// Resolver resolves the canonical pool for an asset pair and fee tier.
// The zero address is the "no pool" sentinel, mirroring the factory contract.
type Resolver interface {
	GetPool(ctx context.Context, tokenA, tokenB common.Address, feeTier uint32) (common.Address, error)
}

// StateReader reads a pool's first-slot price state.
type StateReader interface {
	Slot0(ctx context.Context, pool common.Address) (Slot0, error)
}

// Slot0 is the subset of a pool's first storage slot the registry cares
// about. A pool with a zero starting price has not been initialized.
type Slot0 struct {
	SqrtPriceX96 *uint256.Int `json:"sqrtPriceX96"`
	Tick         int32        `json:"tick"`
}

// Initialized reports whether the pool has a valid starting price.
func (s Slot0) Initialized() bool {
	return s.SqrtPriceX96 != nil && !s.SqrtPriceX96.IsZero()
}

// Client implements Resolver and StateReader over raw eth_call against a
// configured factory contract.
type Client struct {
	factory common.Address
	caller  ethereum.ContractCaller
	timeout time.Duration
}

// NewClient creates a factory client for the given factory address.
func NewClient(factory common.Address, caller ethereum.ContractCaller) *Client {
	return &Client{
		factory: factory,
		caller:  caller,
		timeout: defaultRPCTimeout,
	}
}

// GetPool resolves the pool for (tokenA, tokenB, feeTier). The factory
// returns the same pool regardless of token order; a zero address means no
// pool exists for the pair and tier.
func (c *Client) GetPool(parentCtx context.Context, tokenA, tokenB common.Address, feeTier uint32) (common.Address, error) {
	// The fee parameter is a uint24, which the ABI encoder takes as *big.Int.
	callData, err := abi.UniswapV3FactoryABI.Pack("getPool", tokenA, tokenB, big.NewInt(int64(feeTier)))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack getPool call: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, c.timeout)
	defer cancel()

	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.factory, Data: callData}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("eth_call for getPool failed: %w", err)
	}
	// A valid address response from a view function is always 32 bytes long.
	if len(res) != 32 {
		return common.Address{}, fmt.Errorf("invalid response length for getPool: got %d bytes", len(res))
	}

	return common.BytesToAddress(res), nil
}

// Slot0 reads the pool's first storage slot.
func (c *Client) Slot0(parentCtx context.Context, pool common.Address) (Slot0, error) {
	ctx, cancel := context.WithTimeout(parentCtx, c.timeout)
	defer cancel()

	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: slot0Sig}, nil)
	if err != nil {
		return Slot0{}, fmt.Errorf("eth_call for slot0 failed: %w", err)
	}
	// slot0 returns seven values packed into seven 32-byte words.
	if len(res) != 224 {
		return Slot0{}, fmt.Errorf("invalid response length for slot0: got %d bytes", len(res))
	}

	sqrtPriceX96 := new(uint256.Int).SetBytes(res[0:32])

	// tick is an int24 sign-extended across the full second word.
	tickWord := new(big.Int).SetBytes(res[32:64])
	if tickWord.Bit(255) == 1 {
		tickWord.Sub(tickWord, new(big.Int).Lsh(big.NewInt(1), 256))
	}

	return Slot0{
		SqrtPriceX96: sqrtPriceX96,
		Tick:         int32(tickWord.Int64()),
	}, nil
}
