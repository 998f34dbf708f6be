// Package abi holds the parsed contract ABIs the registry's collaborators
// are queried through. Loading method IDs from parsed ABIs is safer and more
// maintainable than hardcoding selector hashes.
package abi

import (
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

const uniswapV3FactoryABIJSON = `[
  {
    "inputs": [
      { "internalType": "address", "name": "tokenA", "type": "address" },
      { "internalType": "address", "name": "tokenB", "type": "address" },
      { "internalType": "uint24",  "name": "fee",    "type": "uint24" }
    ],
    "name": "getPool",
    "outputs": [
      { "internalType": "address", "name": "pool", "type": "address" }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const uniswapV3PoolABIJSON = `[
  {
    "inputs": [],
    "name": "slot0",
    "outputs": [
      { "internalType": "uint160", "name": "sqrtPriceX96",               "type": "uint160" },
      { "internalType": "int24",   "name": "tick",                       "type": "int24" },
      { "internalType": "uint16",  "name": "observationIndex",           "type": "uint16" },
      { "internalType": "uint16",  "name": "observationCardinality",     "type": "uint16" },
      { "internalType": "uint16",  "name": "observationCardinalityNext", "type": "uint16" },
      { "internalType": "uint8",   "name": "feeProtocol",                "type": "uint8" },
      { "internalType": "bool",    "name": "unlocked",                   "type": "bool" }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const vaultABIJSON = `[
  {
    "inputs": [
      { "internalType": "address", "name": "account", "type": "address" }
    ],
    "name": "balanceOf",
    "outputs": [
      { "internalType": "uint256", "name": "", "type": "uint256" }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "decimals",
    "outputs": [
      { "internalType": "uint8", "name": "", "type": "uint8" }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	UniswapV3FactoryABI = mustParse(uniswapV3FactoryABIJSON)
	UniswapV3PoolABI    = mustParse(uniswapV3PoolABIJSON)
	VaultABI            = mustParse(vaultABIJSON)
)

func mustParse(raw string) ethabi.ABI {
	parsed, err := ethabi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
