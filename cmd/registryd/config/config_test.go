package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfigYAML = `
rpcUrl: "ws://localhost:8546"
listenAddr: ":8080"
clearingHouse: "0x0000000000000000000000000000000000000C50"
factory: "0x0000000000000000000000000000000000000F50"
quoteToken: "0x00000000000000000000000000000000000000CC"
owner: "0x0000000000000000000000000000000000000E50"
minCustodyBalance: 100
eventBufferSize: 32
`

func TestLoadConfig(t *testing.T) {

	t.Run("Valid", func(t *testing.T) {
		cfg, err := LoadConfig(writeTestConfig(t, validConfigYAML))
		require.NoError(t, err)

		assert.Equal(t, "ws://localhost:8546", cfg.RPCURL)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, common.HexToAddress("0xC50"), cfg.ClearingHouseAddress())
		assert.Equal(t, common.HexToAddress("0xF50"), cfg.FactoryAddress())
		assert.Equal(t, common.HexToAddress("0xCC"), cfg.QuoteTokenAddress())
		assert.Equal(t, common.HexToAddress("0xE50"), cfg.OwnerAddress())
		assert.Equal(t, uint64(100), cfg.MinCustodyBalanceTokens().Uint64())
		assert.Equal(t, uint(32), cfg.EventBufferSize)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		_, err := LoadConfig(writeTestConfig(t, "rpcUrl: [unclosed"))
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("MissingRPCURL", func(t *testing.T) {
		_, err := LoadConfig(writeTestConfig(t, `
listenAddr: ":8080"
clearingHouse: "0x0000000000000000000000000000000000000C50"
factory: "0x0000000000000000000000000000000000000F50"
quoteToken: "0x00000000000000000000000000000000000000CC"
owner: "0x0000000000000000000000000000000000000E50"
`))
		assert.ErrorContains(t, err, "rpcUrl is required")
	})

	t.Run("BadAddress", func(t *testing.T) {
		_, err := LoadConfig(writeTestConfig(t, `
rpcUrl: "ws://localhost:8546"
listenAddr: ":8080"
clearingHouse: "not-an-address"
factory: "0x0000000000000000000000000000000000000F50"
quoteToken: "0x00000000000000000000000000000000000000CC"
owner: "0x0000000000000000000000000000000000000E50"
`))
		assert.ErrorContains(t, err, "clearingHouse")
	})
}
