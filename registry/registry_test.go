package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bookQuote = common.HexToAddress("0x00000000000000000000000000000000000000CC")
	bookBaseA = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	bookBaseB = common.HexToAddress("0x00000000000000000000000000000000000000AB")
	bookPoolA = common.HexToAddress("0x0000000000000000000000000000000000000A01")
	bookPoolB = common.HexToAddress("0x0000000000000000000000000000000000000B01")
)

func TestMarketBook(t *testing.T) {

	t.Run("AddAndGet", func(t *testing.T) {
		b := newMarketBook()
		require.NoError(t, b.add(bookBaseA, bookPoolA, 3000))

		market, ok := b.get(bookBaseA)
		require.True(t, ok)
		assert.Equal(t, Market{BaseToken: bookBaseA, Pool: bookPoolA, FeeRatio: 3000}, market)
		assert.True(t, b.has(bookBaseA))
		assert.Equal(t, 1, b.len())
	})

	t.Run("DuplicateBaseTokenRejected", func(t *testing.T) {
		b := newMarketBook()
		require.NoError(t, b.add(bookBaseA, bookPoolA, 3000))

		// A different fee tier does not relax per-base-token uniqueness.
		err := b.add(bookBaseA, bookPoolB, 10000)
		assert.ErrorIs(t, err, ErrMarketExists)
		assert.Equal(t, 1, b.len())
	})

	t.Run("GetUnknownBaseToken", func(t *testing.T) {
		b := newMarketBook()
		market, ok := b.get(bookBaseA)
		assert.False(t, ok)
		assert.Equal(t, Market{}, market)
		assert.False(t, b.has(bookBaseA))
	})

	t.Run("SetFeeRatio", func(t *testing.T) {
		b := newMarketBook()
		require.NoError(t, b.add(bookBaseA, bookPoolA, 3000))

		require.NoError(t, b.setFeeRatio(bookBaseA, 10000))
		market, ok := b.get(bookBaseA)
		require.True(t, ok)
		assert.Equal(t, uint32(10000), market.FeeRatio)

		// Pool reference is untouched by a fee update.
		assert.Equal(t, bookPoolA, market.Pool)
	})

	t.Run("SetFeeRatioUnknownBaseToken", func(t *testing.T) {
		b := newMarketBook()
		err := b.setFeeRatio(bookBaseA, 10000)
		assert.ErrorIs(t, err, ErrMarketNotFound)
	})

	t.Run("ViewIsSnapshot", func(t *testing.T) {
		b := newMarketBook()
		require.NoError(t, b.add(bookBaseA, bookPoolA, 3000))
		require.NoError(t, b.add(bookBaseB, bookPoolB, 500))

		view := b.view(bookQuote)
		require.Len(t, view.Markets, 2)
		assert.Equal(t, bookQuote, view.QuoteToken)
		assert.Equal(t, bookBaseA, view.Markets[0].BaseToken)
		assert.Equal(t, bookBaseB, view.Markets[1].BaseToken)

		// Mutating the snapshot must not leak into the book.
		view.Markets[0].FeeRatio = 42
		market, _ := b.get(bookBaseA)
		assert.Equal(t, uint32(3000), market.FeeRatio)
	})

	t.Run("FromView", func(t *testing.T) {
		original := newMarketBook()
		require.NoError(t, original.add(bookBaseA, bookPoolA, 3000))
		require.NoError(t, original.add(bookBaseB, bookPoolB, 500))

		restored := newMarketBookFromView(original.view(bookQuote))
		require.Equal(t, 2, restored.len())

		marketA, ok := restored.get(bookBaseA)
		require.True(t, ok)
		assert.Equal(t, bookPoolA, marketA.Pool)
		assert.Equal(t, uint32(3000), marketA.FeeRatio)

		marketB, ok := restored.get(bookBaseB)
		require.True(t, ok)
		assert.Equal(t, bookPoolB, marketB.Pool)

		// The restored book enforces the same uniqueness invariant.
		assert.ErrorIs(t, restored.add(bookBaseA, bookPoolA, 3000), ErrMarketExists)
	})

	t.Run("FromNilView", func(t *testing.T) {
		restored := newMarketBookFromView(nil)
		require.NotNil(t, restored)
		assert.Equal(t, 0, restored.len())
	})
}
