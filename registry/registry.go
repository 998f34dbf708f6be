// Package registry owns the mapping from a perp protocol's base tokens to
// their liquidity pools and fee ratios. The marketBook in this file is the
// plain, non-thread-safe data structure; MarketRegistry in system.go layers
// collaborator checks and concurrency safety on top of it.
package registry

import "github.com/ethereum/go-ethereum/common"

// MaxFeeRatio is the largest encodable fee ratio in parts per million (100%).
const MaxFeeRatio uint32 = 1_000_000

// Market is the registered state for a single base token.
type Market struct {
	BaseToken common.Address `json:"baseToken"`
	Pool      common.Address `json:"pool"`
	FeeRatio  uint32         `json:"feeRatio"` // parts per million, i.e. 3000 for 0.3%
}

// RegistryView is a complete snapshot of the registry's state, ordered by
// registration time.
type RegistryView struct {
	QuoteToken common.Address `json:"quoteToken"`
	Markets    []Market       `json:"markets"`
}

// marketBook stores registered markets in parallel slices with a lookup map,
// keyed uniquely by base token. Markets are never removed.
type marketBook struct {
	baseTokens []common.Address
	pools      []common.Address
	feeRatios  []uint32

	baseToIndex map[common.Address]int
}

func newMarketBook() *marketBook {
	return &marketBook{
		baseToIndex: make(map[common.Address]int),
	}
}

// newMarketBookFromView reconstructs a marketBook from a snapshot. This is
// the mechanism for restoring the registry's state. All memory is
// pre-allocated to the final size and copied, so the book has full ownership.
func newMarketBookFromView(view *RegistryView) *marketBook {
	if view == nil || len(view.Markets) == 0 {
		return newMarketBook()
	}

	numMarkets := len(view.Markets)
	book := &marketBook{
		baseTokens:  make([]common.Address, numMarkets),
		pools:       make([]common.Address, numMarkets),
		feeRatios:   make([]uint32, numMarkets),
		baseToIndex: make(map[common.Address]int, numMarkets),
	}

	for i, market := range view.Markets {
		book.baseTokens[i] = market.BaseToken
		book.pools[i] = market.Pool
		book.feeRatios[i] = market.FeeRatio
		book.baseToIndex[market.BaseToken] = i
	}

	return book
}

// add registers a market. Uniqueness is per base token alone: a second add
// for the same base token fails even with a different fee ratio.
func (b *marketBook) add(baseToken, pool common.Address, feeRatio uint32) error {
	if _, ok := b.baseToIndex[baseToken]; ok {
		return ErrMarketExists
	}

	b.baseTokens = append(b.baseTokens, baseToken)
	b.pools = append(b.pools, pool)
	b.feeRatios = append(b.feeRatios, feeRatio)
	b.baseToIndex[baseToken] = len(b.baseTokens) - 1

	return nil
}

// setFeeRatio mutates an existing market's fee ratio in place.
func (b *marketBook) setFeeRatio(baseToken common.Address, feeRatio uint32) error {
	index, ok := b.baseToIndex[baseToken]
	if !ok {
		return ErrMarketNotFound
	}

	b.feeRatios[index] = feeRatio
	return nil
}

func (b *marketBook) get(baseToken common.Address) (Market, bool) {
	index, ok := b.baseToIndex[baseToken]
	if !ok {
		return Market{}, false
	}

	return Market{
		BaseToken: b.baseTokens[index],
		Pool:      b.pools[index],
		FeeRatio:  b.feeRatios[index],
	}, true
}

func (b *marketBook) has(baseToken common.Address) bool {
	_, ok := b.baseToIndex[baseToken]
	return ok
}

func (b *marketBook) len() int {
	return len(b.baseTokens)
}

// view produces a snapshot of the book. The returned slices are fresh
// allocations; mutating them cannot affect the book.
func (b *marketBook) view(quoteToken common.Address) *RegistryView {
	markets := make([]Market, len(b.baseTokens))
	for i := range b.baseTokens {
		markets[i] = Market{
			BaseToken: b.baseTokens[i],
			Pool:      b.pools[i],
			FeeRatio:  b.feeRatios[i],
		}
	}

	return &RegistryView{
		QuoteToken: quoteToken,
		Markets:    markets,
	}
}
