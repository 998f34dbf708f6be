package registry

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/perpstate/market-registry-go/auth"
	"github.com/perpstate/market-registry-go/events"
	"github.com/perpstate/market-registry-go/factory"
	"github.com/perpstate/market-registry-go/vault"
)

// Logger defines a standard interface for structured, leveled logging,
// compatible with the standard library's slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the addresses and collaborators for a MarketRegistry.
// The three addresses are fixed for the registry's lifetime.
type Config struct {
	// ClearingHouse custodies base-token collateral; its balance of a
	// candidate base token is checked during registration.
	ClearingHouse common.Address
	// Factory is the pool factory contract the registry resolves pools from.
	Factory common.Address
	// QuoteToken is the quote side of every registered pair. Base tokens
	// must order strictly below it.
	QuoteToken common.Address

	// MinCustodyBalance is the minimum clearing house balance of a base
	// token required for registration, in whole tokens. It is scaled by the
	// token's vault-reported decimals at check time.
	MinCustodyBalance *big.Int

	IsContract vault.CodeChecker
	Balances   vault.BalanceReader
	Pools      factory.Resolver
	PoolState  factory.StateReader
	Authorizer auth.Authorizer
	Notifier   *events.Notifier

	Logger        Logger
	PrometheusReg prometheus.Registerer
}

// validate checks that all essential fields in the Config are provided.
func (c *Config) validate() error {
	if c.MinCustodyBalance == nil {
		return errors.New("config: MinCustodyBalance is required")
	}
	if c.IsContract == nil {
		return errors.New("config: IsContract checker is required")
	}
	if c.Balances == nil {
		return errors.New("config: Balances reader is required")
	}
	if c.Pools == nil {
		return errors.New("config: Pools resolver is required")
	}
	if c.PoolState == nil {
		return errors.New("config: PoolState reader is required")
	}
	if c.Authorizer == nil {
		return errors.New("config: Authorizer is required")
	}
	if c.Notifier == nil {
		return errors.New("config: Notifier is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	if c.PrometheusReg == nil {
		return errors.New("config: PrometheusReg is required")
	}
	return nil
}

// MarketRegistry is the concurrency-safe registry of perp markets. Writes
// take an exclusive lock; View reads are lock-free against a cached snapshot.
type MarketRegistry struct {
	clearingHouse common.Address
	factoryAddr   common.Address
	quoteToken    common.Address

	minCustodyBalance *big.Int

	isContract vault.CodeChecker
	balances   vault.BalanceReader
	pools      factory.Resolver
	poolState  factory.StateReader
	authorizer auth.Authorizer
	notifier   *events.Notifier

	logger  Logger
	metrics *Metrics

	mu         sync.RWMutex
	book       *marketBook
	cachedView atomic.Pointer[RegistryView]
}

// NewMarketRegistry is the registry's one-time construction step. Besides
// the usual config validation it verifies, in order, that the clearing
// house, factory and quote token addresses all host contract code.
func NewMarketRegistry(ctx context.Context, cfg Config) (*MarketRegistry, error) {
	return newMarketRegistry(ctx, cfg, newMarketBook())
}

// NewMarketRegistryFromView restores a registry from a snapshot view. The
// same construction-time address checks apply.
func NewMarketRegistryFromView(ctx context.Context, cfg Config, view *RegistryView) (*MarketRegistry, error) {
	return newMarketRegistry(ctx, cfg, newMarketBookFromView(view))
}

func newMarketRegistry(ctx context.Context, cfg Config, book *marketBook) (*MarketRegistry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for _, check := range []struct {
		addr common.Address
		err  error
	}{
		{cfg.ClearingHouse, ErrInvalidClearingHouse},
		{cfg.Factory, ErrInvalidFactory},
		{cfg.QuoteToken, ErrInvalidQuoteToken},
	} {
		ok, err := cfg.IsContract(ctx, check.addr)
		if err != nil {
			return nil, &DependencyError{Dependency: "isContract", Input: check.addr, Err: err}
		}
		if !ok {
			return nil, check.err
		}
	}

	r := &MarketRegistry{
		clearingHouse:     cfg.ClearingHouse,
		factoryAddr:       cfg.Factory,
		quoteToken:        cfg.QuoteToken,
		minCustodyBalance: new(big.Int).Set(cfg.MinCustodyBalance),
		isContract:        cfg.IsContract,
		balances:          cfg.Balances,
		pools:             cfg.Pools,
		poolState:         cfg.PoolState,
		authorizer:        cfg.Authorizer,
		notifier:          cfg.Notifier,
		logger:            cfg.Logger,
		metrics:           NewMetrics(cfg.PrometheusReg),
		book:              book,
	}
	r.cachedView.Store(r.book.view(r.quoteToken))
	r.metrics.MarketsInRegistry.WithLabelValues().Set(float64(r.book.len()))

	return r, nil
}

// QuoteToken returns the registry's configured quote token.
func (r *MarketRegistry) QuoteToken() common.Address {
	return r.quoteToken
}

// AddPool registers the pool for (baseToken, quoteToken, feeTier) and
// returns its address. Preconditions are checked in a fixed order and the
// first failure aborts the call with no state change:
//
//  1. baseToken hosts contract code, else ErrBaseTokenNotContract
//  2. the factory has a pool for the pair and tier (ErrPoolNotFound) and it
//     has a starting price (ErrPoolNotInitialized)
//  3. baseToken is not already registered, else ErrMarketExists
//  4. baseToken orders strictly below the quote token, else ErrInvalidBaseToken
//  5. the clearing house custodies at least the configured minimum of
//     baseToken, else ErrInsufficientBalance
func (r *MarketRegistry) AddPool(ctx context.Context, baseToken common.Address, feeTier uint32) (common.Address, error) {
	timer := prometheus.NewTimer(r.metrics.AddPoolDuration.WithLabelValues())
	defer timer.ObserveDuration()

	pool, err := r.addPool(ctx, baseToken, feeTier)
	if err != nil {
		r.metrics.AddPoolTotal.WithLabelValues("error").Inc()
		return common.Address{}, err
	}

	r.metrics.AddPoolTotal.WithLabelValues("ok").Inc()
	r.metrics.MarketsInRegistry.WithLabelValues().Set(float64(r.Len()))
	return pool, nil
}

func (r *MarketRegistry) addPool(ctx context.Context, baseToken common.Address, feeTier uint32) (common.Address, error) {
	// 1. The base token must be a deployed contract.
	ok, err := r.isContract(ctx, baseToken)
	if err != nil {
		return common.Address{}, &DependencyError{Dependency: "isContract", Input: baseToken, Err: err}
	}
	if !ok {
		return common.Address{}, ErrBaseTokenNotContract
	}

	// 2. The factory must already have an initialized pool for the pair.
	pool, err := r.pools.GetPool(ctx, baseToken, r.quoteToken, feeTier)
	if err != nil {
		return common.Address{}, &DependencyError{Dependency: "factory.GetPool", Input: baseToken, Err: err}
	}
	if pool == (common.Address{}) {
		return common.Address{}, ErrPoolNotFound
	}
	slot0, err := r.poolState.Slot0(ctx, pool)
	if err != nil {
		return common.Address{}, &DependencyError{Dependency: "factory.Slot0", Input: pool, Err: err}
	}
	if !slot0.Initialized() {
		return common.Address{}, ErrPoolNotInitialized
	}

	// 3. Uniqueness is per base token, independent of fee tier. This early
	// check fixes the precondition order; the insert below re-checks under
	// the write lock.
	if r.HasMarket(baseToken) {
		return common.Address{}, ErrMarketExists
	}

	// 4. Canonical pair ordering: base strictly below quote.
	if bytes.Compare(baseToken.Bytes(), r.quoteToken.Bytes()) >= 0 {
		return common.Address{}, ErrInvalidBaseToken
	}

	// 5. The clearing house must custody enough of the base token.
	balance, err := r.balances.BalanceOf(ctx, baseToken, r.clearingHouse)
	if err != nil {
		return common.Address{}, &DependencyError{Dependency: "vault.BalanceOf", Input: baseToken, Err: err}
	}
	decimals, err := r.balances.Decimals(ctx, baseToken)
	if err != nil {
		return common.Address{}, &DependencyError{Dependency: "vault.Decimals", Input: baseToken, Err: err}
	}
	minBalance := new(big.Int).Mul(
		r.minCustodyBalance,
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil),
	)
	if balance.Cmp(minBalance) < 0 {
		return common.Address{}, ErrInsufficientBalance
	}

	r.mu.Lock()
	if err := r.book.add(baseToken, pool, feeTier); err != nil {
		r.mu.Unlock()
		return common.Address{}, err
	}
	r.updateCachedView()
	r.mu.Unlock()

	dropped := r.notifier.Publish(events.PoolAdded{
		BaseToken: baseToken,
		FeeTier:   feeTier,
		Pool:      pool,
		At:        time.Now(),
	})
	if dropped > 0 {
		r.metrics.EventsDropped.WithLabelValues().Add(float64(dropped))
		r.logger.Warn("pool added notification dropped for slow subscribers",
			"base_token", baseToken.Hex(), "dropped", dropped)
	}

	r.logger.Info("market registered",
		"base_token", baseToken.Hex(), "pool", pool.Hex(), "fee_tier", feeTier)

	return pool, nil
}

// SetFeeRatio updates a registered market's fee ratio. The capability must
// grant owner access; the market must exist; the ratio must not exceed
// MaxFeeRatio.
func (r *MarketRegistry) SetFeeRatio(capability auth.Capability, baseToken common.Address, feeRatio uint32) error {
	if err := r.setFeeRatio(capability, baseToken, feeRatio); err != nil {
		r.metrics.FeeRatioUpdates.WithLabelValues("error").Inc()
		return err
	}
	r.metrics.FeeRatioUpdates.WithLabelValues("ok").Inc()
	return nil
}

func (r *MarketRegistry) setFeeRatio(capability auth.Capability, baseToken common.Address, feeRatio uint32) error {
	if err := r.authorizer.Authorize(capability); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.book.has(baseToken) {
		return ErrMarketNotFound
	}
	if feeRatio > MaxFeeRatio {
		return ErrFeeRatioOverflow
	}
	if err := r.book.setFeeRatio(baseToken, feeRatio); err != nil {
		return err
	}
	r.updateCachedView()

	r.logger.Info("fee ratio updated", "base_token", baseToken.Hex(), "fee_ratio", feeRatio)
	return nil
}

// GetPool returns the registered pool for baseToken, or the zero address if
// the base token is unregistered.
func (r *MarketRegistry) GetPool(baseToken common.Address) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	market, ok := r.book.get(baseToken)
	if !ok {
		return common.Address{}
	}
	return market.Pool
}

// GetFeeRatio returns the fee ratio for baseToken. The second return value
// reports whether the base token is registered.
func (r *MarketRegistry) GetFeeRatio(baseToken common.Address) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	market, ok := r.book.get(baseToken)
	return market.FeeRatio, ok
}

// GetMarket returns the full market entry for baseToken.
func (r *MarketRegistry) GetMarket(baseToken common.Address) (Market, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.get(baseToken)
}

// HasMarket reports whether baseToken is registered.
func (r *MarketRegistry) HasMarket(baseToken common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.has(baseToken)
}

// Len returns the number of registered markets.
func (r *MarketRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.len()
}

// View returns a snapshot of the registry. The read is lock-free against
// the cached view; the returned copy is the caller's to mutate.
func (r *MarketRegistry) View() *RegistryView {
	cached := r.cachedView.Load()
	if cached == nil {
		return &RegistryView{QuoteToken: r.quoteToken}
	}

	marketsCopy := make([]Market, len(cached.Markets))
	copy(marketsCopy, cached.Markets)

	return &RegistryView{
		QuoteToken: cached.QuoteToken,
		Markets:    marketsCopy,
	}
}

// updateCachedView generates a fresh snapshot and atomically swaps it in.
// This method MUST be called from within a write lock (r.mu.Lock).
func (r *MarketRegistry) updateCachedView() {
	r.cachedView.Store(r.book.view(r.quoteToken))
}
