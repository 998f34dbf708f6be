// Package api exposes the market registry over JSON-RPC so external
// operators and indexers can register pools and query markets.
package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/perpstate/market-registry-go/auth"
	"github.com/perpstate/market-registry-go/registry"
)

// Namespace is the JSON-RPC namespace the service is registered under.
const Namespace = "market"

// Service adapts a MarketRegistry to the go-ethereum rpc server's method
// conventions.
type Service struct {
	registry *registry.MarketRegistry
}

// NewService creates the RPC service for a registry.
func NewService(reg *registry.MarketRegistry) *Service {
	return &Service{registry: reg}
}

// Register attaches the service to an rpc server under Namespace.
func Register(server *rpc.Server, svc *Service) error {
	return server.RegisterName(Namespace, svc)
}

// AddPool registers the pool for (baseToken, quote, feeTier) and returns its
// address.
func (s *Service) AddPool(ctx context.Context, baseToken common.Address, feeTier uint32) (common.Address, error) {
	return s.registry.AddPool(ctx, baseToken, feeTier)
}

// SetFeeRatio updates a market's fee ratio. The caller address is presented
// as the capability holder and checked against the registry's authorizer.
func (s *Service) SetFeeRatio(baseToken common.Address, feeRatio uint32, caller common.Address) error {
	return s.registry.SetFeeRatio(auth.Capability{Holder: caller}, baseToken, feeRatio)
}

// GetPool returns the registered pool for baseToken, or the zero address if
// the base token is unregistered.
func (s *Service) GetPool(baseToken common.Address) common.Address {
	return s.registry.GetPool(baseToken)
}

// GetFeeRatio returns the fee ratio for baseToken, or zero if the base
// token is unregistered.
func (s *Service) GetFeeRatio(baseToken common.Address) uint32 {
	feeRatio, _ := s.registry.GetFeeRatio(baseToken)
	return feeRatio
}

// QuoteToken returns the registry's configured quote token.
func (s *Service) QuoteToken() common.Address {
	return s.registry.QuoteToken()
}

// Markets returns a snapshot of all registered markets.
func (s *Service) Markets() *registry.RegistryView {
	return s.registry.View()
}
