package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClearingHouse is returned by the constructor when the
	// configured clearing house address is zero or hosts no contract code.
	ErrInvalidClearingHouse = errors.New("clearing house address is not a contract")
	// ErrInvalidFactory is returned by the constructor when the configured
	// pool factory address is zero or hosts no contract code.
	ErrInvalidFactory = errors.New("factory address is not a contract")
	// ErrInvalidQuoteToken is returned by the constructor when the configured
	// quote token address is zero or hosts no contract code.
	ErrInvalidQuoteToken = errors.New("quote token address is not a contract")

	// ErrBaseTokenNotContract is returned when the base token being
	// registered does not host contract code.
	ErrBaseTokenNotContract = errors.New("base token address is not a contract")
	// ErrPoolNotFound is returned when the factory has no pool for the pair
	// and fee tier.
	ErrPoolNotFound = errors.New("factory has no pool for this pair and fee tier")
	// ErrPoolNotInitialized is returned when the resolved pool exists but has
	// no starting price.
	ErrPoolNotInitialized = errors.New("pool has no initial price state")
	// ErrMarketExists is returned when the base token is already registered,
	// regardless of fee tier.
	ErrMarketExists = errors.New("market already exists for base token")
	// ErrInvalidBaseToken is returned when the base token does not order
	// strictly below the quote token, breaking the canonical pair ordering.
	ErrInvalidBaseToken = errors.New("base token must order below the quote token")
	// ErrInsufficientBalance is returned when the clearing house custodies
	// less of the base token than the configured minimum.
	ErrInsufficientBalance = errors.New("clearing house custody balance below minimum")

	// ErrMarketNotFound is returned when an operation references a base token
	// that has never been registered.
	ErrMarketNotFound = errors.New("market not found for base token")
	// ErrFeeRatioOverflow is returned when a fee ratio exceeds MaxFeeRatio.
	ErrFeeRatioOverflow = errors.New("fee ratio exceeds the maximum encodable ratio")
)

// DependencyError is returned when a collaborator the registry queries
// (factory, vault, code checker) fails. The registration is aborted with no
// state change; the caller decides whether to retry.
type DependencyError struct {
	// Dependency is the name of the collaborator call that failed.
	Dependency string
	// Input is the value that was passed to the failing collaborator.
	Input any
	// Err is the underlying error returned by the collaborator.
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("registry dependency '%s' failed for input '%v': %v", e.Dependency, e.Input, e.Err)
}

// Unwrap allows the error to be inspected with errors.Is and errors.As.
func (e *DependencyError) Unwrap() error {
	return e.Err
}
