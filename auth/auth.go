// Package auth gates mutating registry calls behind an explicit capability
// value instead of an ambient global owner. Callers present the capability
// with every privileged call and the configured Authorizer decides.
package auth

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnauthorized is returned when a presented capability does not grant the
// requested operation.
var ErrUnauthorized = errors.New("capability does not grant this operation")

// Capability identifies the party attempting a privileged operation.
type Capability struct {
	Holder common.Address
}

// Authorizer decides whether a capability grants privileged access.
type Authorizer interface {
	Authorize(capability Capability) error
}

// OwnerAuthorizer grants access to exactly one owner identity.
type OwnerAuthorizer struct {
	owner common.Address
}

// NewOwnerAuthorizer creates an authorizer bound to the given owner address.
func NewOwnerAuthorizer(owner common.Address) *OwnerAuthorizer {
	return &OwnerAuthorizer{owner: owner}
}

// Authorize returns ErrUnauthorized unless the capability holder is the owner.
func (a *OwnerAuthorizer) Authorize(capability Capability) error {
	if capability.Holder != a.owner {
		return ErrUnauthorized
	}
	return nil
}
