package contract

import (
	"fmt"
	"slices"

	"github.com/bitfsorg/fairburn-go/feesplit"
	"go.uber.org/zap"
)

// Authorizer decides whether caller may use the privileged update path.
type Authorizer interface {
	Authorize(caller string) error
}

// StaticAuthorizer allows a fixed list of admin addresses.
type StaticAuthorizer struct {
	admins []string
}

// NewStaticAuthorizer creates an authorizer for the given admins.
func NewStaticAuthorizer(admins ...string) *StaticAuthorizer {
	return &StaticAuthorizer{admins: slices.Clone(admins)}
}

// Authorize returns ErrUnauthorized unless caller is an admin.
func (a *StaticAuthorizer) Authorize(caller string) error {
	if caller == "" || !slices.Contains(a.admins, caller) {
		return fmt.Errorf("%w: %q", ErrUnauthorized, caller)
	}
	return nil
}

// Gate guards the privileged update path: it authorizes the caller and
// bounds-checks the new rate before delegating to the Contract.
type Gate struct {
	contract *Contract
	auth     Authorizer
}

// NewGate wraps contract with auth.
func NewGate(contract *Contract, auth Authorizer) *Gate {
	return &Gate{contract: contract, auth: auth}
}

// UpdateFeeRate applies msg on behalf of caller.
func (g *Gate) UpdateFeeRate(caller string, msg UpdateFeeRateMsg) (*Response, error) {
	if err := g.auth.Authorize(caller); err != nil {
		g.contract.log.Warn("fee update refused", zap.String("caller", caller))
		return nil, err
	}
	if msg.FeeBps != nil {
		if err := feesplit.RateFromBasisPoints(*msg.FeeBps).Validate(); err != nil {
			return nil, err
		}
	}
	return g.contract.UpdateFeeRate(msg)
}

// Sudo dispatches a decoded SudoMsg on behalf of caller.
func (g *Gate) Sudo(caller string, msg *SudoMsg) (*Response, error) {
	if msg == nil || msg.UpdateConfig == nil {
		return nil, fmt.Errorf("%w: no sudo variant", ErrInvalidMsg)
	}
	return g.UpdateFeeRate(caller, *msg.UpdateConfig)
}
