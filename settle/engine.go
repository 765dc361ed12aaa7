// Package settle splits an inbound multi-denomination payment into a
// protocol fee and a remainder and turns the split into a minimal,
// deterministic set of ledger instructions and accounting events.
//
// Routing rules:
//
//	native denom, no recipient:   burn fee, remainder -> pool
//	native denom, recipient:      burn fee, remainder -> recipient
//	other denom,  no recipient:   whole amount -> pool (no split)
//	other denom,  recipient:      fee -> pool, remainder -> recipient
//
// Each destination receives at most one instruction.
package settle

import (
	"fmt"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/feesplit"
)

// DefaultPoolKey is the accumulator key used for the protocol pool
// when Params.PoolKey is empty.
const DefaultPoolKey = "fair-burn-pool"

// Params are the host constants the engine routes against.
type Params struct {
	// NativeDenom is the chain's burnable base denomination.
	NativeDenom string
	// PoolKey identifies the protocol pool destination. It must not be a
	// valid recipient address.
	PoolKey string
}

// Engine computes settlements. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	params Params
}

// NewEngine validates params and returns an Engine.
func NewEngine(params Params) (*Engine, error) {
	if err := coin.ValidateDenom(params.NativeDenom); err != nil {
		return nil, fmt.Errorf("%w: native denom: %w", ErrInvalidParams, err)
	}
	if params.PoolKey == "" {
		params.PoolKey = DefaultPoolKey
	}
	return &Engine{params: params}, nil
}

// Params returns the engine's routing constants.
func (e *Engine) Params() Params { return e.params }

// Settle computes the instructions and events for one payment bundle.
// An empty recipient routes remainders to the protocol pool.
//
// Validation happens before anything is built: a failed call returns no
// partial result.
func (e *Engine) Settle(bundle coin.Coins, recipient string, rate feesplit.Rate) (*Result, error) {
	if len(bundle) == 0 {
		return nil, ErrEmptyInput
	}
	if err := rate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRate, err)
	}
	if recipient == e.params.PoolKey {
		return nil, fmt.Errorf("%w: %q is reserved for the protocol pool", ErrInvalidRecipient, recipient)
	}

	aggregated, err := Aggregate(bundle)
	if err != nil {
		return nil, err
	}
	for _, c := range aggregated {
		if c.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrZeroAmount, c.Denom)
		}
	}

	result := &Result{}
	acc := newPayouts()
	poolKey := e.params.PoolKey

	for _, c := range aggregated {
		if c.Denom == e.params.NativeDenom {
			event := e.settleNative(c, recipient, rate, result, acc)
			result.Events = append(result.Events, event)
			continue
		}

		if recipient == "" {
			acc.add(poolKey, c)
			continue
		}
		fee, rest := feesplit.Split(c.Amount, rate)
		acc.add(poolKey, coin.Coin{Denom: c.Denom, Amount: fee})
		if rest != nil {
			acc.add(recipient, coin.Coin{Denom: c.Denom, Amount: rest})
		}
	}

	for _, dest := range acc.destinations() {
		funds := acc.byDest[dest]
		if dest == poolKey {
			event := NewEvent(EventFundPool)
			for i, c := range funds {
				event = event.Add(fmt.Sprintf("coin_%d", i), c.String())
			}
			result.Instructions = append(result.Instructions, Instruction{Kind: InstructionFundPool, Coins: funds})
			result.Events = append(result.Events, event)
			continue
		}
		result.Instructions = append(result.Instructions, Instruction{Kind: InstructionTransfer, To: dest, Coins: funds})
	}

	return result, nil
}

// settleNative burns the fee portion of the native aggregate and routes
// the remainder. The returned event discloses the burn and, when the
// remainder stays with the pool, the pool-bound amount.
func (e *Engine) settleNative(c coin.Coin, recipient string, rate feesplit.Rate, result *Result, acc *payouts) Event {
	fee, rest := feesplit.Split(c.Amount, rate)

	event := NewEvent(EventFairBurn).Add(AttrBurnAmount, fee.Dec())
	result.Instructions = append(result.Instructions, Instruction{
		Kind:  InstructionBurn,
		Coins: coin.Coins{{Denom: c.Denom, Amount: fee}},
	})

	if rest == nil {
		return event
	}
	if recipient != "" {
		acc.add(recipient, coin.Coin{Denom: c.Denom, Amount: rest})
		return event
	}
	acc.add(e.params.PoolKey, coin.Coin{Denom: c.Denom, Amount: rest})
	return event.Add(AttrDistAmount, rest.Dec())
}
