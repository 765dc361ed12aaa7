package settle

import (
	"github.com/bitfsorg/fairburn-go/coin"
)

// InstructionKind identifies the ledger primitive an Instruction maps to.
type InstructionKind uint8

const (
	// InstructionBurn removes coins from circulating supply.
	InstructionBurn InstructionKind = iota + 1
	// InstructionFundPool credits coins to the protocol pool.
	InstructionFundPool
	// InstructionTransfer sends coins to a concrete address.
	InstructionTransfer
)

// String returns the wire name of the instruction kind.
func (k InstructionKind) String() string {
	switch k {
	case InstructionBurn:
		return "burn"
	case InstructionFundPool:
		return "fund-pool"
	case InstructionTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k InstructionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Instruction is an opaque ledger operation produced by the engine.
// The engine never executes instructions; the host does.
type Instruction struct {
	Kind  InstructionKind `json:"kind"`
	To    string          `json:"to,omitempty"` // set for InstructionTransfer only
	Coins coin.Coins      `json:"coins"`
}

// Event and attribute names emitted by the engine.
const (
	EventFairBurn = "fair-burn"
	EventFundPool = "fund-fair-burn-pool"

	AttrBurnAmount = "burn_amount"
	AttrDistAmount = "dist_amount"
)

// Attribute is a key/value pair attached to an Event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an accounting disclosure mirroring computed amounts.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// NewEvent creates an event with no attributes.
func NewEvent(typ string) Event {
	return Event{Type: typ}
}

// Add returns the event with one more attribute appended.
func (e Event) Add(key, value string) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// Attribute returns the first value stored under key.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Result is the output of one settlement: instructions in execution order
// and the events disclosing them.
type Result struct {
	Instructions []Instruction `json:"instructions"`
	Events       []Event       `json:"events"`
}

// FindEvent returns the first event of the given type.
func (r *Result) FindEvent(typ string) (Event, bool) {
	for _, e := range r.Events {
		if e.Type == typ {
			return e, true
		}
	}
	return Event{}, false
}

// Burned returns every coin in burn instructions.
func (r *Result) Burned() coin.Coins { return r.collect(InstructionBurn) }

// Pooled returns every coin routed to the protocol pool.
func (r *Result) Pooled() coin.Coins { return r.collect(InstructionFundPool) }

// Transferred returns every coin sent to concrete addresses.
func (r *Result) Transferred() coin.Coins { return r.collect(InstructionTransfer) }

func (r *Result) collect(kind InstructionKind) coin.Coins {
	var out coin.Coins
	for _, in := range r.Instructions {
		if in.Kind == kind {
			out = append(out, in.Coins...)
		}
	}
	return out
}
