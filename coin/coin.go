// Package coin defines the denominated amounts that flow through a
// settlement: a single Coin, an ordered Coins list, and their text form
// "<amount><denom>" (for example "11uatom").
//
// Amounts are unsigned and bounded to 128 bits. They are carried as
// uint256 values so fee arithmetic (amount * rate numerator) never overflows.
package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
)

// MaxAmount is the largest amount a coin or a per-denomination sum may hold (2^128 - 1).
var MaxAmount = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

var (
	denomPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]{2,127}$`)
	coinPattern  = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)
)

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount *uint256.Int `json:"amount"`
}

// New creates a coin from a uint64 amount.
func New(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

// NewFromInt creates a coin holding a copy of amount.
func NewFromInt(amount *uint256.Int, denom string) Coin {
	if amount == nil {
		return Coin{Denom: denom, Amount: new(uint256.Int)}
	}
	return Coin{Denom: denom, Amount: amount.Clone()}
}

// String renders the coin as "<amount><denom>".
func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.Dec() + c.Denom
}

type coinJSON struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// MarshalJSON encodes the amount as a decimal string, e.g.
// {"denom":"uatom","amount":"11"}.
func (c Coin) MarshalJSON() ([]byte, error) {
	amount := "0"
	if c.Amount != nil {
		amount = c.Amount.Dec()
	}
	return json.Marshal(coinJSON{Denom: c.Denom, Amount: amount})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (c *Coin) UnmarshalJSON(data []byte) error {
	var raw coinJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := uint256.FromDecimal(raw.Amount)
	if err != nil {
		return fmt.Errorf("%w: amount %q: %w", ErrInvalidCoin, raw.Amount, err)
	}
	*c = Coin{Denom: raw.Denom, Amount: amount}
	return nil
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == nil || c.Amount.IsZero()
}

// Validate checks the denomination and that the amount fits in 128 bits.
// Zero amounts are valid here; settlement rejects them after aggregation.
func (c Coin) Validate() error {
	if err := ValidateDenom(c.Denom); err != nil {
		return err
	}
	if c.Amount == nil {
		return fmt.Errorf("%w: %s", ErrNilAmount, c.Denom)
	}
	if c.Amount.Gt(MaxAmount) {
		return fmt.Errorf("%w: %s", ErrAmountOverflow, c.String())
	}
	return nil
}

// ValidateDenom checks a denomination string.
func ValidateDenom(denom string) error {
	if !denomPattern.MatchString(denom) {
		return fmt.Errorf("%w: %q", ErrInvalidDenom, denom)
	}
	return nil
}

// Parse parses a single "<amount><denom>" string.
func Parse(s string) (Coin, error) {
	s = strings.TrimSpace(s)
	m := coinPattern.FindStringSubmatch(s)
	if m == nil {
		return Coin{}, fmt.Errorf("%w: %q", ErrInvalidCoin, s)
	}
	amount, err := uint256.FromDecimal(m[1])
	if err != nil {
		return Coin{}, fmt.Errorf("%w: %q: %w", ErrInvalidCoin, s, err)
	}
	c := Coin{Denom: m[2], Amount: amount}
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

// Coins is an ordered list of coins. Duplicated denominations are allowed.
type Coins []Coin

// ParseCoins parses a comma-separated list such as "11sat,5uatom".
// An empty string yields an empty list.
func ParseCoins(s string) (Coins, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coins{}, nil
	}
	parts := strings.Split(s, ",")
	coins := make(Coins, 0, len(parts))
	for i, part := range parts {
		c, err := Parse(part)
		if err != nil {
			return nil, fmt.Errorf("coin[%d]: %w", i, err)
		}
		coins = append(coins, c)
	}
	return coins, nil
}

// String renders the list comma-separated in its current order.
func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Clone returns a deep copy of the list.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	out := make(Coins, len(cs))
	for i, c := range cs {
		out[i] = NewFromInt(c.Amount, c.Denom)
	}
	return out
}

// AmountOf returns the summed amount of denom across the list.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	total := new(uint256.Int)
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			total.Add(total, c.Amount)
		}
	}
	return total
}

// Add returns a+b, failing when the result exceeds MaxAmount.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(MaxAmount) {
		return nil, ErrAmountOverflow
	}
	return sum, nil
}
