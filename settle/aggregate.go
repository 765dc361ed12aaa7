package settle

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/holiman/uint256"
)

// Aggregate sums a bundle by denomination and returns one coin per
// denomination in lexicographic denom order. Zero aggregates are kept;
// the caller decides whether they are acceptable.
func Aggregate(bundle coin.Coins) (coin.Coins, error) {
	sums := make(map[string]*uint256.Int, len(bundle))
	for i, c := range bundle {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("funds[%d]: %w", i, err)
		}
		prev, ok := sums[c.Denom]
		if !ok {
			sums[c.Denom] = c.Amount.Clone()
			continue
		}
		sum, err := coin.Add(prev, c.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: aggregate of %s", err, c.Denom)
		}
		sums[c.Denom] = sum
	}

	out := make(coin.Coins, 0, len(sums))
	for _, denom := range slices.Sorted(maps.Keys(sums)) {
		out = append(out, coin.Coin{Denom: denom, Amount: sums[denom]})
	}
	return out, nil
}

// payouts accumulates coins per destination. Destinations are flushed in
// lexicographic order; coins keep the order they were added in.
type payouts struct {
	byDest map[string]coin.Coins
}

func newPayouts() *payouts {
	return &payouts{byDest: make(map[string]coin.Coins)}
}

func (p *payouts) add(dest string, c coin.Coin) {
	p.byDest[dest] = append(p.byDest[dest], c)
}

func (p *payouts) destinations() []string {
	return slices.Sorted(maps.Keys(p.byDest))
}
