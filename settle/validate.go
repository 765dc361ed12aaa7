package settle

import (
	"fmt"

	"github.com/bitfsorg/fairburn-go/coin"
)

// ValidateConservation checks that a result's instructions move exactly
// the funds in bundle: for every denomination, burned + pooled +
// transferred equals the bundle total.
func ValidateConservation(bundle coin.Coins, result *Result) error {
	in, err := Aggregate(bundle)
	if err != nil {
		return err
	}

	var moved coin.Coins
	for _, ins := range result.Instructions {
		moved = append(moved, ins.Coins...)
	}
	out, err := Aggregate(moved)
	if err != nil {
		return err
	}

	if len(in) != len(out) {
		return fmt.Errorf("%w: %d denominations in, %d out", ErrConservationViolation, len(in), len(out))
	}
	for i := range in {
		if in[i].Denom != out[i].Denom || !in[i].Amount.Eq(out[i].Amount) {
			return fmt.Errorf("%w: in=%s out=%s", ErrConservationViolation, in[i], out[i])
		}
	}
	return nil
}
