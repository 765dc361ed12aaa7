package tx

import (
	"bytes"
	"fmt"

	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// VerifyPayout checks that rawTx carries, in order from output 0, exactly
// the outputs BuildPayout renders for result. Extra trailing outputs such
// as change are allowed.
func VerifyPayout(rawTx []byte, result *settle.Result, params PayoutParams) error {
	if len(rawTx) == 0 {
		return fmt.Errorf("%w: empty raw transaction", ErrInvalidParams)
	}
	got, err := transaction.NewTransactionFromBytes(rawTx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	params.FeeInputs = nil
	want, err := BuildPayout(result, params)
	if err != nil {
		return err
	}
	expected, err := transaction.NewTransactionFromBytes(want.RawTx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	if len(got.Outputs) < len(expected.Outputs) {
		return fmt.Errorf("%w: have %d outputs, need at least %d",
			ErrPayoutMismatch, len(got.Outputs), len(expected.Outputs))
	}
	for i, exp := range expected.Outputs {
		out := got.Outputs[i]
		if out.LockingScript == nil || !bytes.Equal(*out.LockingScript, *exp.LockingScript) {
			return fmt.Errorf("%w: output %d pays the wrong script", ErrPayoutMismatch, i)
		}
		if out.Satoshis != exp.Satoshis {
			return fmt.Errorf("%w: output %d has %d satoshis, need %d",
				ErrPayoutMismatch, i, out.Satoshis, exp.Satoshis)
		}
	}
	return nil
}
