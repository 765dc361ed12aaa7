package tx

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// SignPayout signs every input of a funded payout with the private keys of
// its fee inputs and updates RawTx, Hex and TxID in place.
func SignPayout(p *Payout) error {
	if p == nil {
		return fmt.Errorf("%w: payout", ErrNilParam)
	}
	if len(p.RawTx) == 0 {
		return fmt.Errorf("%w: RawTx is empty", ErrSigningFailed)
	}
	if len(p.Inputs) == 0 {
		return fmt.Errorf("%w: payout is unfunded", ErrSigningFailed)
	}

	sdkTx, err := transaction.NewTransactionFromBytes(p.RawTx)
	if err != nil {
		return fmt.Errorf("%w: failed to parse raw tx: %w", ErrSigningFailed, err)
	}
	if len(p.Inputs) != len(sdkTx.Inputs) {
		return fmt.Errorf("%w: have %d UTXOs but tx has %d inputs",
			ErrSigningFailed, len(p.Inputs), len(sdkTx.Inputs))
	}

	for i, utxo := range p.Inputs {
		if utxo.PrivateKey == nil {
			return fmt.Errorf("%w: input %d has nil PrivateKey", ErrSigningFailed, i)
		}
		if len(utxo.ScriptPubKey) == 0 {
			return fmt.Errorf("%w: input %d has empty ScriptPubKey", ErrSigningFailed, i)
		}
		unlocker, err := p2pkh.Unlock(utxo.PrivateKey, nil)
		if err != nil {
			return fmt.Errorf("%w: unlocker for input %d: %w", ErrSigningFailed, i, err)
		}
		sdkTx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      utxo.Amount,
			LockingScript: script.NewFromBytes(utxo.ScriptPubKey),
		})
		sdkTx.Inputs[i].UnlockingScriptTemplate = unlocker
	}

	if err := sdkTx.Sign(); err != nil {
		return fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	p.RawTx = sdkTx.Bytes()
	p.Hex = sdkTx.Hex()
	p.TxID = sdkTx.TxID().String()
	return nil
}
