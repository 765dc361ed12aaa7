package wallet

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/bitfsorg/fairburn-go/network"
	"github.com/bitfsorg/fairburn-go/tx"
)

// FundingInputs converts node UTXOs held by kp into payout fee inputs.
// Outputs paying other addresses are skipped.
func FundingInputs(utxos []*network.UTXO, kp *KeyPair) ([]*tx.UTXO, error) {
	if kp == nil || kp.PrivateKey == nil {
		return nil, fmt.Errorf("%w: no signing key", ErrInvalidUTXO)
	}
	inputs := make([]*tx.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Address != "" && u.Address != kp.Address {
			continue
		}
		// node txids are in display order; inputs use internal order
		txid, err := hex.DecodeString(u.TxID)
		if err != nil || len(txid) != tx.TxIDLen {
			return nil, fmt.Errorf("%w: txid %q", ErrInvalidUTXO, u.TxID)
		}
		slices.Reverse(txid)
		lock, err := hex.DecodeString(u.ScriptPubKey)
		if err != nil || len(lock) == 0 {
			return nil, fmt.Errorf("%w: %s:%d script", ErrInvalidUTXO, u.TxID, u.Vout)
		}
		inputs = append(inputs, &tx.UTXO{
			TxID:         txid,
			Vout:         u.Vout,
			Amount:       u.Amount,
			ScriptPubKey: lock,
			PrivateKey:   kp.PrivateKey,
		})
	}
	return inputs, nil
}
