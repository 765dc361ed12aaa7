package tx

import (
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// UTXO is an unspent output used to fund a payout transaction.
type UTXO struct {
	TxID         []byte         `json:"txid"` // 32 bytes
	Vout         uint32         `json:"vout"`
	Amount       uint64         `json:"amount"`        // satoshis
	ScriptPubKey []byte         `json:"script_pubkey"` // locking script bytes
	PrivateKey   *ec.PrivateKey `json:"-"`
}

// PayoutOutput describes one output of a payout transaction.
type PayoutOutput struct {
	Vout     uint32 `json:"vout"`
	Kind     string `json:"kind"`              // burn, fund-pool, transfer or change
	Address  string `json:"address,omitempty"` // empty for burn outputs
	Satoshis uint64 `json:"satoshis"`
}

// Payout wraps a built payout transaction.
type Payout struct {
	RawTx   []byte         `json:"-"`
	Hex     string         `json:"hex"`
	TxID    string         `json:"txid"`
	Fee     uint64         `json:"fee"`
	Outputs []PayoutOutput `json:"outputs"`
	Inputs  []*UTXO        `json:"-"` // funding inputs in input order
}
