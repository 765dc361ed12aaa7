package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Node is the subset of node RPC used to settle on chain.
type Node interface {
	// ListUnspent returns the unspent outputs paying address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)
	// BroadcastTx submits a raw transaction hex and returns its txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
	// GetBestBlockHeight returns the chain tip height.
	GetBestBlockHeight(ctx context.Context) (uint64, error)
}

var _ Node = (*RPCClient)(nil)

// UTXO is an unspent output as reported by the node.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"` // satoshis
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// TotalAmount sums the satoshis of utxos.
func TotalAmount(utxos []*UTXO) uint64 {
	var total uint64
	for _, u := range utxos {
		total += u.Amount
	}
	return total
}

type listUnspentResult struct {
	TxID          string          `json:"txid"`
	Vout          uint32          `json:"vout"`
	Amount        decimal.Decimal `json:"amount"`
	ScriptPubKey  string          `json:"scriptPubKey"`
	Address       string          `json:"address"`
	Confirmations int64           `json:"confirmations"`
}

// coinToSat converts a node amount in whole coins to satoshis. Amounts
// with more than eight decimal places or below zero are rejected.
func coinToSat(amount decimal.Decimal) (uint64, error) {
	sats := amount.Shift(8)
	if !sats.IsInteger() || sats.IsNegative() {
		return 0, fmt.Errorf("%w: amount %s", ErrInvalidResponse, amount)
	}
	return sats.BigInt().Uint64(), nil
}

// ListUnspent calls `listunspent 0 9999999 ["address"]`.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", []any{0, 9999999, []string{address}}, &results); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, len(results))
	for i, r := range results {
		sats, err := coinToSat(r.Amount)
		if err != nil {
			return nil, err
		}
		utxos[i] = &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        sats,
			ScriptPubKey:  r.ScriptPubKey,
			Address:       r.Address,
			Confirmations: r.Confirmations,
		}
	}
	return utxos, nil
}

// BroadcastTx calls `sendrawtransaction "hex"`.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []any{rawTxHex}, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	}
	return txid, nil
}

// GetBestBlockHeight calls `getblockcount`.
func (c *RPCClient) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, "getblockcount", nil, &raw); err != nil {
		return 0, err
	}
	var height uint64
	if err := json.Unmarshal(raw, &height); err != nil {
		return 0, fmt.Errorf("%w: block height: %w", ErrInvalidResponse, err)
	}
	return height, nil
}
