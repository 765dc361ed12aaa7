package tx

const (
	// DustLimit is the smallest change output worth creating, in satoshis.
	DustLimit = uint64(1)

	// DefaultFeeRate is the default fee rate in sat/KB.
	DefaultFeeRate = uint64(1)

	// TxIDLen is the length of a transaction ID.
	TxIDLen = 32
)

// EstimateFee estimates the transaction fee for a given size and fee rate.
// Returns ceil(txSizeBytes * feeRate / 1000).
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := uint64(txSizeBytes) * feeRate
	return (fee + 999) / 1000
}

// EstimatePayoutSize estimates the size in bytes of a payout transaction
// with the given number of P2PKH inputs, P2PKH outputs and burn outputs.
func EstimatePayoutSize(numInputs, numP2PKH, numBurns int) int {
	// version(4) + locktime(4) + input/output count varints(1+1)
	base := 10
	// prevhash(32) + index(4) + scriptlen(1) + sig+pubkey(~107) + sequence(4)
	inputs := numInputs * 148
	// value(8) + scriptlen(1) + script(25)
	p2pkhOut := numP2PKH * 34
	// value(8) + scriptlen(1) + OP_FALSE OP_RETURN(2) + tag push(9) + digest push(33)
	burnOut := numBurns * 53
	return base + inputs + p2pkhOut + burnOut
}
