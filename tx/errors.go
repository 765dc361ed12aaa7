package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInsufficientFunds indicates the funding UTXOs cannot cover payouts and fees.
	ErrInsufficientFunds = errors.New("tx: insufficient funds")

	// ErrInvalidAddress indicates an address string could not be parsed.
	ErrInvalidAddress = errors.New("tx: invalid address")

	// ErrUnsupportedDenom indicates a coin that is not the chain's native denomination.
	ErrUnsupportedDenom = errors.New("tx: unsupported denomination")

	// ErrAmountTooLarge indicates an amount that does not fit in a satoshi value.
	ErrAmountTooLarge = errors.New("tx: amount too large")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrInvalidBurnScript indicates a burn output script is malformed.
	ErrInvalidBurnScript = errors.New("tx: invalid burn script")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")

	// ErrPayoutMismatch indicates a transaction does not carry the expected payout outputs.
	ErrPayoutMismatch = errors.New("tx: payout mismatch")
)
