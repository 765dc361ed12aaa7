package settle

import "errors"

var (
	// ErrEmptyInput indicates settlement was invoked without any coins.
	ErrEmptyInput = errors.New("settle: must send some coins")

	// ErrZeroAmount indicates a denomination's aggregated amount is zero.
	ErrZeroAmount = errors.New("settle: must send non zero amounts")

	// ErrInvalidRate indicates the configured fee rate lies outside [0, 1].
	ErrInvalidRate = errors.New("settle: invalid fee rate")

	// ErrInvalidRecipient indicates the recipient collides with the pool destination.
	ErrInvalidRecipient = errors.New("settle: invalid recipient")

	// ErrInvalidParams indicates the engine was constructed with bad parameters.
	ErrInvalidParams = errors.New("settle: invalid engine parameters")

	// ErrConservationViolation indicates instructions do not account for exactly the input funds.
	ErrConservationViolation = errors.New("settle: funds conservation violated")
)
