package ledger

import "errors"

var (
	// ErrInsufficientFunds indicates an account balance is too low for a debit.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrUnknownInstruction indicates an instruction kind the bank cannot execute.
	ErrUnknownInstruction = errors.New("ledger: unknown instruction")

	// ErrInvalidAccount indicates an empty account name.
	ErrInvalidAccount = errors.New("ledger: invalid account")
)
