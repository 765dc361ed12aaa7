package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrInvalidSeed indicates the seed is empty.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrIndexOutOfRange indicates a chain or address index above 2^31-1.
	ErrIndexOutOfRange = errors.New("wallet: index exceeds maximum (2^31-1)")

	// ErrDecryptionFailed indicates a wrong password or corrupted keystore.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates the decrypted seed failed its checksum.
	ErrChecksumMismatch = errors.New("wallet: seed checksum mismatch")

	// ErrInvalidKDFParams indicates unusable Argon2id parameters.
	ErrInvalidKDFParams = errors.New("wallet: invalid key derivation parameters")

	// ErrKeystoreExists indicates a keystore is already present.
	ErrKeystoreExists = errors.New("wallet: keystore already exists")

	// ErrKeystoreNotFound indicates no keystore at the given path.
	ErrKeystoreNotFound = errors.New("wallet: keystore not found")

	// ErrInvalidUTXO indicates a node UTXO that cannot fund a payout.
	ErrInvalidUTXO = errors.New("wallet: invalid UTXO")
)
