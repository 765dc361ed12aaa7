package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	PurposeBIP44   = 44
	CoinTypeBSV    = 236
	FundingAccount = 0

	ExternalChain = 0 // funding addresses
	InternalChain = 1 // change addresses

	Hardened = 0x80000000
)

// Wallet derives funding keys from a BIP39 seed.
type Wallet struct {
	account *bip32.ExtendedKey // m/44'/236'/0'
	mainnet bool
}

// KeyPair is a derived key with its address.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"-"`
	Address    string         `json:"address"`
	Path       string         `json:"path"`
}

// NewWallet creates a Wallet from seed. mainnet selects the key and
// address version bytes.
func NewWallet(seed []byte, mainnet bool) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	net := &chaincfg.TestNet
	if mainnet {
		net = &chaincfg.MainNet
	}
	master, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	key := master
	for _, idx := range []uint32{PurposeBIP44, CoinTypeBSV, FundingAccount} {
		if key, err = key.Child(idx + Hardened); err != nil {
			return nil, fmt.Errorf("%w: account: %w", ErrDerivationFailed, err)
		}
	}
	return &Wallet{account: key, mainnet: mainnet}, nil
}

// DeriveKey derives m/44'/236'/0'/chain/index.
func (w *Wallet) DeriveKey(chain, index uint32) (*KeyPair, error) {
	if chain >= Hardened || index >= Hardened {
		return nil, ErrIndexOutOfRange
	}
	chainKey, err := w.account.Child(chain)
	if err != nil {
		return nil, fmt.Errorf("%w: chain: %w", ErrDerivationFailed, err)
	}
	child, err := chainKey.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index: %w", ErrDerivationFailed, err)
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %w", ErrDerivationFailed, err)
	}
	pub := priv.PubKey()
	addr, err := script.NewAddressFromPublicKey(pub, w.mainnet)
	if err != nil {
		return nil, fmt.Errorf("%w: address: %w", ErrDerivationFailed, err)
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    addr.AddressString,
		Path:       fmt.Sprintf("m/44'/236'/0'/%d/%d", chain, index),
	}, nil
}

// FundingKey derives the external key at index.
func (w *Wallet) FundingKey(index uint32) (*KeyPair, error) {
	return w.DeriveKey(ExternalChain, index)
}

// ChangeKey derives the internal key at index.
func (w *Wallet) ChangeKey(index uint32) (*KeyPair, error) {
	return w.DeriveKey(InternalChain, index)
}
