package tx

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// BurnTag marks burn outputs: OP_FALSE OP_RETURN "fairburn" <digest>.
var BurnTag = []byte("fairburn")

// DigestLen is the length of the settlement digest pushed into burn outputs.
const DigestLen = 32

// ValidateAddress reports whether addr is a valid P2PKH address.
func ValidateAddress(addr string) error {
	_, err := parseAddress(addr)
	return err
}

func parseAddress(addr string) (*script.Address, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	a, err := script.NewAddressFromString(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	return a, nil
}

// BuildBurnScript creates the provably unspendable script carried by burn
// outputs. digest is empty or DigestLen bytes.
func BuildBurnScript(digest []byte) (*script.Script, error) {
	if len(digest) != 0 && len(digest) != DigestLen {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrInvalidParams, DigestLen, len(digest))
	}
	s := &script.Script{}
	*s = append(*s, script.Op0, script.OpRETURN)
	pushes := [][]byte{BurnTag}
	if len(digest) > 0 {
		pushes = append(pushes, digest)
	}
	for _, push := range pushes {
		if err := s.AppendPushData(push); err != nil {
			return nil, fmt.Errorf("%w: OP_RETURN push data: %w", ErrScriptBuild, err)
		}
	}
	return s, nil
}

// ParseBurnScript returns the digest carried by a burn script, or nil if
// it carries none. Both pushes are short, so each is a single length byte
// followed by its data.
func ParseBurnScript(s *script.Script) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: script", ErrNilParam)
	}
	b := []byte(*s)
	if len(b) < 2 || b[0] != script.Op0 || b[1] != script.OpRETURN {
		return nil, fmt.Errorf("%w: missing OP_FALSE OP_RETURN prefix", ErrInvalidBurnScript)
	}
	b = b[2:]
	if len(b) < 1+len(BurnTag) || int(b[0]) != len(BurnTag) || !bytes.Equal(b[1:1+len(BurnTag)], BurnTag) {
		return nil, fmt.Errorf("%w: missing burn tag", ErrInvalidBurnScript)
	}
	b = b[1+len(BurnTag):]
	switch {
	case len(b) == 0:
		return nil, nil
	case len(b) == 1+DigestLen && int(b[0]) == DigestLen:
		return b[1:], nil
	default:
		return nil, fmt.Errorf("%w: malformed digest push", ErrInvalidBurnScript)
	}
}

// BuildP2PKHOutput creates a P2PKH output paying satoshis to addr.
func BuildP2PKHOutput(addr string, satoshis uint64) (*transaction.TransactionOutput, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	lockScript, err := p2pkh.Lock(a)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock: %w", ErrScriptBuild, err)
	}
	return &transaction.TransactionOutput{
		Satoshis:      satoshis,
		LockingScript: lockScript,
	}, nil
}
