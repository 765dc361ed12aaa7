package settle

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/bitfsorg/fairburn-go/coin"
	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length of a settlement digest in bytes.
const DigestSize = blake2b.Size256

// Digest returns a BLAKE2b-256 hash over a canonical encoding of the
// instructions and events. Two results are identical iff their digests match.
//
// Encoding:
//
//	u32 n_instructions
//	  per instruction: u8 kind | str to | coins
//	u32 n_events
//	  per event: str type | u32 n_attrs | (str key | str value)*
//
// where str is u32 length || bytes and coins is u32 count || (str denom | amount[32])*.
func (r *Result) Digest() [DigestSize]byte {
	var buf bytes.Buffer

	putU32(&buf, uint32(len(r.Instructions)))
	for _, in := range r.Instructions {
		buf.WriteByte(byte(in.Kind))
		putStr(&buf, in.To)
		putCoins(&buf, in.Coins)
	}

	putU32(&buf, uint32(len(r.Events)))
	for _, ev := range r.Events {
		putStr(&buf, ev.Type)
		putU32(&buf, uint32(len(ev.Attributes)))
		for _, a := range ev.Attributes {
			putStr(&buf, a.Key)
			putStr(&buf, a.Value)
		}
	}

	return blake2b.Sum256(buf.Bytes())
}

// DigestHex returns Digest hex-encoded.
func (r *Result) DigestHex() string {
	d := r.Digest()
	return hex.EncodeToString(d[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putStr(buf *bytes.Buffer, s string) {
	putU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func putCoins(buf *bytes.Buffer, cs coin.Coins) {
	putU32(buf, uint32(len(cs)))
	for _, c := range cs {
		putStr(buf, c.Denom)
		var amount [32]byte
		if c.Amount != nil {
			amount = c.Amount.Bytes32()
		}
		buf.Write(amount[:])
	}
}
