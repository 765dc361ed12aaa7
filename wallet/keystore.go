package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// KeystoreFileName is the keystore file inside the data directory.
const KeystoreFileName = "wallet.enc"

const (
	saltLen     = 16
	nonceLen    = 12
	checksumLen = 4
	headerLen   = 4 + 4 + 4 + 1 + saltLen + nonceLen
)

var keystoreMagic = []byte("FBK1")

// KDFParams are the Argon2id parameters stored with each keystore.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams is used for new keystores.
var DefaultKDFParams = KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}

func (p KDFParams) validate() error {
	if p.Time == 0 || p.Threads == 0 || p.Memory < 8*uint32(p.Threads) {
		return fmt.Errorf("%w: time=%d memory=%d threads=%d", ErrInvalidKDFParams, p.Time, p.Memory, p.Threads)
	}
	return nil
}

// EncryptSeed seals seed under password with Argon2id and AES-256-GCM.
//
// Layout: "FBK1" | time u32 | memory u32 | threads u8 | salt[16] | nonce[12] | ciphertext
//
// The header is authenticated as additional data. The plaintext is
// seed || SHA256(seed)[:4].
func EncryptSeed(seed []byte, password string, params KDFParams) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	header := make([]byte, 0, headerLen)
	header = append(header, keystoreMagic...)
	header = binary.BigEndian.AppendUint32(header, params.Time)
	header = binary.BigEndian.AppendUint32(header, params.Memory)
	header = append(header, params.Threads)

	random := make([]byte, saltLen+nonceLen)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("wallet: read random: %w", err)
	}
	header = append(header, random...)
	salt := header[13 : 13+saltLen]
	nonce := header[13+saltLen:]

	gcm, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(seed)
	plaintext := append(bytes.Clone(seed), sum[:checksumLen]...)
	return append(header, gcm.Seal(nil, nonce, plaintext, header)...), nil
}

// DecryptSeed opens a blob produced by EncryptSeed.
func DecryptSeed(blob []byte, password string) ([]byte, error) {
	if len(blob) < headerLen+checksumLen || !bytes.Equal(blob[:4], keystoreMagic) {
		return nil, ErrDecryptionFailed
	}
	params := KDFParams{
		Time:    binary.BigEndian.Uint32(blob[4:8]),
		Memory:  binary.BigEndian.Uint32(blob[8:12]),
		Threads: blob[12],
	}
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	header := blob[:headerLen]
	salt := header[13 : 13+saltLen]
	nonce := header[13+saltLen:]

	gcm, err := newGCM(password, salt, params)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, blob[headerLen:], header)
	if err != nil || len(plaintext) <= checksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-checksumLen]
	sum := sha256.Sum256(seed)
	if subtle.ConstantTimeCompare(sum[:checksumLen], plaintext[len(seed):]) != 1 {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

func newGCM(password string, salt []byte, p KDFParams) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("wallet: gcm: %w", err)
	}
	return gcm, nil
}

// KeystorePath returns the keystore path inside dataDir.
func KeystorePath(dataDir string) string {
	return filepath.Join(dataDir, KeystoreFileName)
}

// CreateKeystore encrypts seed to path. An existing keystore is never
// overwritten.
func CreateKeystore(path string, seed []byte, password string, params KDFParams) error {
	blob, err := EncryptSeed(seed, password, params)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeystoreExists, path)
		}
		return fmt.Errorf("wallet: create keystore: %w", err)
	}
	if _, err := f.Write(blob); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("wallet: write keystore: %w", err)
	}
	return f.Close()
}

// OpenKeystore decrypts the seed at path.
func OpenKeystore(path, password string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeystoreNotFound, path)
		}
		return nil, fmt.Errorf("wallet: read keystore: %w", err)
	}
	return DecryptSeed(blob, password)
}
