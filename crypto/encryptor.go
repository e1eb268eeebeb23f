// crypto/encryptor.go
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	gcmIVLength  = 12
	gcmTagLength = 16
	aesBlockSize = 16
)

var (
	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")
)

// hkdfSalt is fixed so the same secret always derives the same key.
var hkdfSalt = []byte("tracebit/field-encryption/v1")

// Options control the compatibility paths for data written before the
// envelope format and the HKDF key schedule existed. Both default off;
// enable them only when reading pre-existing ciphertext.
type Options struct {
	// LegacyKeyDerivation pads/truncates the secret to an AES key length
	// instead of running it through HKDF.
	LegacyKeyDerivation bool
	// LegacyDecrypt allows Open to fall back to the pre-envelope
	// (unauthenticated ECB) decryption path. Seal never uses it.
	LegacyDecrypt bool
}

// Encryptor seals and opens individual string fields with a single
// process-wide AES key. Sealed values are IV || ciphertext || tag,
// base64-encoded.
type Encryptor struct {
	aead          cipher.AEAD
	block         cipher.Block
	legacyDecrypt bool
}

func New(secret string, opts Options) (*Encryptor, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrEncryption)
	}

	key, err := deriveKey(secret, opts.LegacyKeyDerivation)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	aead, err := cipher.NewGCMWithTagSize(block, gcmTagLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	return &Encryptor{
		aead:          aead,
		block:         block,
		legacyDecrypt: opts.LegacyDecrypt,
	}, nil
}

// deriveKey turns the configured secret into an AES key. The default is
// HKDF-SHA256 to a 256-bit key. The legacy schedule zero-pads short
// secrets up to the next AES key length and truncates long ones to 32
// bytes, matching data encrypted by earlier deployments.
func deriveKey(secret string, legacy bool) ([]byte, error) {
	raw := []byte(secret)

	if !legacy {
		key := make([]byte, 32)
		r := hkdf.New(sha256.New, raw, hkdfSalt, nil)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
		}
		return key, nil
	}

	switch n := len(raw); {
	case n == 16 || n == 24 || n == 32:
		return raw, nil
	case n > 32:
		return raw[:32], nil
	case n > 24:
		return pad(raw, 32), nil
	case n > 16:
		return pad(raw, 24), nil
	default:
		return pad(raw, 16), nil
	}
}

func pad(b []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, b)
	return out
}

// Seal encrypts one field value. Empty input is a no-op: it stays empty
// rather than becoming a ciphertext of the empty string.
func (e *Encryptor) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	iv := make([]byte, gcmIVLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	sealed := e.aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored field value. Blobs shorter than the IV length
// predate the envelope format and are routed to the legacy path; any
// envelope that fails authentication is retried on the legacy path as
// well (when enabled) before the read is failed.
func (e *Encryptor) Open(blob string) (string, error) {
	if blob == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	if len(raw) < gcmIVLength {
		return e.openLegacy(raw)
	}

	iv, ciphertext := raw[:gcmIVLength], raw[gcmIVLength:]
	plaintext, err := e.aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		if e.legacyDecrypt {
			if plain, legacyErr := e.openLegacy(raw); legacyErr == nil {
				return plain, nil
			}
		}
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return string(plaintext), nil
}

// openLegacy decrypts a pre-envelope blob: AES-ECB with PKCS#7 padding
// and no IV. Unauthenticated, retained only so data written before the
// envelope format can still be read.
func (e *Encryptor) openLegacy(raw []byte) (string, error) {
	if !e.legacyDecrypt {
		return "", fmt.Errorf("%w: legacy ciphertext and legacy decryption disabled", ErrDecryption)
	}
	if len(raw) == 0 || len(raw)%aesBlockSize != 0 {
		return "", fmt.Errorf("%w: legacy ciphertext is not a multiple of the block size", ErrDecryption)
	}

	plaintext := make([]byte, len(raw))
	for off := 0; off < len(raw); off += aesBlockSize {
		e.block.Decrypt(plaintext[off:off+aesBlockSize], raw[off:off+aesBlockSize])
	}

	unpadded, err := pkcs7Unpad(plaintext, aesBlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(unpadded), nil
}

// pkcs7Unpad removes PKCS#7 padding from data.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("data cannot be empty")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errors.New("invalid pkcs7 padding: padding size is zero or exceeds block size")
	}
	for i := 0; i < padding; i++ {
		if data[len(data)-padding+i] != byte(padding) {
			return nil, errors.New("invalid pkcs7 padding: padding bytes are inconsistent")
		}
	}
	return data[:len(data)-padding], nil
}
