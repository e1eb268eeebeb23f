// crypto/default.go
package crypto

import "fmt"

// defaultEncryptor is the process-wide codec used by the stored models.
// A single symmetric key is active per process; there is no key rotation.
var defaultEncryptor *Encryptor

// Init configures the process-wide encryptor. Must run before any store
// read or write touches an encrypted column.
func Init(secret string, opts Options) error {
	enc, err := New(secret, opts)
	if err != nil {
		return err
	}
	defaultEncryptor = enc
	return nil
}

// Seal encrypts one field with the process-wide key.
func Seal(plaintext string) (string, error) {
	if defaultEncryptor == nil {
		return "", fmt.Errorf("%w: encryptor not initialized", ErrEncryption)
	}
	return defaultEncryptor.Seal(plaintext)
}

// Open decrypts one field with the process-wide key.
func Open(blob string) (string, error) {
	if defaultEncryptor == nil {
		return "", fmt.Errorf("%w: encryptor not initialized", ErrDecryption)
	}
	return defaultEncryptor.Open(blob)
}
