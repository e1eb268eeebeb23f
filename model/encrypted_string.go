// model/encrypted_string.go
package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/tracebit-io/tracebit/crypto"
)

// EncryptedString is a string column that is sealed through the field
// codec on every write and opened on every read. In memory it is always
// plaintext; only the stored form is ciphertext. Empty values are stored
// as NULL, never as a ciphertext of the empty string.
type EncryptedString string

func (s EncryptedString) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	sealed, err := crypto.Seal(string(s))
	if err != nil {
		return nil, err
	}
	return sealed, nil
}

func (s *EncryptedString) Scan(value interface{}) error {
	if value == nil {
		*s = ""
		return nil
	}

	var blob string
	switch v := value.(type) {
	case string:
		blob = v
	case []byte:
		blob = string(v)
	default:
		return fmt.Errorf("unsupported encrypted column type %T", value)
	}

	plain, err := crypto.Open(blob)
	if err != nil {
		return err
	}
	*s = EncryptedString(plain)
	return nil
}

func (s EncryptedString) String() string {
	return string(s)
}
