// Package randstr generates random alphanumeric strings, used for the OAuth
// state parameter that protects the callback against CSRF.
package randstr

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// alphabet is the 62-symbol alphanumeric set.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrInvalidLength is returned when the requested length is not positive.
var ErrInvalidLength = errors.New("randstr: length must be positive")

// New returns a string of exactly length characters drawn uniformly from the
// alphanumeric alphabet using a cryptographically strong source.
func New(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
