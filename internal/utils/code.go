package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewResetCode returns a uniformly random 6-digit numeric code, zero-padded.
// Uniqueness against other users' active codes is not enforced here; the
// store constrains one active code per user only.
func NewResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
