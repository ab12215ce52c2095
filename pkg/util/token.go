package util

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// GenerateDigits returns a numeric code of n digits, e.g. for password reset
func GenerateDigits(n int) (string, error) {
	out := make([]byte, n)
	ten := big.NewInt(10)

	for i := range out {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d.Int64())
	}

	return string(out), nil
}
