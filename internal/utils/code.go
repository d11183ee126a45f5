package utils // package utils provides helper functions for codes and hashing

import (
	"crypto/rand" // secure random number generation
	"math/big"    // bounded random integers without modulo bias
	"strconv"     // integer-to-string conversion
)

// FiveDigitCode returns a random confirmation code in [10000, 99999],
// rendered as a string because it is used as a cache key verbatim.
func FiveDigitCode() (string, error) {
	// 90000 possible values starting at 10000 keeps the code at exactly
	// five digits.
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+10000, 10), nil
}
