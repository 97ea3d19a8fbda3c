package helpers

import (
	"crypto/rand"
	"math/big"
)

var otpSpan = big.NewInt(900000)

// GenOTPCode generates a uniform random 6-digit one-time code in
// [100000, 999999].
func GenOTPCode() (int, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return 0, err
	}
	return 100000 + int(n.Int64()), nil
}
